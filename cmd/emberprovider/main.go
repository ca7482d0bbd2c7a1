/*
 *  Copyright (C) 2025 Michael Bachmann
 *
 *  This program is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Affero General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU Affero General Public License for more details.
 *
 *  You should have received a copy of the GNU Affero General Public License
 *  along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Command emberprovider runs a bare Ember+ provider: it accepts clients and
// echoes every Root message it receives back to its sender, so it can stand
// in as a peer for testing an emberconsumer or any other Ember+ client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/provider"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:9000", "address to listen on")
	keepalive := flag.Duration("keepalive", 0, "keepalive origination interval (0 disables)")
	nonEscaping := flag.Bool("non-escaping", false, "accept connections using non-escaping S101 framing")
	flag.Parse()

	logger.Info("Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := provider.ClientHandlerFunc(echoHandler)

	bound, err := provider.StartTCPProvider(ctx, *addr, *keepalive, *nonEscaping, handler)
	if err != nil {
		logger.Error("failed to start provider", err)
		os.Exit(1)
	}

	logger.Info(fmt.Sprintf("listening on %s", bound.String()))

	<-ctx.Done()

	logger.Info("Ended.")
}

// echoHandler sends every Root message a client sends straight back to it,
// giving a consumer something to exercise a GetDirectory exchange against
// without needing a real device behind it.
func echoHandler(ctx context.Context, tx chan<- glow.Root, rx <-chan glow.Root) error {
	for {
		select {
		case root, ok := <-rx:
			if !ok {
				return nil
			}

			select {
			case tx <- root:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
