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

// Command emberconsumer dials an Ember+ provider, walks its directory tree
// to completion, and prints the materialized tree as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/consumer"
	"github.com/emberplus/emberplus/ember"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "provider address to dial")
	keepalive := flag.Duration("keepalive", 0, "keepalive origination interval (0 disables)")
	nonEscaping := flag.Bool("non-escaping", false, "try negotiating non-escaping S101 framing before escaping")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for the tree walk to complete")
	republishLog := flag.Bool("republish-log", false, "log the key/value pair each parameter would republish under")
	flag.Parse()

	logger.Info("Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := consumer.StartTCPConsumer(*addr, consumer.Options{
		Keepalive:      *keepalive,
		TryNonEscaping: *nonEscaping,
	})
	if err != nil {
		logger.Error("failed to connect to provider", err)
		os.Exit(1)
	}
	defer c.Close() //nolint:errcheck

	tree := ember.NewTree()
	events := c.FetchFullTree()

	if err := drain(ctx, events, *timeout, tree, *republishLog); err != nil {
		logger.Error("tree walk did not complete", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		logger.Error("error marshalling tree", err)
		os.Exit(1)
	}

	fmt.Println(string(out))

	logger.Info("Ended.")
}

// drain collects TreeEvents into tree until a FullTreeReceived event
// arrives, ctx is cancelled, or timeout elapses, whichever comes first. When
// republishLog is set, every Element event for a Parameter is also logged
// under the key a Wörterbuch republish bridge would publish it at -- this
// module never opens such a bridge itself, it only names the key an
// embedder's bridge would use.
func drain(ctx context.Context, events <-chan consumer.TreeEvent, timeout time.Duration, tree ember.Tree, republishLog bool) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed before the tree walk completed")
			}

			switch ev.Kind {
			case consumer.EventElement:
				own := elementOID(ev.Parent, ev.Node)
				tree.Put(own, ev.Node)

				if republishLog {
					logRepublish(own, ev.Node)
				}
			case consumer.EventFullTreeReceived:
				logger.Info(fmt.Sprintf("tree walk complete: %d elements explored", ev.Count))
				return nil
			}
		case <-deadline.C:
			return fmt.Errorf("timed out after %s waiting for the tree walk to complete", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// elementOID recovers the absolute OID a TreeEvent's element denotes: a
// qualified element carries its own path, an unqualified one is numbered
// relative to the event's Parent.
func elementOID(eventParent oid.OID, el glow.Element) oid.OID {
	if path, ok := el.ElementPath(); ok {
		return path
	}

	number, _ := el.ElementNumber()

	return oid.Join(eventParent, uint32(number))
}

// logRepublish logs the republish key and current value for el, if el is a
// parameter carrying a value. Non-parameter elements are silently skipped.
func logRepublish(own oid.OID, el glow.Element) {
	var value any

	switch v := el.(type) {
	case *glow.Parameter:
		if !v.Contents.HasValue {
			return
		}
		value = v.Contents.Value
	case *glow.QualifiedParameter:
		if !v.Contents.HasValue {
			return
		}
		value = v.Contents.Value
	default:
		return
	}

	logger.Info(fmt.Sprintf("republish %s = %v", ember.RepublishKey(own), value))
}
