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

// Package provider runs the server half of an Ember+ connection: a TCP
// listener that hands each accepted client off to an embedder-supplied
// ClientHandler over a pair of Glow Root channels.
package provider

import (
	"context"
	"net"
	"time"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/channel"
	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/glow"
)

// ClientHandler implements the embedder's protocol logic for one connected
// client. tx sends Root messages to the client; rx delivers Root messages
// the client sent. HandleClient should return when rx is drained (closed)
// or ctx is cancelled; a returned error only closes that one connection.
type ClientHandler interface {
	HandleClient(ctx context.Context, tx chan<- glow.Root, rx <-chan glow.Root) error
}

// ClientHandlerFunc adapts a function to a ClientHandler.
type ClientHandlerFunc func(ctx context.Context, tx chan<- glow.Root, rx <-chan glow.Root) error

func (f ClientHandlerFunc) HandleClient(ctx context.Context, tx chan<- glow.Root, rx <-chan glow.Root) error {
	return f(ctx, tx, rx)
}

// handlerBuffer bounds the channels bridging a ClientHandler to its
// underlying Channel.
const handlerBuffer = 256

// StartTCPProvider binds addr and begins accepting clients in the
// background, handing each one to handler over a fresh channel.Channel.
// keepalive and useNonEscaping are applied to every accepted connection, as
// Accept does not negotiate. Cancelling ctx stops accepting new clients;
// the provider does not close already-accepted connections itself: each
// ends when its handler (which sees the same ctx) returns or its socket
// closes. The bound address is
// returned so callers that passed a ":0" port can discover which one was
// chosen.
func StartTCPProvider(ctx context.Context, addr string, keepalive time.Duration, useNonEscaping bool, handler ClientHandler) (net.Addr, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Connection, "failed to bind provider listener", err)
	}

	logger.Debug("ember+ provider listening on " + listener.Addr().String())

	go acceptClients(ctx, listener, keepalive, useNonEscaping, handler)

	go func() {
		<-ctx.Done()
		listener.Close() //nolint:errcheck
	}()

	return listener.Addr(), nil
}

func acceptClients(ctx context.Context, listener net.Listener, keepalive time.Duration, useNonEscaping bool, handler ClientHandler) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Debug("provider listener stopped accepting: context cancelled")
				return
			default:
				logger.Error("error accepting client connection", err)
				return
			}
		}

		go clientConnected(ctx, conn, keepalive, useNonEscaping, handler)
	}
}

func clientConnected(ctx context.Context, conn net.Conn, keepalive time.Duration, useNonEscaping bool, handler ClientHandler) {
	addr := conn.RemoteAddr()

	logger.Debug("new ember+ client connected: " + addr.String())

	ch := channel.Accept(conn, keepalive, useNonEscaping)
	defer ch.Close() //nolint:errcheck

	serve(ctx, addr.String(), ch, handler)
}

func serve(ctx context.Context, addr string, ch *channel.Channel, handler ClientHandler) {
	tx := make(chan glow.Root, handlerBuffer)
	rx := make(chan glow.Root, handlerBuffer)

	done := make(chan struct{})

	go bridgeOutbound(ch, tx, done)
	go bridgeInbound(ch, rx)

	defer close(done)

	if err := handler.HandleClient(ctx, tx, rx); err != nil {
		logger.Error("client connection "+addr+" closed unexpectedly", err)
	}
}

// bridgeOutbound relays everything the handler sends on tx to the
// underlying channel, until either tx is closed by the handler or done
// signals the connection is tearing down.
func bridgeOutbound(ch *channel.Channel, tx <-chan glow.Root, done <-chan struct{}) {
	for {
		select {
		case root, ok := <-tx:
			if !ok {
				return
			}

			if err := ch.Send(root); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// bridgeInbound relays everything the underlying channel receives to rx,
// closing rx once the channel's own Recv stream ends.
func bridgeInbound(ch *channel.Channel, rx chan<- glow.Root) {
	defer close(rx)

	for root := range ch.Recv() {
		rx <- root
	}
}
