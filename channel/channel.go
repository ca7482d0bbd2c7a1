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

// Package channel turns a raw net.Conn into a duplex stream of Glow Root
// messages. A Channel wires together six pipeline stages -- packetize,
// frame and send on the outbound side; receive, unframe and depacketize on
// the inbound side -- each running in its own goroutine and connected by
// bounded channels, plus a keepalive goroutine that answers peer keepalive
// requests and, when configured, originates its own on an interval.
package channel

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/packet"
	"github.com/emberplus/emberplus/s101"
)

// stageBuffer bounds every inter-stage channel. The reference implementation
// sizes its tokio mpsc channels at 1024*1024 messages; a Go buffered channel
// that deep would dedicate several MiB of backing array to a path that is
// almost always empty, so this module uses a far shallower buffer and relies
// on TCP backpressure (stage goroutines block on conn.Write/conn.Read) to
// throttle producers instead.
const stageBuffer = 256

// negotiationAttempts/negotiationTimeout bound the non-escaping handshake a
// consumer runs when opening a connection.
const (
	negotiationAttempts = 3
	negotiationTimeout  = time.Second
)

// Channel is one open, running Glow connection. Send enqueues an outbound
// Root; Recv delivers inbound Roots as they are reassembled.
type Channel struct {
	conn net.Conn

	outbound chan glow.Root
	inbound  chan glow.Root

	keepaliveRequests chan struct{}
	sendFrames        chan s101.Frame

	nonEscaping bool

	closeOnce sync.Once
	closed    chan struct{}

	errMu sync.Mutex
	err   error
}

// Dial opens a TCP connection to addr. If tryNonEscaping is set, it
// negotiates the wire framing: it tries non-escaping keepalives first (per
// negotiationAttempts, each bounded by negotiationTimeout) and falls back to
// escaping framing if the peer never answers. If tryNonEscaping is false,
// negotiation is skipped entirely and escaping framing is used, matching
// the original's `try_use_non_escaping` consumer flag. keepalive of zero
// disables the periodic keepalive originator; the channel still answers
// the peer's keepalive requests.
func Dial(addr string, keepalive time.Duration, tryNonEscaping bool) (*Channel, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Connection, "failed to dial ember+ provider", err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close() //nolint:errcheck
			return nil, errs.Wrap(errs.Io, "failed to set TCP_NODELAY", err)
		}
	}

	br := bufio.NewReader(conn)

	if !tryNonEscaping {
		return newChannel(conn, br, false, keepalive, nil), nil
	}

	nonEscaping, pending, err := negotiateNonEscaping(conn, br)
	if err != nil {
		conn.Close() //nolint:errcheck

		return nil, err
	}

	return newChannel(conn, br, nonEscaping, keepalive, pending), nil
}

// Accept wraps an already-accepted server-side connection. The provider
// does not negotiate: useNonEscaping selects the framing of every frame
// the channel sends, and does not change afterwards. Incoming frames are
// decoded in whichever framing the peer actually sends.
func Accept(conn net.Conn, keepalive time.Duration, useNonEscaping bool) *Channel {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	return newChannel(conn, bufio.NewReader(conn), useNonEscaping, keepalive, nil)
}

func newChannel(conn net.Conn, br *bufio.Reader, nonEscaping bool, keepalive time.Duration, pending *s101.Frame) *Channel {
	c := &Channel{
		conn:              conn,
		outbound:          make(chan glow.Root, stageBuffer),
		inbound:           make(chan glow.Root, stageBuffer),
		keepaliveRequests: make(chan struct{}, stageBuffer),
		sendFrames:        make(chan s101.Frame, stageBuffer),
		nonEscaping:       nonEscaping,
		closed:            make(chan struct{}),
	}

	packetsOut := make(chan packet.Packet, stageBuffer)
	framesOut := make(chan s101.Frame, stageBuffer)
	receivedFrames := make(chan s101.Frame, stageBuffer)
	unframedPackets := make(chan packet.Packet, stageBuffer)

	go c.packetize(c.outbound, packetsOut)
	go c.frame(packetsOut, framesOut)
	go c.send(framesOut)
	go c.receive(br, receivedFrames, pending)
	go c.unframe(receivedFrames, unframedPackets)
	go c.depacketize(unframedPackets, c.inbound)

	if keepalive > 0 {
		go c.originateKeepalive(keepalive)
	} else {
		go c.answerKeepalive()
	}

	return c
}

// Send enqueues root for transmission. It returns an error if the channel
// has already failed or been closed.
func (c *Channel) Send(root glow.Root) error {
	select {
	case <-c.closed:
		return c.Err()
	default:
	}

	select {
	case c.outbound <- root:
		return nil
	case <-c.closed:
		return c.Err()
	}
}

// Recv is the stream of reassembled inbound Root messages. It is closed
// when the channel fails or is closed.
func (c *Channel) Recv() <-chan glow.Root {
	return c.inbound
}

// Err reports the failure that tore the pipeline down, if any.
func (c *Channel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()

	return c.err
}

// Close tears the underlying connection down, which in turn stops every
// pipeline goroutine as their blocking reads/writes fail.
func (c *Channel) Close() error {
	var err error

	c.closeOnce.Do(func() {
		err = c.conn.Close()
		close(c.closed)
	})

	return err
}

func (c *Channel) fail(err error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMu.Unlock()

	c.Close() //nolint:errcheck
}

func negotiateNonEscaping(conn net.Conn, br *bufio.Reader) (bool, *s101.Frame, error) {
	for attempt := 0; attempt < negotiationAttempts; attempt++ {
		logger.Debug("sending initial non-escaping keepalive request")

		if _, err := conn.Write(s101.NewKeepaliveRequestFrame(true).Encode()); err != nil {
			return false, nil, errs.Wrap(errs.Io, "failed to send negotiation keepalive", err)
		}

		if err := conn.SetReadDeadline(time.Now().Add(negotiationTimeout)); err != nil {
			return false, nil, errs.Wrap(errs.Io, "failed to set negotiation read deadline", err)
		}

		frame, err := s101.Decode(br)

		if err != nil {
			if isTimeout(err) {
				continue
			}

			return false, nil, errs.Wrap(errs.Connection, "negotiation failed", err)
		}

		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			return false, nil, errs.Wrap(errs.Io, "failed to clear negotiation read deadline", err)
		}

		logger.Debug("received negotiation response, non-escaping: " + boolString(frame.NonEscaping))

		return frame.NonEscaping, &frame, nil
	}

	logger.Debug("did not receive a negotiation response, falling back to escaping mode")

	return false, nil, conn.SetReadDeadline(time.Time{})
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func boolString(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
