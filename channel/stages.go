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

package channel

import (
	"bufio"
	"fmt"
	"time"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/packet"
	"github.com/emberplus/emberplus/s101"
)

// packetize fragments each outbound Root into its wire packets.
func (c *Channel) packetize(in <-chan glow.Root, out chan<- packet.Packet) {
	defer close(out)

	for {
		select {
		case root, ok := <-in:
			if !ok {
				return
			}

			for _, p := range packet.ToPackets(root.Encode()) {
				select {
				case out <- p:
				case <-c.closed:
					return
				}
			}
		case <-c.closed:
			return
		}
	}
}

// frame wraps each outbound packet in an S101 frame using the negotiated
// escaping mode.
func (c *Channel) frame(in <-chan packet.Packet, out chan<- s101.Frame) {
	defer close(out)

	for {
		select {
		case p, ok := <-in:
			if !ok {
				return
			}

			select {
			case out <- s101.NewEmberPacketFrame(p.ToBytes(), c.nonEscaping):
			case <-c.closed:
				return
			}
		case <-c.closed:
			return
		}
	}
}

// send writes every frame that reaches it -- pipeline frames and keepalive
// frames share this single goroutine, since net.Conn write order across
// goroutines would otherwise interleave.
func (c *Channel) send(pipelineFrames <-chan s101.Frame) {
	for {
		select {
		case frame, ok := <-pipelineFrames:
			if !ok {
				return
			}

			if err := c.writeFrame(frame); err != nil {
				c.fail(err)
				return
			}
		case frame, ok := <-c.sendFrames:
			if !ok {
				return
			}

			if err := c.writeFrame(frame); err != nil {
				c.fail(err)
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *Channel) writeFrame(frame s101.Frame) error {
	if _, err := c.conn.Write(frame.Encode()); err != nil {
		return errs.Wrap(errs.Io, "failed to write s101 frame", err)
	}

	return nil
}

// receive reads frames off the wire, answers or records keepalives, and
// forwards ember-packet frames downstream. pending, if non-nil, is a frame
// already consumed during negotiation that must be processed first.
func (c *Channel) receive(br *bufio.Reader, out chan<- s101.Frame, pending *s101.Frame) {
	defer close(out)

	if pending != nil {
		if !c.dispatchReceivedFrame(*pending, out) {
			return
		}
	}

	for {
		frame, err := s101.Decode(br)
		if err != nil {
			if errs.Is(err, errs.Deserialization) || errs.Is(err, errs.S101Decode) {
				logger.Debug(fmt.Sprintf("discarding malformed s101 frame: %s", err.Error()))
				continue
			}

			c.fail(errs.Wrap(errs.Io, "receive loop stopped", err))

			return
		}

		if !c.dispatchReceivedFrame(frame, out) {
			return
		}
	}
}

func (c *Channel) dispatchReceivedFrame(frame s101.Frame, out chan<- s101.Frame) bool {
	switch frame.Kind {
	case s101.KindKeepaliveRequest:
		select {
		case c.keepaliveRequests <- struct{}{}:
		case <-c.closed:
			return false
		}

		return true
	case s101.KindKeepaliveResponse, s101.KindEmpty:
		return true
	default:
		select {
		case out <- frame:
			return true
		case <-c.closed:
			return false
		}
	}
}

// unframe discards everything but ember-packet frames (keepalives never
// reach this stage; receive answers them directly) and hands the packet
// bytes on to depacketize.
func (c *Channel) unframe(in <-chan s101.Frame, out chan<- packet.Packet) {
	defer close(out)

	for {
		select {
		case frame, ok := <-in:
			if !ok {
				return
			}

			p, err := packet.FromBytes(frame.Payload)
			if err != nil {
				logger.Debug("discarding malformed ember packet: " + err.Error())
				continue
			}

			select {
			case out <- p:
			case <-c.closed:
				return
			}
		case <-c.closed:
			return
		}
	}
}

// depacketize reassembles packet fragments into complete Root messages.
func (c *Channel) depacketize(in <-chan packet.Packet, out chan<- glow.Root) {
	defer close(out)

	var reassembler packet.Reassembler

	for {
		select {
		case p, ok := <-in:
			if !ok {
				return
			}

			payload, ready := reassembler.Feed(p)
			if !ready {
				continue
			}

			root, err := glow.Decode(payload)
			if err != nil {
				logger.Debug("discarding undecodable ember message: " + err.Error())
				continue
			}

			select {
			case out <- root:
			case <-c.closed:
				return
			}
		case <-c.closed:
			return
		}
	}
}

// originateKeepalive sends a keepalive request on every tick and answers
// the peer's own requests as they arrive.
//
// TODO: a keepalive request that never gets a response is not currently
// treated as a connection failure -- there is no liveness timeout here, so
// a peer that silently stops answering keepalives is only noticed once it
// also stops answering ember traffic.
func (c *Channel) originateKeepalive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.enqueueKeepalive(s101.NewKeepaliveRequestFrame(c.nonEscaping))
		case <-c.keepaliveRequests:
			c.enqueueKeepalive(s101.NewKeepaliveResponseFrame(c.nonEscaping))
		case <-c.closed:
			return
		}
	}
}

// answerKeepalive only responds to the peer's requests; it never
// originates one of its own.
func (c *Channel) answerKeepalive() {
	for {
		select {
		case <-c.keepaliveRequests:
			c.enqueueKeepalive(s101.NewKeepaliveResponseFrame(c.nonEscaping))
		case <-c.closed:
			return
		}
	}
}

func (c *Channel) enqueueKeepalive(frame s101.Frame) {
	select {
	case c.sendFrames <- frame:
	case <-c.closed:
	}
}
