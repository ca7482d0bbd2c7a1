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

// Package packet implements the Glow envelope: the 5-byte header that
// precedes a BER payload inside every S101 ember-packet body, and the
// fragmentation/reassembly of oversized Glow payloads into MaxPayload-sized
// chunks.
package packet

import (
	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/s101"
)

// MaxPayload is the largest BER payload carried by a single packet before
// fragmentation kicks in.
const MaxPayload = 1024

const (
	glowDTD      = 0x01
	glowAppBytes = 0x02
	// GlowVersionMajor and GlowVersionMinor are the Glow schema version this
	// module speaks (2.50).
	GlowVersionMajor = 2
	GlowVersionMinor = 50
)

// Packet is one Glow envelope: a position flag plus a BER payload fragment.
type Packet struct {
	Flag         byte
	DTD          byte
	AppBytes     byte
	VersionMinor byte
	VersionMajor byte
	Payload      []byte
}

// Len is the on-wire length of the packet: payload plus 3 header bytes
// (flag, dtd, appBytes) plus AppBytes additional bytes (the glow version
// octets).
func (p Packet) Len() int {
	return len(p.Payload) + 3 + int(p.AppBytes)
}

// ToBytes renders the packet's 5-byte header followed by its payload. Note
// the header stores the minor version byte before the major one.
func (p Packet) ToBytes() []byte {
	out := make([]byte, 0, p.Len())
	out = append(out, p.Flag, p.DTD, p.AppBytes, p.VersionMinor, p.VersionMajor)

	return append(out, p.Payload...)
}

// FromBytes parses a packet's header and payload out of buf (the s101 ember
// packet body).
func FromBytes(buf []byte) (Packet, error) {
	if len(buf) <= 5 {
		return Packet{}, errs.Newf(errs.Deserialization, "invalid packet length %d (minimum is 6)", len(buf))
	}

	return Packet{
		Flag:         buf[0],
		DTD:          buf[1],
		AppBytes:     buf[2],
		VersionMinor: buf[3],
		VersionMajor: buf[4],
		Payload:      append([]byte(nil), buf[5:]...),
	}, nil
}

func newPacket(flag byte, payload []byte) Packet {
	return Packet{
		Flag:         flag,
		DTD:          glowDTD,
		AppBytes:     glowAppBytes,
		VersionMinor: GlowVersionMinor,
		VersionMajor: GlowVersionMajor,
		Payload:      payload,
	}
}

// ToPackets fragments a serialized Root into MaxPayload-sized packets. A
// zero-length payload yields zero packets; a payload that fits in one
// chunk yields a single "single" packet; a larger payload yields one
// "first", zero or more "middle" and one "last" packet.
func ToPackets(payload []byte) []Packet {
	if len(payload) == 0 {
		return nil
	}

	if len(payload) <= MaxPayload {
		return []Packet{newPacket(s101.FlagSinglePacket, payload)}
	}

	var packets []Packet

	for offset := 0; offset < len(payload); offset += MaxPayload {
		end := offset + MaxPayload
		if end > len(payload) {
			end = len(payload)
		}

		flag := byte(s101.FlagMultiPacket)

		switch {
		case offset == 0:
			flag = s101.FlagMultiPacketFirst
		case end == len(payload):
			flag = s101.FlagMultiPacketLast
		}

		packets = append(packets, newPacket(flag, payload[offset:end]))
	}

	return packets
}
