/*
** Copyright (C) 2001-2024 Zabbix SIA
** Adaptations (C) 2024 JKU
**
** This program is free software: you can redistribute it and/or modify it under the terms of
** the GNU Affero General Public License as published by the Free Software Foundation, version 3.
**
** This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
** without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
** See the GNU Affero General Public License for more details.
**
** You should have received a copy of the GNU Affero General Public License along with this program.
** If not, see <https://www.gnu.org/licenses/>.
**/

// Package oid implements Ember+ relative object identifiers: ordered
// sequences of unsigned 32-bit arcs locating a tree element relative to the
// root, with base-128 big-endian wire encoding.
package oid

import (
	"fmt"
	"strings"

	"github.com/emberplus/emberplus/errs"
)

// OID is a relative object identifier. A nil or empty OID denotes the root.
type OID []uint32

// Root returns the (empty) root OID.
func Root() OID {
	return nil
}

// IsRoot reports whether o denotes the tree root (empty arc list).
func (o OID) IsRoot() bool {
	return len(o) == 0
}

// Parent returns the prefix of o minus its last arc. The parent of the root
// is the root itself.
func (o OID) Parent() OID {
	if len(o) == 0 {
		return nil
	}

	out := make(OID, len(o)-1)
	copy(out, o[:len(o)-1])

	return out
}

// Join appends one arc to o and returns the result, leaving o untouched.
func Join(o OID, arc uint32) OID {
	out := make(OID, len(o)+1)
	copy(out, o)
	out[len(o)] = arc

	return out
}

// Equal reports structural equality between two OIDs.
func (o OID) Equal(other OID) bool {
	if len(o) != len(other) {
		return false
	}

	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}

	return true
}

// String renders the OID in dotted-arc form, e.g. "1.2.3". The root renders
// as the empty string.
func (o OID) String() string {
	parts := make([]string, len(o))
	for i, arc := range o {
		parts[i] = fmt.Sprintf("%d", arc)
	}

	return strings.Join(parts, ".")
}

// Key returns a comparable string suitable for use as a map key (the
// traversal engine's in_flight/explored sets are keyed this way).
func (o OID) Key() string {
	return o.String()
}

// Encode returns o as a new slice of base-128 big-endian arcs: each
// arc is split into 7-bit groups, most-significant group first, every group
// but the last has its high bit set as a continuation marker.
func Encode(o OID) []byte {
	var out []byte

	for _, arc := range o {
		out = append(out, encodeArc(arc)...)
	}

	return out
}

func encodeArc(arc uint32) []byte {
	if arc == 0 {
		return []byte{0x00}
	}

	var groups []byte
	for v := arc; v > 0; v >>= 7 {
		groups = append(groups, byte(v&0x7f))
	}

	// groups is least-significant-group first; emit most-significant first,
	// setting the continuation bit on every group but the last emitted.
	out := make([]byte, len(groups))
	for i, g := range groups {
		pos := len(groups) - 1 - i
		if pos != len(groups)-1 {
			g |= 0x80
		}
		out[pos] = g
	}

	return out
}

// Decode parses a base-128 big-endian arc sequence (the raw content octets
// of a universal-tag-13 value, without the tag/length prefix) into an OID.
func Decode(data []byte) (OID, error) {
	var out OID

	var arc uint64
	started := false

	for _, b := range data {
		arc = arc<<7 | uint64(b&0x7f)
		started = true

		if b&0x80 == 0 {
			if arc > 0xffffffff {
				return nil, errs.New(errs.BerDecode, "relative OID arc overflows uint32")
			}

			out = append(out, uint32(arc))
			arc = 0
			started = false
		}
	}

	if started {
		return nil, errs.New(errs.BerDecode, "truncated relative OID: trailing continuation bit")
	}

	return out, nil
}
