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

// Package errs defines the shared error taxonomy used across the module:
// Deserialization, Io, Connection, S101Decode, BerEncode and BerDecode.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether it is recoverable.
type Kind int

const (
	// Deserialization covers malformed S101 or BER content. Recoverable: log and continue.
	Deserialization Kind = iota
	// Io covers socket failures. Fatal: tears the connection pipeline down.
	Io
	// Connection covers logical protocol failures (negotiation timeout, peer closed mid-handshake).
	Connection
	// S101Decode covers an unknown S101 enum variant (command byte, flag byte).
	S101Decode
	// BerEncode covers a failure while encoding a Glow value to BER.
	BerEncode
	// BerDecode covers a failure while decoding a Glow value from BER.
	BerDecode
)

func (k Kind) String() string {
	switch k {
	case Deserialization:
		return "deserialization"
	case Io:
		return "io"
	case Connection:
		return "connection"
	case S101Decode:
		return "s101 decode"
	case BerEncode:
		return "ber encode"
	case BerDecode:
		return "ber decode"
	default:
		return "unknown"
	}
}

// Error is the taxonomy wrapper every package-level error returns as. It
// carries a Kind and keeps the underlying cause (if any), exposed through
// Unwrap so errors.Is/errors.As keep working across the boundary.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s error: %s: %s", e.Kind, e.msg, e.err)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New builds a Kind error from a plain message, no wrapped cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

// Newf builds a Kind error from a formatted message, no wrapped cause.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, msg: msg, err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}

	return false
}
