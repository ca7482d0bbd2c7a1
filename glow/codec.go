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

package glow

import (
	"encoding/asn1"

	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/oid"
)

// Reader walks a definite-length BER buffer tag by tag. It does not support
// indefinite length (a 0x80 length octet): none of the scenarios this
// module needs to decode produce it, and the teacher's own streaming
// decoder never scanned it in a nesting-safe way either.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for tag-at-a-time decoding.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// AtEnd reports whether every byte has been consumed.
func (r *Reader) AtEnd() bool { return r.Len() == 0 }

// Remaining returns every byte not yet consumed.
func (r *Reader) Remaining() []byte { return r.buf[r.pos:] }

func (r *Reader) readByte() (byte, error) {
	if r.AtEnd() {
		return 0, errs.New(errs.BerDecode, "unexpected end of BER data")
	}

	b := r.buf[r.pos]
	r.pos++

	return b, nil
}

func (r *Reader) readN(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, errs.Newf(errs.BerDecode, "truncated BER content: need %d bytes, have %d", n, r.Len())
	}

	out := r.buf[r.pos : r.pos+n]
	r.pos += n

	return out, nil
}

// PeekTag returns the next tag byte without consuming it.
func (r *Reader) PeekTag() (byte, error) {
	if r.AtEnd() {
		return 0, errs.New(errs.BerDecode, "unexpected end of BER data")
	}

	return r.buf[r.pos], nil
}

func (r *Reader) readLength() (int, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}

	if b&0x80 == 0 {
		return int(b), nil
	}

	n := int(b & 0x7f)
	if n == 0 {
		return 0, errs.New(errs.BerDecode, "indefinite-length BER is not supported")
	}

	if n > 4 {
		return 0, errs.New(errs.BerDecode, "BER length field too long")
	}

	lb, err := r.readN(n)
	if err != nil {
		return 0, err
	}

	length := 0
	for _, b := range lb {
		length = length<<8 | int(b)
	}

	return length, nil
}

// Open consumes a tag byte (which must equal want) and its length, and
// returns a sub-Reader over exactly that many content bytes.
func (r *Reader) Open(want byte) (*Reader, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}

	if tag != want {
		return nil, errs.Newf(errs.BerDecode, "unexpected BER tag %#02x, want %#02x", tag, want)
	}

	length, err := r.readLength()
	if err != nil {
		return nil, err
	}

	content, err := r.readN(length)
	if err != nil {
		return nil, err
	}

	return NewReader(content), nil
}

// Skip consumes one full tag-length-content triplet without interpreting
// it, for tolerating fields this build doesn't recognize.
func (r *Reader) Skip() error {
	if _, err := r.readByte(); err != nil {
		return err
	}

	length, err := r.readLength()
	if err != nil {
		return err
	}

	_, err = r.readN(length)

	return err
}

// DecodeInteger reads a universal INTEGER.
func (r *Reader) DecodeInteger() (int64, error) {
	sub, err := r.Open(tagInteger)
	if err != nil {
		return 0, err
	}

	return decodeTwosComplement(sub.Remaining()), nil
}

// DecodeBoolean reads a universal BOOLEAN.
func (r *Reader) DecodeBoolean() (bool, error) {
	sub, err := r.Open(tagBoolean)
	if err != nil {
		return false, err
	}

	b := sub.Remaining()
	if len(b) == 0 {
		return false, errs.New(errs.BerDecode, "empty BOOLEAN content")
	}

	return b[0] != 0, nil
}

// DecodeUTF8 reads a universal UTF8String.
func (r *Reader) DecodeUTF8() (string, error) {
	sub, err := r.Open(tagUTF8String)
	if err != nil {
		return "", err
	}

	return string(sub.Remaining()), nil
}

// DecodeOctetString reads a universal OCTET STRING.
func (r *Reader) DecodeOctetString() ([]byte, error) {
	sub, err := r.Open(tagOctetString)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), sub.Remaining()...), nil
}

// DecodeNull reads a universal NULL.
func (r *Reader) DecodeNull() error {
	_, err := r.Open(tagNull)
	return err
}

// DecodeOID reads a RELATIVE-OID.
func (r *Reader) DecodeOID() (oid.OID, error) {
	sub, err := r.Open(tagRelativeOID)
	if err != nil {
		return nil, err
	}

	return oid.Decode(sub.Remaining())
}

// DecodeReal reads a universal REAL, per X.690 §8.5's binary encoding.
func (r *Reader) DecodeReal() (float64, error) {
	sub, err := r.Open(tagReal)
	if err != nil {
		return 0, err
	}

	return decodeBERReal(sub.Remaining())
}

func decodeTwosComplement(content []byte) int64 {
	var v int64
	if len(content) > 0 && content[0]&0x80 != 0 {
		v = -1
	}

	for _, b := range content {
		v = v<<8 | int64(b)
	}

	return v
}

// --- encoding side ---

func wrapTag(tag byte, content []byte) []byte {
	out := make([]byte, 0, len(content)+6)
	out = append(out, tag)
	out = append(out, encodeLength(len(content))...)

	return append(out, content...)
}

func encodeLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}

	var lb []byte
	for v := n; v > 0; v >>= 8 {
		lb = append([]byte{byte(v)}, lb...)
	}

	return append([]byte{0x80 | byte(len(lb))}, lb...)
}

// encodeInteger renders the minimal definite-length INTEGER TLV for v, via
// encoding/asn1's two's-complement marshaling (Marshal on an integer type
// always returns the complete tag+length+content triplet).
func encodeInteger(v int64) []byte {
	b, err := asn1.Marshal(v)
	if err != nil {
		// v is always representable as an INTEGER; asn1.Marshal cannot fail here.
		panic(err)
	}

	return b
}

func encodeBoolean(v bool) []byte {
	content := byte(0x00)
	if v {
		content = 0xff
	}

	return wrapTag(tagBoolean, []byte{content})
}

func encodeUTF8(s string) []byte {
	return wrapTag(tagUTF8String, []byte(s))
}

func encodeOctetString(b []byte) []byte {
	return wrapTag(tagOctetString, b)
}

func encodeNull() []byte {
	return wrapTag(tagNull, nil)
}

func encodeOID(o oid.OID) []byte {
	return wrapTag(tagRelativeOID, oid.Encode(o))
}

func encodeReal(f float64) []byte {
	return wrapTag(tagReal, encodeBERReal(f))
}
