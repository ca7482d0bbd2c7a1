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

import "github.com/emberplus/emberplus/errs"

// ValueKind discriminates the Value union.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInteger
	ValueReal
	ValueString
	ValueBoolean
	ValueOctets
)

// Value is a parameter/stream/function-argument value: exactly one of
// Integer, Real, String, Boolean or Octets is meaningful, selected by Kind.
type Value struct {
	Kind    ValueKind
	Integer int64
	Real    float64
	String  string
	Boolean bool
	Octets  []byte
}

func IntegerValue(v int64) Value  { return Value{Kind: ValueInteger, Integer: v} }
func RealValue(v float64) Value   { return Value{Kind: ValueReal, Real: v} }
func StringValue(v string) Value  { return Value{Kind: ValueString, String: v} }
func BooleanValue(v bool) Value   { return Value{Kind: ValueBoolean, Boolean: v} }
func OctetsValue(v []byte) Value  { return Value{Kind: ValueOctets, Octets: v} }
func NullValue() Value            { return Value{Kind: ValueNull} }

func (v Value) encode() []byte {
	switch v.Kind {
	case ValueInteger:
		return encodeInteger(v.Integer)
	case ValueReal:
		return encodeReal(v.Real)
	case ValueString:
		return encodeUTF8(v.String)
	case ValueBoolean:
		return encodeBoolean(v.Boolean)
	case ValueOctets:
		return encodeOctetString(v.Octets)
	default:
		return encodeNull()
	}
}

// decodeValue sniffs the next tag in r and decodes whichever Value variant
// it names.
func decodeValue(r *Reader) (Value, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return Value{}, err
	}

	switch tag {
	case tagInteger:
		i, err := r.DecodeInteger()
		return IntegerValue(i), err
	case tagReal:
		f, err := r.DecodeReal()
		return RealValue(f), err
	case tagUTF8String:
		s, err := r.DecodeUTF8()
		return StringValue(s), err
	case tagBoolean:
		b, err := r.DecodeBoolean()
		return BooleanValue(b), err
	case tagOctetString:
		o, err := r.DecodeOctetString()
		return OctetsValue(o), err
	case tagNull:
		return NullValue(), r.DecodeNull()
	default:
		return Value{}, errs.Newf(errs.BerDecode, "unrecognized Value tag %#02x", tag)
	}
}

// MinMaxKind discriminates the MinMax union: a bound is either absent
// (Null), an Integer or a Real.
type MinMaxKind int

const (
	MinMaxNull MinMaxKind = iota
	MinMaxInteger
	MinMaxReal
)

// MinMax is a parameter minimum/maximum bound.
type MinMax struct {
	Kind    MinMaxKind
	Integer int64
	Real    float64
}

func IntegerBound(v int64) MinMax { return MinMax{Kind: MinMaxInteger, Integer: v} }
func RealBound(v float64) MinMax  { return MinMax{Kind: MinMaxReal, Real: v} }

func (m MinMax) encode() []byte {
	switch m.Kind {
	case MinMaxInteger:
		return encodeInteger(m.Integer)
	case MinMaxReal:
		return encodeReal(m.Real)
	default:
		return encodeNull()
	}
}

func decodeMinMax(r *Reader) (MinMax, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return MinMax{}, err
	}

	switch tag {
	case tagInteger:
		i, err := r.DecodeInteger()
		return IntegerBound(i), err
	case tagReal:
		f, err := r.DecodeReal()
		return RealBound(f), err
	case tagNull:
		return MinMax{}, r.DecodeNull()
	default:
		return MinMax{}, errs.Newf(errs.BerDecode, "unrecognized MinMax tag %#02x", tag)
	}
}
