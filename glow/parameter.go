package glow

import "github.com/emberplus/emberplus/oid"

// ParameterType is the Parameter.Type enumeration.
type ParameterType int

const (
	ParameterTypeNull ParameterType = iota
	ParameterTypeInteger
	ParameterTypeReal
	ParameterTypeString
	ParameterTypeBoolean
	ParameterTypeTrigger
	ParameterTypeEnum
	ParameterTypeOctets
)

// ParameterAccess is the Parameter.Access enumeration.
type ParameterAccess int

const (
	ParameterAccessNone ParameterAccess = iota
	ParameterAccessRead
	ParameterAccessWrite
	ParameterAccessReadWrite
)

// StringIntegerPair is one entry of a Parameter's enumeration map.
type StringIntegerPair struct {
	EntryString  string
	EntryInteger int
}

func (p StringIntegerPair) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeUTF8(p.EntryString))
	w.put(1, true, encodeInteger(int64(p.EntryInteger)))

	return wrapTag(appTag(tagStringIntegerPair), w.bytes())
}

func decodeStringIntegerPair(r *Reader) (StringIntegerPair, error) {
	sub, err := r.Open(appTag(tagStringIntegerPair))
	if err != nil {
		return StringIntegerPair{}, err
	}

	var p StringIntegerPair

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			p.EntryString, err = r.DecodeUTF8()
			return err
		},
		ctxTag(1): func(r *Reader) error {
			i, err := r.DecodeInteger()
			p.EntryInteger = int(i)
			return err
		},
	})

	return p, err
}

func encodeStringIntegerCollection(entries []StringIntegerPair) []byte {
	var content []byte
	for _, e := range entries {
		content = append(content, e.encode()...)
	}

	return wrapTag(appTag(tagStringIntegerColl), content)
}

func decodeStringIntegerCollection(r *Reader) ([]StringIntegerPair, error) {
	sub, err := r.Open(appTag(tagStringIntegerColl))
	if err != nil {
		return nil, err
	}

	var out []StringIntegerPair
	for !sub.AtEnd() {
		p, err := decodeStringIntegerPair(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, nil
}

// StreamFormat is the binary layout of a Parameter's stream data.
type StreamFormat int

const (
	StreamFormatUint8    StreamFormat = 0
	StreamFormatUint16BE StreamFormat = 2
	StreamFormatUint16LE StreamFormat = 3
	StreamFormatUint32BE StreamFormat = 4
	StreamFormatUint32LE StreamFormat = 5
	StreamFormatUint64BE StreamFormat = 6
	StreamFormatUint64LE StreamFormat = 7
	StreamFormatInt8     StreamFormat = 8
	StreamFormatInt16BE  StreamFormat = 10
	StreamFormatInt16LE  StreamFormat = 11
	StreamFormatInt32BE  StreamFormat = 12
	StreamFormatInt32LE  StreamFormat = 13
	StreamFormatInt64BE  StreamFormat = 14
	StreamFormatInt64LE  StreamFormat = 15
	StreamFormatFloat32BE StreamFormat = 20
	StreamFormatFloat32LE StreamFormat = 21
	StreamFormatFloat64BE StreamFormat = 22
	StreamFormatFloat64LE StreamFormat = 23
)

// StreamDescription describes the binary layout of a streamed parameter
// value: its element format and its byte offset within the stream packet.
type StreamDescription struct {
	Format StreamFormat
	Offset int
}

func (d StreamDescription) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(d.Format)))
	w.put(1, true, encodeInteger(int64(d.Offset)))

	return wrapTag(appTag(tagStreamDescription), w.bytes())
}

func decodeStreamDescription(r *Reader) (StreamDescription, error) {
	sub, err := r.Open(appTag(tagStreamDescription))
	if err != nil {
		return StreamDescription{}, err
	}

	var d StreamDescription

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			d.Format = StreamFormat(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			i, err := r.DecodeInteger()
			d.Offset = int(i)
			return err
		},
	})

	return d, err
}

// ParameterContents carries a parameter's descriptive and value fields.
// Every field is optional on the wire; the Has* flags track presence.
type ParameterContents struct {
	Identifier        string
	HasIdentifier     bool
	Description       string
	HasDescription    bool
	Value             Value
	HasValue          bool
	Minimum           MinMax
	HasMinimum        bool
	Maximum           MinMax
	HasMaximum        bool
	Access            ParameterAccess
	HasAccess         bool
	Format            string
	HasFormat         bool
	Enumeration       string
	HasEnumeration    bool
	Factor            int
	HasFactor         bool
	IsOnline          bool
	HasIsOnline       bool
	Formula           string
	HasFormula        bool
	Step              int
	HasStep           bool
	Default           Value
	HasDefault        bool
	Type              ParameterType
	HasType           bool
	StreamIdentifier  int
	HasStreamID       bool
	EnumMap           []StringIntegerPair
	HasEnumMap        bool
	StreamDescriptor  StreamDescription
	HasStreamDesc     bool
	SchemaIdentifiers string
	HasSchemaIDs      bool
	TemplateReference oid.OID
	HasTemplateRef    bool
}

func (c ParameterContents) encode() []byte {
	var w fieldWriter
	w.put(0, c.HasIdentifier, encodeUTF8(c.Identifier))
	w.put(1, c.HasDescription, encodeUTF8(c.Description))
	w.put(2, c.HasValue, c.Value.encode())
	w.put(3, c.HasMinimum, c.Minimum.encode())
	w.put(4, c.HasMaximum, c.Maximum.encode())
	w.put(5, c.HasAccess, encodeInteger(int64(c.Access)))
	w.put(6, c.HasFormat, encodeUTF8(c.Format))
	w.put(7, c.HasEnumeration, encodeUTF8(c.Enumeration))
	w.put(8, c.HasFactor, encodeInteger(int64(c.Factor)))
	w.put(9, c.HasIsOnline, encodeBoolean(c.IsOnline))
	w.put(10, c.HasFormula, encodeUTF8(c.Formula))
	w.put(11, c.HasStep, encodeInteger(int64(c.Step)))
	w.put(12, c.HasDefault, c.Default.encode())
	w.put(13, c.HasType, encodeInteger(int64(c.Type)))
	w.put(14, c.HasStreamID, encodeInteger(int64(c.StreamIdentifier)))
	w.put(15, c.HasEnumMap, encodeStringIntegerCollection(c.EnumMap))
	w.put(16, c.HasStreamDesc, c.StreamDescriptor.encode())
	w.put(17, c.HasSchemaIDs, encodeUTF8(c.SchemaIdentifiers))
	w.put(18, c.HasTemplateRef, encodeOID(c.TemplateReference))

	return w.bytes()
}

func decodeParameterContents(r *Reader) (ParameterContents, error) {
	var c ParameterContents

	err := decodeFields(r, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Identifier, c.HasIdentifier = s, true
			return err
		},
		ctxTag(1): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Description, c.HasDescription = s, true
			return err
		},
		ctxTag(2): func(r *Reader) error {
			v, err := decodeValue(r)
			c.Value, c.HasValue = v, true
			return err
		},
		ctxTag(3): func(r *Reader) error {
			m, err := decodeMinMax(r)
			c.Minimum, c.HasMinimum = m, true
			return err
		},
		ctxTag(4): func(r *Reader) error {
			m, err := decodeMinMax(r)
			c.Maximum, c.HasMaximum = m, true
			return err
		},
		ctxTag(5): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Access, c.HasAccess = ParameterAccess(i), true
			return err
		},
		ctxTag(6): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Format, c.HasFormat = s, true
			return err
		},
		ctxTag(7): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Enumeration, c.HasEnumeration = s, true
			return err
		},
		ctxTag(8): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Factor, c.HasFactor = int(i), true
			return err
		},
		ctxTag(9): func(r *Reader) error {
			b, err := r.DecodeBoolean()
			c.IsOnline, c.HasIsOnline = b, true
			return err
		},
		ctxTag(10): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Formula, c.HasFormula = s, true
			return err
		},
		ctxTag(11): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Step, c.HasStep = int(i), true
			return err
		},
		ctxTag(12): func(r *Reader) error {
			v, err := decodeValue(r)
			c.Default, c.HasDefault = v, true
			return err
		},
		ctxTag(13): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Type, c.HasType = ParameterType(i), true
			return err
		},
		ctxTag(14): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.StreamIdentifier, c.HasStreamID = int(i), true
			return err
		},
		ctxTag(15): func(r *Reader) error {
			m, err := decodeStringIntegerCollection(r)
			c.EnumMap, c.HasEnumMap = m, true
			return err
		},
		ctxTag(16): func(r *Reader) error {
			d, err := decodeStreamDescription(r)
			c.StreamDescriptor, c.HasStreamDesc = d, true
			return err
		},
		ctxTag(17): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.SchemaIdentifiers, c.HasSchemaIDs = s, true
			return err
		},
		ctxTag(18): func(r *Reader) error {
			o, err := r.DecodeOID()
			c.TemplateReference, c.HasTemplateRef = o, true
			return err
		},
	})

	return c, err
}

// Parameter is an unqualified (number-addressed) parameter.
type Parameter struct {
	base
	Contents    ParameterContents
	HasContents bool
}

// NewParameter builds a parameter addressed by its child number.
func NewParameter(number int, contents ParameterContents) *Parameter {
	return &Parameter{base: base{Number: number}, Contents: contents, HasContents: true}
}

func (p *Parameter) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(p.Number)))
	w.put(1, p.HasContents, wrapTag(tagSet, p.Contents.encode()))
	w.put(2, len(p.Children) > 0, encodeChildren(p.Children))

	return wrapTag(appTag(tagParameter), w.bytes())
}

func decodeParameter(r *Reader) (*Parameter, error) {
	sub, err := r.Open(appTag(tagParameter))
	if err != nil {
		return nil, err
	}

	p := &Parameter{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			p.Number = int(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			set, err := r.Open(tagSet)
			if err != nil {
				return err
			}

			p.Contents, err = decodeParameterContents(set)
			p.HasContents = true

			return err
		},
		ctxTag(2): func(r *Reader) error {
			p.Children, err = decodeChildrenCollection(r)
			return err
		},
	})

	return p, err
}

// QualifiedParameter is a path-addressed parameter.
type QualifiedParameter struct {
	base
	Contents    ParameterContents
	HasContents bool
}

// NewQualifiedParameter builds a parameter addressed by its absolute path.
func NewQualifiedParameter(path oid.OID, contents ParameterContents) *QualifiedParameter {
	return &QualifiedParameter{
		base:        base{Path: path, Qualified: true},
		Contents:    contents,
		HasContents: true,
	}
}

func (p *QualifiedParameter) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(p.Path))
	w.put(1, p.HasContents, wrapTag(tagSet, p.Contents.encode()))
	w.put(2, len(p.Children) > 0, encodeChildren(p.Children))

	return wrapTag(appTag(tagQualifiedParameter), w.bytes())
}

func decodeQualifiedParameter(r *Reader) (*QualifiedParameter, error) {
	sub, err := r.Open(appTag(tagQualifiedParameter))
	if err != nil {
		return nil, err
	}

	p := &QualifiedParameter{base: base{Qualified: true}}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			p.Path, err = r.DecodeOID()
			return err
		},
		ctxTag(1): func(r *Reader) error {
			set, err := r.Open(tagSet)
			if err != nil {
				return err
			}

			p.Contents, err = decodeParameterContents(set)
			p.HasContents = true

			return err
		},
		ctxTag(2): func(r *Reader) error {
			p.Children, err = decodeChildrenCollection(r)
			return err
		},
	})

	return p, err
}
