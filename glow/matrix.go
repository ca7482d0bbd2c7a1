package glow

import "github.com/emberplus/emberplus/oid"

// MatrixType is the Matrix.Type enumeration.
type MatrixType int

const (
	MatrixTypeOneToN MatrixType = iota
	MatrixTypeOneToOne
	MatrixTypeNToN
)

// MatrixAddressingMode is the Matrix.AddressingMode enumeration.
type MatrixAddressingMode int

const (
	MatrixAddressingLinear MatrixAddressingMode = iota
	MatrixAddressingNonLinear
)

// ConnectionOperation is the Connection.Operation enumeration.
type ConnectionOperation int

const (
	ConnectionAbsolute ConnectionOperation = iota
	ConnectionConnect
	ConnectionDisconnect
)

// ConnectionDisposition is the Connection.Disposition enumeration.
type ConnectionDisposition int

const (
	ConnectionTally ConnectionDisposition = iota
	ConnectionModified
	ConnectionPending
	ConnectionLocked
)

// ParametersLocation is a matrix's BasePath/InLine choice for where its
// per-signal gain parameters live.
type ParametersLocation struct {
	BasePath    oid.OID
	HasBasePath bool
	InLine      int
	HasInLine   bool
}

func (l ParametersLocation) encode() []byte {
	if l.HasBasePath {
		return encodeOID(l.BasePath)
	}

	return encodeInteger(int64(l.InLine))
}

func decodeParametersLocation(r *Reader) (ParametersLocation, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return ParametersLocation{}, err
	}

	if tag == tagRelativeOID {
		o, err := r.DecodeOID()
		return ParametersLocation{BasePath: o, HasBasePath: true}, err
	}

	i, err := r.DecodeInteger()
	return ParametersLocation{InLine: int(i), HasInLine: true}, err
}

// Label names a matrix label set rooted at BasePath.
type Label struct {
	BasePath    oid.OID
	Description string
}

func (l Label) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(l.BasePath))
	w.put(1, true, encodeUTF8(l.Description))

	return wrapTag(appTag(tagLabel), w.bytes())
}

func decodeLabel(r *Reader) (Label, error) {
	sub, err := r.Open(appTag(tagLabel))
	if err != nil {
		return Label{}, err
	}

	var l Label

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			l.BasePath, err = r.DecodeOID()
			return err
		},
		ctxTag(1): func(r *Reader) error {
			l.Description, err = r.DecodeUTF8()
			return err
		},
	})

	return l, err
}

func encodeLabelCollection(labels []Label) []byte {
	var content []byte
	for _, l := range labels {
		content = append(content, l.encode()...)
	}

	return wrapTag(tagSequence, content)
}

func decodeLabelCollection(r *Reader) ([]Label, error) {
	sub, err := r.Open(tagSequence)
	if err != nil {
		return nil, err
	}

	var out []Label
	for !sub.AtEnd() {
		l, err := decodeLabel(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, l)
	}

	return out, nil
}

// SignalContents describes one matrix target or source signal.
type SignalContents struct {
	Identifier      string
	HasIdentifier   bool
	IsOnline        bool
	HasIsOnline     bool
	LabelsLocation  oid.OID
	HasLabelsLoc    bool
}

func (c SignalContents) encode() []byte {
	var w fieldWriter
	w.put(0, c.HasIdentifier, encodeUTF8(c.Identifier))
	w.put(1, c.HasIsOnline, encodeBoolean(c.IsOnline))
	w.put(2, c.HasLabelsLoc, encodeOID(c.LabelsLocation))

	return w.bytes()
}

func decodeSignalContents(r *Reader) (SignalContents, error) {
	var c SignalContents

	err := decodeFields(r, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.Identifier, c.HasIdentifier = s, true
			return err
		},
		ctxTag(1): func(r *Reader) error {
			b, err := r.DecodeBoolean()
			c.IsOnline, c.HasIsOnline = b, true
			return err
		},
		ctxTag(2): func(r *Reader) error {
			o, err := r.DecodeOID()
			c.LabelsLocation, c.HasLabelsLoc = o, true
			return err
		},
	})

	return c, err
}

// Signal is the common shape of a matrix Target and Source: a number plus
// optional contents.
type Signal struct {
	Number      int
	Contents    SignalContents
	HasContents bool
}

func (s Signal) encode(tag byte) []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(s.Number)))
	w.put(1, s.HasContents, s.Contents.encode())

	return wrapTag(appTag(tag), w.bytes())
}

func decodeSignal(r *Reader, tag byte) (Signal, error) {
	sub, err := r.Open(appTag(tag))
	if err != nil {
		return Signal{}, err
	}

	var s Signal

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			s.Number = int(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			s.Contents, err = decodeSignalContents(r)
			s.HasContents = true
			return err
		},
	})

	return s, err
}

func encodeSignalCollection(tag byte, signals []Signal) []byte {
	var content []byte
	for _, s := range signals {
		content = append(content, s.encode(tag)...)
	}

	return wrapTag(tagSequence, content)
}

func decodeSignalCollection(r *Reader, tag byte) ([]Signal, error) {
	sub, err := r.Open(tagSequence)
	if err != nil {
		return nil, err
	}

	var out []Signal
	for !sub.AtEnd() {
		s, err := decodeSignal(sub, tag)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// Connection describes one crosspoint's current routing.
type Connection struct {
	Target         int
	Sources        oid.OID // packed source numbers, reusing the OID arc encoding
	HasSources     bool
	Operation      ConnectionOperation
	HasOperation   bool
	Disposition    ConnectionDisposition
	HasDisposition bool
}

func (c Connection) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(c.Target)))
	w.put(1, c.HasSources, encodeOID(c.Sources))
	w.put(2, c.HasOperation, encodeInteger(int64(c.Operation)))
	w.put(3, c.HasDisposition, encodeInteger(int64(c.Disposition)))

	return wrapTag(appTag(tagConnection), w.bytes())
}

func decodeConnection(r *Reader) (Connection, error) {
	sub, err := r.Open(appTag(tagConnection))
	if err != nil {
		return Connection{}, err
	}

	var c Connection

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Target = int(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			o, err := r.DecodeOID()
			c.Sources, c.HasSources = o, true
			return err
		},
		ctxTag(2): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Operation, c.HasOperation = ConnectionOperation(i), true
			return err
		},
		ctxTag(3): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Disposition, c.HasDisposition = ConnectionDisposition(i), true
			return err
		},
	})

	return c, err
}

func encodeConnectionCollection(conns []Connection) []byte {
	var content []byte
	for _, c := range conns {
		content = append(content, c.encode()...)
	}

	return wrapTag(tagSequence, content)
}

func decodeConnectionCollection(r *Reader) ([]Connection, error) {
	sub, err := r.Open(tagSequence)
	if err != nil {
		return nil, err
	}

	var out []Connection
	for !sub.AtEnd() {
		c, err := decodeConnection(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, nil
}

// MatrixContents describes a matrix's shape and routing metadata.
type MatrixContents struct {
	Identifier                string
	Description               string
	Type                      MatrixType
	AddressingMode            MatrixAddressingMode
	TargetCount               int
	SourceCount               int
	MaximumTotalConnects      int
	MaximumConnectsPerTarget int
	ParametersLocation        ParametersLocation
	GainParameterNumber       int
	Labels                    []Label
	SchemaIdentifiers         string
	TemplateReference         oid.OID
}

func (c MatrixContents) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeUTF8(c.Identifier))
	w.put(1, true, encodeUTF8(c.Description))
	w.put(2, true, encodeInteger(int64(c.Type)))
	w.put(3, true, encodeInteger(int64(c.AddressingMode)))
	w.put(4, true, encodeInteger(int64(c.TargetCount)))
	w.put(5, true, encodeInteger(int64(c.SourceCount)))
	w.put(6, true, encodeInteger(int64(c.MaximumTotalConnects)))
	w.put(7, true, encodeInteger(int64(c.MaximumConnectsPerTarget)))
	w.put(8, true, c.ParametersLocation.encode())
	w.put(9, true, encodeInteger(int64(c.GainParameterNumber)))
	w.put(10, true, encodeLabelCollection(c.Labels))
	w.put(11, true, encodeUTF8(c.SchemaIdentifiers))
	w.put(12, true, encodeOID(c.TemplateReference))

	return w.bytes()
}

func decodeMatrixContents(r *Reader) (MatrixContents, error) {
	var c MatrixContents

	err := decodeFields(r, map[byte]func(*Reader) error{
		ctxTag(0):  func(r *Reader) error { var e error; c.Identifier, e = r.DecodeUTF8(); return e },
		ctxTag(1):  func(r *Reader) error { var e error; c.Description, e = r.DecodeUTF8(); return e },
		ctxTag(2):  func(r *Reader) error { i, e := r.DecodeInteger(); c.Type = MatrixType(i); return e },
		ctxTag(3):  func(r *Reader) error { i, e := r.DecodeInteger(); c.AddressingMode = MatrixAddressingMode(i); return e },
		ctxTag(4):  func(r *Reader) error { i, e := r.DecodeInteger(); c.TargetCount = int(i); return e },
		ctxTag(5):  func(r *Reader) error { i, e := r.DecodeInteger(); c.SourceCount = int(i); return e },
		ctxTag(6):  func(r *Reader) error { i, e := r.DecodeInteger(); c.MaximumTotalConnects = int(i); return e },
		ctxTag(7):  func(r *Reader) error { i, e := r.DecodeInteger(); c.MaximumConnectsPerTarget = int(i); return e },
		ctxTag(8):  func(r *Reader) error { var e error; c.ParametersLocation, e = decodeParametersLocation(r); return e },
		ctxTag(9):  func(r *Reader) error { i, e := r.DecodeInteger(); c.GainParameterNumber = int(i); return e },
		ctxTag(10): func(r *Reader) error { var e error; c.Labels, e = decodeLabelCollection(r); return e },
		ctxTag(11): func(r *Reader) error { var e error; c.SchemaIdentifiers, e = r.DecodeUTF8(); return e },
		ctxTag(12): func(r *Reader) error { var e error; c.TemplateReference, e = r.DecodeOID(); return e },
	})

	return c, err
}

// Matrix is an unqualified (number-addressed) matrix.
type Matrix struct {
	base
	Contents    MatrixContents
	HasContents bool
	Targets     []Signal
	Sources     []Signal
	Connections []Connection
}

// NewMatrix builds a matrix addressed by its child number.
func NewMatrix(number int, contents MatrixContents) *Matrix {
	return &Matrix{base: base{Number: number}, Contents: contents, HasContents: true}
}

func (m *Matrix) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(m.Number)))
	w.put(1, m.HasContents, wrapTag(tagSet, m.Contents.encode()))
	w.put(2, len(m.Children) > 0, encodeChildren(m.Children))
	w.put(3, len(m.Targets) > 0, encodeSignalCollection(tagTarget, m.Targets))
	w.put(4, len(m.Sources) > 0, encodeSignalCollection(tagSource, m.Sources))
	w.put(5, len(m.Connections) > 0, encodeConnectionCollection(m.Connections))

	return wrapTag(appTag(tagMatrix), w.bytes())
}

func decodeMatrix(r *Reader) (*Matrix, error) {
	sub, err := r.Open(appTag(tagMatrix))
	if err != nil {
		return nil, err
	}

	m := &Matrix{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { i, e := r.DecodeInteger(); m.Number = int(i); return e },
		ctxTag(1): func(r *Reader) error {
			set, e := r.Open(tagSet)
			if e != nil {
				return e
			}
			m.Contents, e = decodeMatrixContents(set)
			m.HasContents = true
			return e
		},
		ctxTag(2): func(r *Reader) error { var e error; m.Children, e = decodeChildrenCollection(r); return e },
		ctxTag(3): func(r *Reader) error { var e error; m.Targets, e = decodeSignalCollection(r, tagTarget); return e },
		ctxTag(4): func(r *Reader) error { var e error; m.Sources, e = decodeSignalCollection(r, tagSource); return e },
		ctxTag(5): func(r *Reader) error { var e error; m.Connections, e = decodeConnectionCollection(r); return e },
	})

	return m, err
}

// QualifiedMatrix is a path-addressed matrix.
type QualifiedMatrix struct {
	base
	Contents    MatrixContents
	HasContents bool
	Targets     []Signal
	Sources     []Signal
	Connections []Connection
}

// NewQualifiedMatrix builds a matrix addressed by its absolute path.
func NewQualifiedMatrix(path oid.OID, contents MatrixContents) *QualifiedMatrix {
	return &QualifiedMatrix{base: base{Path: path, Qualified: true}, Contents: contents, HasContents: true}
}

func (m *QualifiedMatrix) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(m.Path))
	w.put(1, m.HasContents, wrapTag(tagSet, m.Contents.encode()))
	w.put(2, len(m.Children) > 0, encodeChildren(m.Children))
	w.put(3, len(m.Targets) > 0, encodeSignalCollection(tagTarget, m.Targets))
	w.put(4, len(m.Sources) > 0, encodeSignalCollection(tagSource, m.Sources))
	w.put(5, len(m.Connections) > 0, encodeConnectionCollection(m.Connections))

	return wrapTag(appTag(tagQualifiedMatrix), w.bytes())
}

func decodeQualifiedMatrix(r *Reader) (*QualifiedMatrix, error) {
	sub, err := r.Open(appTag(tagQualifiedMatrix))
	if err != nil {
		return nil, err
	}

	m := &QualifiedMatrix{base: base{Qualified: true}}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { var e error; m.Path, e = r.DecodeOID(); return e },
		ctxTag(1): func(r *Reader) error {
			set, e := r.Open(tagSet)
			if e != nil {
				return e
			}
			m.Contents, e = decodeMatrixContents(set)
			m.HasContents = true
			return e
		},
		ctxTag(2): func(r *Reader) error { var e error; m.Children, e = decodeChildrenCollection(r); return e },
		ctxTag(3): func(r *Reader) error { var e error; m.Targets, e = decodeSignalCollection(r, tagTarget); return e },
		ctxTag(4): func(r *Reader) error { var e error; m.Sources, e = decodeSignalCollection(r, tagSource); return e },
		ctxTag(5): func(r *Reader) error { var e error; m.Connections, e = decodeConnectionCollection(r); return e },
	})

	return m, err
}
