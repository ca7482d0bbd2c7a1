package glow

import "github.com/emberplus/emberplus/oid"

// TupleItemDescription names one positional argument's or result's type.
type TupleItemDescription struct {
	Type    ParameterType
	Name    string
	HasName bool
}

func (d TupleItemDescription) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(d.Type)))
	w.put(1, d.HasName, encodeUTF8(d.Name))

	return wrapTag(appTag(tagTupleItemDescription), w.bytes())
}

func decodeTupleItemDescription(r *Reader) (TupleItemDescription, error) {
	sub, err := r.Open(appTag(tagTupleItemDescription))
	if err != nil {
		return TupleItemDescription{}, err
	}

	var d TupleItemDescription

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			d.Type = ParameterType(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			d.Name, err = r.DecodeUTF8()
			d.HasName = true
			return err
		},
	})

	return d, err
}

func encodeTupleDescription(items []TupleItemDescription) []byte {
	var content []byte
	for _, it := range items {
		content = append(content, it.encode()...)
	}

	return wrapTag(tagSequence, content)
}

func decodeTupleDescription(r *Reader) ([]TupleItemDescription, error) {
	sub, err := r.Open(tagSequence)
	if err != nil {
		return nil, err
	}

	var out []TupleItemDescription
	for !sub.AtEnd() {
		it, err := decodeTupleItemDescription(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, it)
	}

	return out, nil
}

func encodeTuple(values []Value) []byte {
	var content []byte
	for _, v := range values {
		content = append(content, v.encode()...)
	}

	return wrapTag(tagSequence, content)
}

func decodeTuple(r *Reader) ([]Value, error) {
	sub, err := r.Open(tagSequence)
	if err != nil {
		return nil, err
	}

	var out []Value
	for !sub.AtEnd() {
		v, err := decodeValue(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// FunctionContents describes a function's calling convention.
type FunctionContents struct {
	Identifier        string
	HasIdentifier     bool
	Description       string
	HasDescription    bool
	Arguments         []TupleItemDescription
	HasArguments      bool
	Result            []TupleItemDescription
	HasResult         bool
	TemplateReference oid.OID
	HasTemplateRef    bool
}

func (c FunctionContents) encode() []byte {
	var w fieldWriter
	w.put(0, c.HasIdentifier, encodeUTF8(c.Identifier))
	w.put(1, c.HasDescription, encodeUTF8(c.Description))
	w.put(2, c.HasArguments, encodeTupleDescription(c.Arguments))
	w.put(3, c.HasResult, encodeTupleDescription(c.Result))
	w.put(4, c.HasTemplateRef, encodeOID(c.TemplateReference))

	return w.bytes()
}

func decodeFunctionContents(r *Reader) (FunctionContents, error) {
	var c FunctionContents

	err := decodeFields(r, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { var e error; c.Identifier, e = r.DecodeUTF8(); c.HasIdentifier = true; return e },
		ctxTag(1): func(r *Reader) error { var e error; c.Description, e = r.DecodeUTF8(); c.HasDescription = true; return e },
		ctxTag(2): func(r *Reader) error { var e error; c.Arguments, e = decodeTupleDescription(r); c.HasArguments = true; return e },
		ctxTag(3): func(r *Reader) error { var e error; c.Result, e = decodeTupleDescription(r); c.HasResult = true; return e },
		ctxTag(4): func(r *Reader) error { var e error; c.TemplateReference, e = r.DecodeOID(); c.HasTemplateRef = true; return e },
	})

	return c, err
}

// Function is an unqualified (number-addressed) function.
type Function struct {
	base
	Contents    FunctionContents
	HasContents bool
}

// NewFunction builds a function addressed by its child number.
func NewFunction(number int, contents FunctionContents) *Function {
	return &Function{base: base{Number: number}, Contents: contents, HasContents: true}
}

func (f *Function) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(f.Number)))
	w.put(1, f.HasContents, wrapTag(tagSet, f.Contents.encode()))
	w.put(2, len(f.Children) > 0, encodeChildren(f.Children))

	return wrapTag(appTag(tagFunction), w.bytes())
}

func decodeFunction(r *Reader) (*Function, error) {
	sub, err := r.Open(appTag(tagFunction))
	if err != nil {
		return nil, err
	}

	f := &Function{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { i, e := r.DecodeInteger(); f.Number = int(i); return e },
		ctxTag(1): func(r *Reader) error {
			set, e := r.Open(tagSet)
			if e != nil {
				return e
			}
			f.Contents, e = decodeFunctionContents(set)
			f.HasContents = true
			return e
		},
		ctxTag(2): func(r *Reader) error { var e error; f.Children, e = decodeChildrenCollection(r); return e },
	})

	return f, err
}

// QualifiedFunction is a path-addressed function.
type QualifiedFunction struct {
	base
	Contents    FunctionContents
	HasContents bool
}

// NewQualifiedFunction builds a function addressed by its absolute path.
func NewQualifiedFunction(path oid.OID, contents FunctionContents) *QualifiedFunction {
	return &QualifiedFunction{base: base{Path: path, Qualified: true}, Contents: contents, HasContents: true}
}

func (f *QualifiedFunction) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(f.Path))
	w.put(1, f.HasContents, wrapTag(tagSet, f.Contents.encode()))
	w.put(2, len(f.Children) > 0, encodeChildren(f.Children))

	return wrapTag(appTag(tagQualifiedFunction), w.bytes())
}

func decodeQualifiedFunction(r *Reader) (*QualifiedFunction, error) {
	sub, err := r.Open(appTag(tagQualifiedFunction))
	if err != nil {
		return nil, err
	}

	f := &QualifiedFunction{base: base{Qualified: true}}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { var e error; f.Path, e = r.DecodeOID(); return e },
		ctxTag(1): func(r *Reader) error {
			set, e := r.Open(tagSet)
			if e != nil {
				return e
			}
			f.Contents, e = decodeFunctionContents(set)
			f.HasContents = true
			return e
		},
		ctxTag(2): func(r *Reader) error { var e error; f.Children, e = decodeChildrenCollection(r); return e },
	})

	return f, err
}

// Invocation requests a function call: an optional caller-chosen id to
// correlate the eventual InvocationResult, plus positional arguments.
type Invocation struct {
	InvocationID    int
	HasInvocationID bool
	Arguments       []Value
}

func (i Invocation) Encode() []byte {
	var w fieldWriter
	w.put(0, i.HasInvocationID, encodeInteger(int64(i.InvocationID)))
	w.put(1, len(i.Arguments) > 0, encodeTuple(i.Arguments))

	return wrapTag(appTag(tagInvocation), w.bytes())
}

func decodeInvocation(r *Reader) (Invocation, error) {
	sub, err := r.Open(appTag(tagInvocation))
	if err != nil {
		return Invocation{}, err
	}

	var i Invocation

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			v, err := r.DecodeInteger()
			i.InvocationID, i.HasInvocationID = int(v), true
			return err
		},
		ctxTag(1): func(r *Reader) error {
			i.Arguments, err = decodeTuple(r)
			return err
		},
	})

	return i, err
}

// InvocationResult carries a function call's outcome back to the caller.
type InvocationResult struct {
	InvocationID int
	Success      bool
	HasSuccess   bool
	Result       []Value
	HasResult    bool
}

func (r InvocationResult) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(r.InvocationID)))
	w.put(1, r.HasSuccess, encodeBoolean(r.Success))
	w.put(2, r.HasResult, encodeTuple(r.Result))

	return wrapTag(appTag(tagInvocationResult), w.bytes())
}

func decodeInvocationResult(r *Reader) (InvocationResult, error) {
	sub, err := r.Open(appTag(tagInvocationResult))
	if err != nil {
		return InvocationResult{}, err
	}

	var ir InvocationResult

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { i, e := r.DecodeInteger(); ir.InvocationID = int(i); return e },
		ctxTag(1): func(r *Reader) error {
			b, e := r.DecodeBoolean()
			ir.Success, ir.HasSuccess = b, true
			return e
		},
		ctxTag(2): func(r *Reader) error {
			v, e := decodeTuple(r)
			ir.Result, ir.HasResult = v, true
			return e
		},
	})

	return ir, err
}
