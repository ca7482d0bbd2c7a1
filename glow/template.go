package glow

import "github.com/emberplus/emberplus/errs"

// encodeTemplateElement renders the Parameter/Node/Matrix/Function value a
// template describes, using that element's own APPLICATION tag directly
// (the tag alone distinguishes the choice, same as a qualified RootElement
// arm).
func encodeTemplateElement(e Element) []byte {
	return e.Encode()
}

func decodeTemplateElement(r *Reader) (Element, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case appTag(tagParameter):
		return decodeParameter(r)
	case appTag(tagNode):
		return decodeNode(r)
	case appTag(tagMatrix):
		return decodeMatrix(r)
	case appTag(tagFunction):
		return decodeFunction(r)
	default:
		return nil, errs.Newf(errs.BerDecode, "unrecognized template element tag %#02x", tag)
	}
}

// Template is an unqualified (number-addressed) template: a reusable
// element definition that other elements reference by path.
type Template struct {
	base
	Element        Element
	HasElement     bool
	Description    string
	HasDescription bool
}

func (t *Template) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(t.Number)))
	w.put(1, t.HasElement, encodeTemplateElement(t.Element))
	w.put(2, t.HasDescription, encodeUTF8(t.Description))

	return wrapTag(appTag(tagTemplate), w.bytes())
}

func decodeTemplate(r *Reader) (*Template, error) {
	sub, err := r.Open(appTag(tagTemplate))
	if err != nil {
		return nil, err
	}

	t := &Template{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { i, e := r.DecodeInteger(); t.Number = int(i); return e },
		ctxTag(1): func(r *Reader) error {
			e, err := decodeTemplateElement(r)
			t.Element, t.HasElement = e, true
			return err
		},
		ctxTag(2): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			t.Description, t.HasDescription = s, true
			return err
		},
	})

	return t, err
}

// QualifiedTemplate is a path-addressed template.
type QualifiedTemplate struct {
	base
	Element        Element
	HasElement     bool
	Description    string
	HasDescription bool
}

func (t *QualifiedTemplate) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(t.Path))
	w.put(1, t.HasElement, encodeTemplateElement(t.Element))
	w.put(2, t.HasDescription, encodeUTF8(t.Description))

	return wrapTag(appTag(tagQualifiedTemplate), w.bytes())
}

func decodeQualifiedTemplate(r *Reader) (*QualifiedTemplate, error) {
	sub, err := r.Open(appTag(tagQualifiedTemplate))
	if err != nil {
		return nil, err
	}

	t := &QualifiedTemplate{base: base{Qualified: true}}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error { var e error; t.Path, e = r.DecodeOID(); return e },
		ctxTag(1): func(r *Reader) error {
			e, err := decodeTemplateElement(r)
			t.Element, t.HasElement = e, true
			return err
		},
		ctxTag(2): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			t.Description, t.HasDescription = s, true
			return err
		},
	})

	return t, err
}

