package glow

import (
	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/oid"
)

// Element is any node of the Glow tree: a Parameter, Node, Matrix,
// Function, Template or Command, addressed either by a child number
// (relative to its parent) or, for a qualified variant, by its full path.
type Element interface {
	// ElementNumber returns the element's child number and true, or
	// (0, false) if this is a qualified (path-addressed) element.
	ElementNumber() (int, bool)
	// ElementPath returns the element's absolute path and true, or
	// (nil, false) if this is an unqualified (number-addressed) element.
	ElementPath() (oid.OID, bool)
	// Encode renders the element's own APPLICATION-tagged TLV.
	Encode() []byte

	isElement()
}

// Container is an Element that may carry children. Every variant except
// Command implements it; a Template neither encodes nor decodes children,
// so a decoded Template has none.
type Container interface {
	Element
	ChildElements() []Element
}

// base holds the fields common to every Element variant.
type base struct {
	Number    int
	Path      oid.OID
	Qualified bool
	Children  []Element
}

func (b *base) ElementNumber() (int, bool) {
	if b.Qualified {
		return 0, false
	}

	return b.Number, true
}

func (b *base) ElementPath() (oid.OID, bool) {
	if !b.Qualified {
		return nil, false
	}

	return b.Path, true
}

func (b *base) ChildElements() []Element { return b.Children }

func (b *base) isElement() {}

// encodeElementMember renders e as it appears inside a RootElementCollection
// or an ElementCollection: a qualified variant is tagged by its own
// APPLICATION tag directly (its tag class alone disambiguates the choice),
// while an unqualified variant is wrapped in an explicit context[0] "this is
// the plain Element arm" tag.
func encodeElementMember(e Element) []byte {
	switch e.(type) {
	case *QualifiedParameter, *QualifiedNode, *QualifiedMatrix, *QualifiedFunction, *QualifiedTemplate:
		return e.Encode()
	default:
		return wrapTag(ctxTag(0), e.Encode())
	}
}

// decodeElement reads one RootElement/ElementCollection member, dispatching
// on its leading tag.
func decodeElement(r *Reader) (Element, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case ctxTag(0):
		sub, err := r.Open(ctxTag(0))
		if err != nil {
			return nil, err
		}

		return decodeElementByAppTag(sub)
	case appTag(tagQualifiedParameter):
		return decodeQualifiedParameter(r)
	case appTag(tagQualifiedNode):
		return decodeQualifiedNode(r)
	case appTag(tagQualifiedMatrix):
		return decodeQualifiedMatrix(r)
	case appTag(tagQualifiedFunction):
		return decodeQualifiedFunction(r)
	case appTag(tagQualifiedTemplate):
		return decodeQualifiedTemplate(r)
	default:
		return nil, errs.Newf(errs.BerDecode, "unrecognized element tag %#02x", tag)
	}
}

func decodeElementByAppTag(r *Reader) (Element, error) {
	tag, err := r.PeekTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case appTag(tagParameter):
		return decodeParameter(r)
	case appTag(tagCommand):
		return decodeCommand(r)
	case appTag(tagNode):
		return decodeNode(r)
	case appTag(tagMatrix):
		return decodeMatrix(r)
	case appTag(tagFunction):
		return decodeFunction(r)
	case appTag(tagTemplate):
		return decodeTemplate(r)
	default:
		return nil, errs.Newf(errs.BerDecode, "unrecognized Element tag %#02x", tag)
	}
}

func encodeChildren(children []Element) []byte {
	var content []byte
	for _, c := range children {
		content = append(content, encodeElementMember(c)...)
	}

	return wrapTag(appTag(tagElementCollection), content)
}

func decodeChildrenCollection(r *Reader) ([]Element, error) {
	sub, err := r.Open(appTag(tagElementCollection))
	if err != nil {
		return nil, err
	}

	var out []Element
	for !sub.AtEnd() {
		e, err := decodeElement(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}
