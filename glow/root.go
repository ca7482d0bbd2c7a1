package glow

import "github.com/emberplus/emberplus/errs"

// RootKind discriminates a Root message's payload.
type RootKind int

const (
	RootElements RootKind = iota
	RootStreams
	RootInvocationResult
)

// Root is the top-level Glow message: a tree of Elements, a batch of
// streamed parameter values, or the result of an invoked function.
type Root struct {
	Kind             RootKind
	Elements         []Element
	Streams          []StreamEntry
	InvocationResult InvocationResult
}

// NewElementsRoot wraps a set of root-level elements for a request or
// response.
func NewElementsRoot(elements ...Element) Root {
	return Root{Kind: RootElements, Elements: elements}
}

// NewStreamsRoot wraps a batch of streamed values.
func NewStreamsRoot(entries ...StreamEntry) Root {
	return Root{Kind: RootStreams, Streams: entries}
}

// NewInvocationResultRoot wraps a function invocation's outcome.
func NewInvocationResultRoot(result InvocationResult) Root {
	return Root{Kind: RootInvocationResult, InvocationResult: result}
}

// Encode renders the message as a complete, definite-length BER buffer.
func (root Root) Encode() []byte {
	var inner []byte

	switch root.Kind {
	case RootStreams:
		inner = encodeStreamCollection(root.Streams)
	case RootInvocationResult:
		inner = root.InvocationResult.Encode()
	default:
		var content []byte
		for _, e := range root.Elements {
			content = append(content, encodeElementMember(e)...)
		}

		inner = wrapTag(appTag(tagRootElementCollection), content)
	}

	return wrapTag(appTag(tagRoot), inner)
}

// Decode parses a complete Root message out of buf.
func Decode(buf []byte) (Root, error) {
	r := NewReader(buf)

	sub, err := r.Open(appTag(tagRoot))
	if err != nil {
		return Root{}, err
	}

	tag, err := sub.PeekTag()
	if err != nil {
		return Root{}, err
	}

	switch tag {
	case appTag(tagStreamCollection):
		entries, err := decodeStreamCollection(sub)
		return Root{Kind: RootStreams, Streams: entries}, err
	case appTag(tagInvocationResult):
		ir, err := decodeInvocationResult(sub)
		return Root{Kind: RootInvocationResult, InvocationResult: ir}, err
	case appTag(tagRootElementCollection):
		coll, err := sub.Open(appTag(tagRootElementCollection))
		if err != nil {
			return Root{}, err
		}

		var elements []Element
		for !coll.AtEnd() {
			e, err := decodeElement(coll)
			if err != nil {
				return Root{}, err
			}

			elements = append(elements, e)
		}

		return Root{Kind: RootElements, Elements: elements}, nil
	default:
		return Root{}, errs.Newf(errs.BerDecode, "unrecognized Root payload tag %#02x", tag)
	}
}
