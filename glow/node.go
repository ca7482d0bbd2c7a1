package glow

import "github.com/emberplus/emberplus/oid"

// NodeContents carries a node's optional descriptive fields.
type NodeContents struct {
	Identifier         string
	HasIdentifier      bool
	Description        string
	HasDescription     bool
	IsRoot             bool
	HasIsRoot          bool
	IsOnline           bool
	HasIsOnline        bool
	SchemaIdentifiers  string
	HasSchemaIDs       bool
	TemplateReference  oid.OID
	HasTemplateRef     bool
}

func (c NodeContents) encode() []byte {
	var w fieldWriter
	w.put(0, c.HasIdentifier, encodeUTF8(c.Identifier))
	w.put(1, c.HasDescription, encodeUTF8(c.Description))
	w.put(2, c.HasIsRoot, encodeBoolean(c.IsRoot))
	w.put(3, c.HasIsOnline, encodeBoolean(c.IsOnline))
	w.put(4, c.HasSchemaIDs, encodeUTF8(c.SchemaIdentifiers))
	w.put(5, c.HasTemplateRef, encodeOID(c.TemplateReference))

	return w.bytes()
}

func decodeNodeContents(r *Reader) (NodeContents, error) {
	var c NodeContents

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
			b, err := r.DecodeBoolean()
			c.IsRoot, c.HasIsRoot = b, true
			return err
		},
		ctxTag(3): func(r *Reader) error {
			b, err := r.DecodeBoolean()
			c.IsOnline, c.HasIsOnline = b, true
			return err
		},
		ctxTag(4): func(r *Reader) error {
			s, err := r.DecodeUTF8()
			c.SchemaIdentifiers, c.HasSchemaIDs = s, true
			return err
		},
		ctxTag(5): func(r *Reader) error {
			o, err := r.DecodeOID()
			c.TemplateReference, c.HasTemplateRef = o, true
			return err
		},
	})

	return c, err
}

// Node is an unqualified (number-addressed) node.
type Node struct {
	base
	Contents    NodeContents
	HasContents bool
}

// NewNode builds a node addressed by its child number within its parent.
func NewNode(number int, contents NodeContents, children ...Element) *Node {
	return &Node{base: base{Number: number, Children: children}, Contents: contents, HasContents: true}
}

func (n *Node) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(n.Number)))
	w.put(1, n.HasContents, wrapTag(tagSet, n.Contents.encode()))
	w.put(2, len(n.Children) > 0, encodeChildren(n.Children))

	return wrapTag(appTag(tagNode), w.bytes())
}

func decodeNode(r *Reader) (*Node, error) {
	sub, err := r.Open(appTag(tagNode))
	if err != nil {
		return nil, err
	}

	n := &Node{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			n.Number = int(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			set, err := r.Open(tagSet)
			if err != nil {
				return err
			}

			n.Contents, err = decodeNodeContents(set)
			n.HasContents = true

			return err
		},
		ctxTag(2): func(r *Reader) error {
			n.Children, err = decodeChildrenCollection(r)
			return err
		},
	})

	return n, err
}

// QualifiedNode is a path-addressed node.
type QualifiedNode struct {
	base
	Contents    NodeContents
	HasContents bool
}

// NewQualifiedNode builds a node addressed by its absolute path.
func NewQualifiedNode(path oid.OID, contents NodeContents, children ...Element) *QualifiedNode {
	return &QualifiedNode{
		base:        base{Path: path, Qualified: true, Children: children},
		Contents:    contents,
		HasContents: true,
	}
}

func (n *QualifiedNode) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeOID(n.Path))
	w.put(1, n.HasContents, wrapTag(tagSet, n.Contents.encode()))
	w.put(2, len(n.Children) > 0, encodeChildren(n.Children))

	return wrapTag(appTag(tagQualifiedNode), w.bytes())
}

func decodeQualifiedNode(r *Reader) (*QualifiedNode, error) {
	sub, err := r.Open(appTag(tagQualifiedNode))
	if err != nil {
		return nil, err
	}

	n := &QualifiedNode{base: base{Qualified: true}}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			n.Path, err = r.DecodeOID()
			return err
		},
		ctxTag(1): func(r *Reader) error {
			set, err := r.Open(tagSet)
			if err != nil {
				return err
			}

			n.Contents, err = decodeNodeContents(set)
			n.HasContents = true

			return err
		},
		ctxTag(2): func(r *Reader) error {
			n.Children, err = decodeChildrenCollection(r)
			return err
		},
	})

	return n, err
}
