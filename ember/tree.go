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

// Package ember presents the tree a consumer materializes (glow.Element
// values keyed by their absolute OID) as a JSON-friendly snapshot, and
// names the key a Wörterbuch-style republish bridge would publish a
// parameter under.
package ember

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

// ErrEntryNotFound is returned by Tree lookups that miss.
var ErrEntryNotFound = errors.New("ember: tree entry not found")

// ElementType names an Entry's underlying Glow element kind, for JSON
// presentation.
type ElementType string

const (
	ElementTypeNode      ElementType = "node"
	ElementTypeParameter ElementType = "parameter"
	ElementTypeMatrix    ElementType = "matrix"
	ElementTypeFunction  ElementType = "function"
	ElementTypeTemplate  ElementType = "template"
)

// Entry is one tree position's last known state: the element as most
// recently reported, flattened into presentation-friendly fields.
type Entry struct {
	Path        string
	ElementType ElementType
	Identifier  string
	Description string
	IsOnline    bool
	Value       any
	Minimum     any
	Maximum     any
	Access      int
	Enumeration string
	ChildPaths  []string
}

// mirror structs, one per ElementType, control exactly which fields of an
// Entry are rendered -- a node never carries Value/Access, a parameter
// never carries ChildPaths.
type node struct {
	Path        string   `json:"path"`
	ElementType string   `json:"element_type"`
	Identifier  string   `json:"identifier,omitempty"`
	Description string   `json:"description,omitempty"`
	IsOnline    bool     `json:"is_online"`
	Children    []string `json:"children,omitempty"`
}

type parameter struct {
	Path        string `json:"path"`
	ElementType string `json:"element_type"`
	Identifier  string `json:"identifier,omitempty"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
	Minimum     any    `json:"minimum,omitempty"`
	Maximum     any    `json:"maximum,omitempty"`
	Access      int    `json:"access,omitempty"`
	Enumeration string `json:"enumeration,omitempty"`
	IsOnline    bool   `json:"is_online,omitempty"`
}

type matrix struct {
	Path        string   `json:"path"`
	ElementType string   `json:"element_type"`
	Identifier  string   `json:"identifier,omitempty"`
	Description string   `json:"description,omitempty"`
	Children    []string `json:"children,omitempty"`
}

type function struct {
	Path        string `json:"path"`
	ElementType string `json:"element_type"`
	Identifier  string `json:"identifier,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tree is a snapshot of a consumer's materialized tree, keyed by each
// element's absolute OID in dotted-arc form.
type Tree map[string]*Entry

// NewTree returns an empty snapshot.
func NewTree() Tree {
	return make(Tree)
}

// Put records or refreshes el's entry at own, and links it into its
// parent's ChildPaths if the parent is already present.
func (t Tree) Put(own oid.OID, el glow.Element) {
	entry := entryFor(own, el)
	t[own.Key()] = entry

	if parent, ok := t[own.Parent().Key()]; ok {
		parent.ChildPaths = appendUnique(parent.ChildPaths, own.String())
	}
}

func appendUnique(paths []string, path string) []string {
	for _, p := range paths {
		if p == path {
			return paths
		}
	}

	return append(paths, path)
}

func entryFor(own oid.OID, el glow.Element) *Entry {
	entry := &Entry{Path: own.String()}

	switch v := el.(type) {
	case *glow.Node:
		entry.ElementType = ElementTypeNode
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
		entry.IsOnline = !v.Contents.HasIsOnline || v.Contents.IsOnline
	case *glow.QualifiedNode:
		entry.ElementType = ElementTypeNode
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
		entry.IsOnline = !v.Contents.HasIsOnline || v.Contents.IsOnline
	case *glow.Parameter:
		entry.ElementType = ElementTypeParameter
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
		entry.Access = int(v.Contents.Access)
		entry.Enumeration = v.Contents.Enumeration
		entry.IsOnline = !v.Contents.HasIsOnline || v.Contents.IsOnline
		entry.Value = valueOf(v.Contents)
		entry.Minimum = minMaxOf(v.Contents.Minimum, v.Contents.HasMinimum)
		entry.Maximum = minMaxOf(v.Contents.Maximum, v.Contents.HasMaximum)
	case *glow.QualifiedParameter:
		entry.ElementType = ElementTypeParameter
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
		entry.Access = int(v.Contents.Access)
		entry.Enumeration = v.Contents.Enumeration
		entry.IsOnline = !v.Contents.HasIsOnline || v.Contents.IsOnline
		entry.Value = valueOf(v.Contents)
		entry.Minimum = minMaxOf(v.Contents.Minimum, v.Contents.HasMinimum)
		entry.Maximum = minMaxOf(v.Contents.Maximum, v.Contents.HasMaximum)
	case *glow.Matrix:
		entry.ElementType = ElementTypeMatrix
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
	case *glow.QualifiedMatrix:
		entry.ElementType = ElementTypeMatrix
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
	case *glow.Function:
		entry.ElementType = ElementTypeFunction
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
	case *glow.QualifiedFunction:
		entry.ElementType = ElementTypeFunction
		entry.Identifier = v.Contents.Identifier
		entry.Description = v.Contents.Description
	case *glow.Template:
		entry.ElementType = ElementTypeTemplate
		entry.Description = v.Description
	case *glow.QualifiedTemplate:
		entry.ElementType = ElementTypeTemplate
		entry.Description = v.Description
	}

	return entry
}

func valueOf(c glow.ParameterContents) any {
	if !c.HasValue {
		return nil
	}

	switch c.Value.Kind {
	case glow.ValueInteger:
		return c.Value.Integer
	case glow.ValueReal:
		return c.Value.Real
	case glow.ValueString:
		return c.Value.String
	case glow.ValueBoolean:
		return c.Value.Boolean
	case glow.ValueOctets:
		return c.Value.Octets
	default:
		return nil
	}
}

func minMaxOf(m glow.MinMax, has bool) any {
	if !has {
		return nil
	}

	switch m.Kind {
	case glow.MinMaxInteger:
		return m.Integer
	case glow.MinMaxReal:
		return m.Real
	default:
		return nil
	}
}

// GetByPath looks an entry up by its dotted-arc path.
func (t Tree) GetByPath(path string) (*Entry, error) {
	entry, ok := t[path]
	if !ok {
		return nil, fmt.Errorf("path %q: %w", path, ErrEntryNotFound)
	}

	return entry, nil
}

// MarshalJSON renders the snapshot as a map from dotted-arc path to one of
// the type-specific mirror structs.
func (t Tree) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t))

	for path, entry := range t {
		switch entry.ElementType {
		case ElementTypeNode:
			out[path] = node{
				Path: entry.Path, ElementType: string(entry.ElementType),
				Identifier: entry.Identifier, Description: entry.Description,
				IsOnline: entry.IsOnline, Children: entry.ChildPaths,
			}
		case ElementTypeParameter:
			out[path] = parameter{
				Path: entry.Path, ElementType: string(entry.ElementType),
				Identifier: entry.Identifier, Description: entry.Description,
				Value: entry.Value, Minimum: entry.Minimum, Maximum: entry.Maximum,
				Access: entry.Access, Enumeration: entry.Enumeration, IsOnline: entry.IsOnline,
			}
		case ElementTypeMatrix:
			out[path] = matrix{
				Path: entry.Path, ElementType: string(entry.ElementType),
				Identifier: entry.Identifier, Description: entry.Description,
				Children: entry.ChildPaths,
			}
		case ElementTypeFunction, ElementTypeTemplate:
			out[path] = function{
				Path: entry.Path, ElementType: string(entry.ElementType),
				Identifier: entry.Identifier, Description: entry.Description,
			}
		default:
			return nil, fmt.Errorf("ember: tree entry at %q has unrecognized element type %q", path, entry.ElementType)
		}
	}

	return json.Marshal(out)
}
