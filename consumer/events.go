/*
 *  Copyright (C) 2025 Michael Bachmann
 *
 *  This program is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Affero General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU Affero General Public License for more details.
 *
 *  You should have received a copy of the GNU Affero General Public License
 *  along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package consumer

import (
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

// TreeEventKind discriminates a TreeEvent's payload.
type TreeEventKind int

const (
	// EventElement carries one materialized tree element.
	EventElement TreeEventKind = iota
	// EventFullTreeReceived announces that in-flight traversal has drained
	// at least once.
	EventFullTreeReceived
)

// TreeEvent is delivered to every subscriber as the traversal discovers or
// completes materializing the tree.
type TreeEvent struct {
	Kind TreeEventKind

	// Parent and Node are set for EventElement: the OID of the element's
	// containing element (oid.Root() if it lives directly under the root),
	// and the element itself.
	Parent oid.OID
	Node   glow.Element

	// Count is set for EventFullTreeReceived: the number of distinct OIDs
	// explored this session.
	Count int
}

// TreeNodeKind discriminates TreeNode's two cases: the traversal root
// sentinel, and an ordinary Glow element.
type TreeNodeKind int

const (
	// TreeNodeElement wraps an ordinary Glow element.
	TreeNodeElement TreeNodeKind = iota
	// TreeNodeRoot denotes the traversal root itself, with no element of
	// its own.
	TreeNodeRoot
)

// TreeNode generalizes glow.Element with a root sentinel, letting
// FetchRecursive seed a walk either at the tree root or at a specific
// element the caller already knows about.
type TreeNode struct {
	Kind    TreeNodeKind
	Element glow.Element
}

// ElementTreeNode wraps an ordinary element as a traversal seed.
func ElementTreeNode(e glow.Element) TreeNode {
	return TreeNode{Kind: TreeNodeElement, Element: e}
}

// RootTreeNode is the traversal-root seed: start FetchRecursive exactly as
// FetchFullTree would.
func RootTreeNode() TreeNode {
	return TreeNode{Kind: TreeNodeRoot}
}

// OID computes n's absolute path given the OID of its containing element.
func (n TreeNode) OID(parent oid.OID) oid.OID {
	if n.Kind == TreeNodeRoot {
		return oid.Root()
	}

	own, _ := elementOID(parent, n.Element)

	return own
}
