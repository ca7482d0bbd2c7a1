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
	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

// elementOID computes both the absolute OID an element denotes (own) and the
// OID of the element that contains it (eventParent), given the OID of the
// element the enclosing response was fetched for (contextParent).
//
// A qualified element carries its own absolute path; its containing element
// is that path's parent, regardless of contextParent (this is what lets a
// qualified response be trusted even when it arrives nested under some
// other element's GetDirectory reply). An unqualified element carries only
// a number relative to whatever it was nested under on the wire, so its own
// OID is contextParent+number and its containing element is contextParent
// itself.
func elementOID(contextParent oid.OID, el glow.Element) (own oid.OID, eventParent oid.OID) {
	if path, ok := el.ElementPath(); ok {
		return path, path.Parent()
	}

	number, _ := el.ElementNumber()

	return oid.Join(contextParent, uint32(number)), contextParent
}

// mayHaveChildren reports whether el is a container type that can expose
// further structure via its own GetDirectory, and has not already done so.
// Only Node and Matrix variants are eligible: Parameter and Function are
// leaves in the Ember+ sense regardless of what the wire encoding happens to
// allow structurally, and Template/Command never denote addressable tree
// positions at all.
//
// A Matrix with nil Children but populated Targets/Sources/Connections is
// treated as already fully described -- conservatively choosing not to
// re-fetch rather than risk looping on a provider that never answers with
// Children populated.
func mayHaveChildren(el glow.Element) bool {
	switch v := el.(type) {
	case *glow.Node:
		return len(v.Children) == 0
	case *glow.QualifiedNode:
		return len(v.Children) == 0
	case *glow.Matrix:
		return len(v.Children) == 0 && len(v.Targets) == 0 && len(v.Sources) == 0 && len(v.Connections) == 0
	case *glow.QualifiedMatrix:
		return len(v.Children) == 0 && len(v.Targets) == 0 && len(v.Sources) == 0 && len(v.Connections) == 0
	default:
		return false
	}
}

// isOnline reports whether el's IsOnline field, if present, is set. An
// element without an IsOnline field -- or one the provider never populated
// -- is treated as online.
func isOnline(el glow.Element) bool {
	switch v := el.(type) {
	case *glow.Node:
		return !v.HasContents || !v.Contents.HasIsOnline || v.Contents.IsOnline
	case *glow.QualifiedNode:
		return !v.HasContents || !v.Contents.HasIsOnline || v.Contents.IsOnline
	case *glow.Parameter:
		return !v.HasContents || !v.Contents.HasIsOnline || v.Contents.IsOnline
	case *glow.QualifiedParameter:
		return !v.HasContents || !v.Contents.HasIsOnline || v.Contents.IsOnline
	default:
		return true
	}
}

// isFromProviderOnly reports whether el is an element type a provider
// should never originate as tree content (Command and Function requests
// live in the request/invoke direction, not the directory tree); such
// elements are logged and discarded rather than dispatched or recursed
// into.
func isFromProviderOnly(el glow.Element) bool {
	switch el.(type) {
	case *glow.Command, *glow.Function, *glow.QualifiedFunction:
		return true
	default:
		return false
	}
}

// fabricateDirectoryRequest builds a qualified re-addressing of target
// wrapping a single GetDirectory command as its child, matching the wire
// shape GetDirectory needs when issued for anything but the root.
func fabricateDirectoryRequest(target oid.OID) glow.Root {
	getDir := glow.NewGetDirectoryCommand()

	var wrapper glow.Element

	switch len(target) {
	case 0:
		return glow.NewElementsRoot(getDir)
	default:
		wrapper = glow.NewQualifiedNode(target, glow.NodeContents{})
	}

	if n, ok := wrapper.(*glow.QualifiedNode); ok {
		n.Children = []glow.Element{getDir}
	}

	return glow.NewElementsRoot(wrapper)
}

// processElement runs one element through the traversal's dispatch rules:
// it emits an Element event (unless the element is a request-only type a
// provider should never send), recurses into any already-materialized
// children, and issues a GetDirectory for element types that may carry
// children it hasn't seen yet. An offline element (IsOnline=false) is
// skipped -- no GetDirectory issued -- unless the Consumer was started with
// Options.QueryOfflineNodes.
func (c *Consumer) processElement(contextParent oid.OID, el glow.Element) {
	if isFromProviderOnly(el) {
		logger.Debug("discarding request-only element received from provider")
		return
	}

	own, eventParent := elementOID(contextParent, el)

	c.emit(TreeEvent{Kind: EventElement, Parent: eventParent, Node: el})

	if container, ok := el.(glow.Container); ok {
		for _, child := range container.ChildElements() {
			c.processElement(own, child)
		}
	}

	if !isOnline(el) && !c.queryOfflineNodes {
		return
	}

	if mayHaveChildren(el) {
		c.fetchDirectory(own)
	}
}

// fetchDirectory issues a GetDirectory for target, unless it is already
// in flight or was already explored this session.
func (c *Consumer) fetchDirectory(target oid.OID) {
	key := target.Key()

	c.mu.Lock()
	if c.explored[key] || c.inFlight[key] {
		c.mu.Unlock()
		return
	}

	c.explored[key] = true
	c.inFlight[key] = true
	c.mu.Unlock()

	if err := c.ch.Send(fabricateDirectoryRequest(target)); err != nil {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()

		logger.Error("failed to send GetDirectory request", err)

		return
	}
}

// completeFetch marks target's fetch as finished and, if this drains the
// in-flight set entirely, broadcasts FullTreeReceived.
func (c *Consumer) completeFetch(target oid.OID) {
	key := target.Key()

	c.mu.Lock()
	delete(c.inFlight, key)
	drained := len(c.inFlight) == 0
	explored := len(c.explored)
	c.mu.Unlock()

	if drained {
		c.emit(TreeEvent{Kind: EventFullTreeReceived, Count: explored})
	}
}

// handleRoot processes one inbound Root message. Every non-discarded
// top-level element it carries completes exactly one outstanding
// GetDirectory: a qualified element echoes back the very target it was
// fetched for, so its own OID is the fetch to complete; an unqualified
// element is only ever produced by the root's own GetDirectory (every
// non-root fetch this engine issues re-addresses its target as a qualified
// wrapper via fabricateDirectoryRequest, which obligates the provider to
// answer in qualified form), so seeing one at all completes the root
// fetch itself.
func (c *Consumer) handleRoot(root glow.Root) {
	if root.Kind != glow.RootElements {
		logger.Debug("discarding non-Elements Root payload from provider")
		return
	}

	sawUnqualifiedTop := false

	for _, el := range root.Elements {
		if isFromProviderOnly(el) {
			logger.Debug("discarding request-only top-level element received from provider")
			continue
		}

		if path, ok := el.ElementPath(); ok {
			c.processElement(oid.Root(), el)
			c.completeFetch(path)
			continue
		}

		sawUnqualifiedTop = true
		c.processElement(oid.Root(), el)
	}

	if sawUnqualifiedTop {
		c.completeFetch(oid.Root())
	}
}
