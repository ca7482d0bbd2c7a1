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

// Package consumer walks a remote Ember+ provider's directory tree,
// fabricating GetDirectory requests as it discovers unexplored nodes and
// matrices, and delivers the materialized tree as a stream of TreeEvents.
package consumer

import (
	"sync"
	"time"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/channel"
	"github.com/emberplus/emberplus/oid"
)

// subscriberBuffer bounds each FetchFullTree/FetchRecursive subscription.
// A slow subscriber drops events rather than stalling the engine's receive
// loop; this matches the pipeline stages' own discard-and-log posture for
// handling backpressure it cannot exert on the wire.
const subscriberBuffer = 256

// Options configures a Consumer's connection to its provider.
type Options struct {
	// Keepalive, if non-zero, is the interval on which the consumer
	// originates its own keepalive requests. Zero means only answer the
	// peer's requests.
	Keepalive time.Duration

	// TryNonEscaping negotiates non-escaping S101 framing before falling
	// back to escaping framing. See channel.Dial.
	TryNonEscaping bool

	// QueryOfflineNodes, if true, issues a GetDirectory for a node even
	// when its IsOnline field is present and false. By default such nodes
	// are skipped. Parameters are never queried for children either way.
	QueryOfflineNodes bool
}

// Consumer is one running connection to an Ember+ provider, tracking which
// OIDs have been explored or have a GetDirectory in flight.
type Consumer struct {
	ch *channel.Channel

	mu       sync.Mutex
	inFlight map[string]bool
	explored map[string]bool

	subsMu sync.Mutex
	subs   []chan TreeEvent

	closeOnce sync.Once
	closed    chan struct{}

	queryOfflineNodes bool
}

// StartTCPConsumer dials addr and begins running the consumer's receive
// loop in the background.
func StartTCPConsumer(addr string, opts Options) (*Consumer, error) {
	ch, err := channel.Dial(addr, opts.Keepalive, opts.TryNonEscaping)
	if err != nil {
		return nil, err
	}

	return newConsumer(ch, opts), nil
}

func newConsumer(ch *channel.Channel, opts Options) *Consumer {
	c := &Consumer{
		ch:                ch,
		inFlight:          make(map[string]bool),
		explored:          make(map[string]bool),
		closed:            make(chan struct{}),
		queryOfflineNodes: opts.QueryOfflineNodes,
	}

	go c.run()

	return c
}

// FetchFullTree walks the entire tree starting at the root. The returned
// channel carries an Element event for every element discovered and
// exactly one FullTreeReceived once every GetDirectory issued this session
// has been answered.
func (c *Consumer) FetchFullTree() <-chan TreeEvent {
	sub := c.subscribe()

	c.fetchDirectory(oid.Root())

	return sub
}

// FetchRecursive walks the subtree rooted at seed, which is addressed
// relative to parent. Passing RootTreeNode() is equivalent to
// FetchFullTree.
func (c *Consumer) FetchRecursive(parent oid.OID, seed TreeNode) <-chan TreeEvent {
	sub := c.subscribe()

	if seed.Kind == TreeNodeRoot {
		c.fetchDirectory(oid.Root())
		return sub
	}

	c.processElement(parent, seed.Element)

	return sub
}

// Close tears down the underlying channel and stops the receive loop.
func (c *Consumer) Close() error {
	var err error

	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.ch.Close()
	})

	return err
}

func (c *Consumer) subscribe() chan TreeEvent {
	sub := make(chan TreeEvent, subscriberBuffer)

	c.subsMu.Lock()
	c.subs = append(c.subs, sub)
	c.subsMu.Unlock()

	return sub
}

func (c *Consumer) emit(ev TreeEvent) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for _, sub := range c.subs {
		select {
		case sub <- ev:
		default:
			logger.Debug("dropping tree event for a slow subscriber")
		}
	}
}

func (c *Consumer) run() {
	for {
		select {
		case root, ok := <-c.ch.Recv():
			if !ok {
				return
			}

			c.handleRoot(root)
		case <-c.closed:
			return
		}
	}
}
