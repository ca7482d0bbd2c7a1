package consumer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/channel"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

// fakeProvider answers exactly the two GetDirectory requests the S5
// two-level-tree scenario expects: one for the root, exposing node 1, and
// one for node 1, exposing parameter 1.1.
func fakeProvider(t *testing.T, ch *channel.Channel) {
	t.Helper()

	go func() {
		for root := range ch.Recv() {
			if root.Kind != glow.RootElements || len(root.Elements) == 0 {
				continue
			}

			switch el := root.Elements[0].(type) {
			case *glow.Command:
				// Root-level GetDirectory: answer with node 1, no
				// children materialized yet.
				node := glow.NewNode(1, glow.NodeContents{HasIdentifier: true, Identifier: "board"})
				_ = ch.Send(glow.NewElementsRoot(node))
			case *glow.QualifiedNode:
				if !el.Path.Equal(oid.OID{1}) {
					continue
				}
				// GetDirectory for node 1: answer with its own
				// qualified echo, now carrying parameter 1.1.
				param := glow.NewParameter(1, glow.ParameterContents{HasIdentifier: true, Identifier: "gain"})
				reply := glow.NewQualifiedNode(oid.OID{1}, glow.NodeContents{HasIdentifier: true, Identifier: "board"}, param)
				_ = ch.Send(glow.NewElementsRoot(reply))
			}
		}
	}()
}

func Test_Consumer_FetchFullTree_TwoLevelTree(t *testing.T) {
	clientConn, providerConn := net.Pipe()
	defer clientConn.Close()
	defer providerConn.Close()

	providerCh := channel.Accept(providerConn, 0, true)
	defer providerCh.Close()

	fakeProvider(t, providerCh)

	consumerCh := channel.Accept(clientConn, 0, true)
	c := newConsumer(consumerCh, Options{})
	defer c.Close()

	events := c.FetchFullTree()

	var elements []TreeEvent
	var sawFullTree bool

	for !sawFullTree {
		select {
		case ev := <-events:
			if ev.Kind == EventFullTreeReceived {
				assert.Equal(t, 2, ev.Count)
				sawFullTree = true
				continue
			}

			elements = append(elements, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for full tree")
		}
	}

	require.Len(t, elements, 3)

	node, ok := elements[0].Node.(*glow.Node)
	require.True(t, ok)
	assert.Equal(t, 1, node.Number)
	assert.True(t, elements[0].Parent.IsRoot())

	qualNode, ok := elements[1].Node.(*glow.QualifiedNode)
	require.True(t, ok)
	assert.Equal(t, oid.OID{1}, qualNode.Path)
	assert.True(t, elements[1].Parent.IsRoot())

	param, ok := elements[2].Node.(*glow.Parameter)
	require.True(t, ok)
	assert.Equal(t, 1, param.Number)
	assert.Equal(t, oid.OID{1}, elements[2].Parent)
}

func Test_Consumer_FetchRecursive_FromRootSentinel_MatchesFetchFullTree(t *testing.T) {
	clientConn, providerConn := net.Pipe()
	defer clientConn.Close()
	defer providerConn.Close()

	providerCh := channel.Accept(providerConn, 0, true)
	defer providerCh.Close()

	fakeProvider(t, providerCh)

	consumerCh := channel.Accept(clientConn, 0, true)
	c := newConsumer(consumerCh, Options{})
	defer c.Close()

	events := c.FetchRecursive(oid.Root(), RootTreeNode())

	select {
	case ev := <-events:
		assert.Equal(t, EventElement, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first event")
	}
}

func Test_Consumer_DiscardsCommandAndFunctionFromProvider(t *testing.T) {
	clientConn, providerConn := net.Pipe()
	defer clientConn.Close()
	defer providerConn.Close()

	providerCh := channel.Accept(providerConn, 0, true)
	defer providerCh.Close()

	consumerCh := channel.Accept(clientConn, 0, true)
	c := newConsumer(consumerCh, Options{})
	defer c.Close()

	events := c.FetchFullTree()

	// Drain the root GetDirectory the fetch issues, then answer with a bare
	// Command and a bare Function -- request-only types a provider should
	// never send as tree content -- neither of which may surface as a
	// TreeEvent.
	<-providerCh.Recv()
	fn := glow.NewFunction(9, glow.FunctionContents{HasIdentifier: true, Identifier: "noop"})
	require.NoError(t, providerCh.Send(glow.NewElementsRoot(glow.NewSubscribeCommand(), fn)))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for a discarded element: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}
