package channel_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/channel"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/s101"
)

// pipeAccept wraps one end of a net.Pipe as the provider side, skipping
// negotiation, matching Accept's contract.
func pipeAccept(conn net.Conn, nonEscaping bool) *channel.Channel {
	return channel.Accept(conn, 0, nonEscaping)
}

func Test_Channel_SendRecv_RoundTripsRootMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverCh := pipeAccept(server, true)
	defer serverCh.Close()

	// The client side under test is hand-built (skipping Dial's
	// negotiation handshake, which needs a real socket with deadlines)
	// directly against the already-agreed framing.
	clientCh := channel.Accept(client, 0, true)
	defer clientCh.Close()

	cmd := glow.NewGetDirectoryCommand()
	root := glow.NewElementsRoot(cmd)

	require.NoError(t, clientCh.Send(root))

	select {
	case got := <-serverCh.Recv():
		require.Equal(t, glow.RootElements, got.Kind)
		require.Len(t, got.Elements, 1)
		gotCmd, ok := got.Elements[0].(*glow.Command)
		require.True(t, ok)
		assert.Equal(t, glow.CommandGetDirectory, gotCmd.Number)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func Test_Channel_LargeMessage_FragmentsAndReassembles(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverCh := pipeAccept(server, true)
	defer serverCh.Close()

	clientCh := channel.Accept(client, 0, true)
	defer clientCh.Close()

	var elements []glow.Element
	for i := 0; i < 80; i++ {
		elements = append(elements, glow.NewParameter(i, glow.ParameterContents{
			Identifier: "a very long identifier string to force fragmentation across packets",
			HasIdentifier: true,
		}))
	}

	root := glow.NewElementsRoot(elements...)
	require.NoError(t, clientCh.Send(root))

	select {
	case got := <-serverCh.Recv():
		require.Equal(t, glow.RootElements, got.Kind)
		assert.Len(t, got.Elements, 80)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reassembled message")
	}
}

func Test_Channel_Close_StopsRecvChannel(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	clientCh := pipeAccept(client, true)

	require.NoError(t, clientCh.Close())

	select {
	case _, ok := <-clientCh.Recv():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("recv channel was never closed")
	}
}

func Test_Channel_KeepaliveTraffic_DoesNotBlockMessages(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverCh := pipeAccept(server, true)
	defer serverCh.Close()

	clientCh := channel.Accept(client, 20*time.Millisecond, true)
	defer clientCh.Close()

	// The client originates a keepalive on its interval; the server answers
	// it without surfacing anything on Recv, and the pipeline stays usable.
	root := glow.NewElementsRoot(glow.NewGetDirectoryCommand())
	require.NoError(t, clientCh.Send(root))

	select {
	case got := <-serverCh.Recv():
		assert.Equal(t, glow.RootElements, got.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message past keepalive traffic")
	}
}

// Test_Dial_NegotiatesNonEscaping_CommitsToEscapingOnEscapingResponse drives
// spec.md's S6 over a real loopback listener (Dial's negotiation needs
// socket read deadlines net.Pipe doesn't support): a peer that answers the
// client's non-escaping keepalive with an *escaping* keepalive response
// within the 1 second window makes the client commit to escaping framing
// for the rest of the connection.
func Test_Dial_NegotiatesNonEscaping_CommitsToEscapingOnEscapingResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *s101.Frame, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)

		req, err := s101.Decode(br)
		if err != nil {
			return
		}
		if req.Kind != s101.KindKeepaliveRequest || !req.NonEscaping {
			return
		}

		if _, err := conn.Write(s101.NewKeepaliveResponseFrame(false).Encode()); err != nil {
			return
		}

		payload, err := s101.Decode(br)
		if err != nil {
			return
		}

		accepted <- &payload
	}()

	ch, err := channel.Dial(ln.Addr().String(), 0, true)
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(glow.NewElementsRoot(glow.NewGetDirectoryCommand())))

	select {
	case frame := <-accepted:
		require.Equal(t, s101.KindEmberPacket, frame.Kind)
		assert.False(t, frame.NonEscaping, "client should have committed to escaping framing")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the post-negotiation payload frame")
	}
}

// Test_Dial_NegotiationTimesOutThreeTimes_FallsBackToEscaping drives spec.md's
// S6 other half: a peer that never answers the non-escaping keepalive at all
// exhausts all 3 negotiation attempts (1 second each) and the client falls
// back to escaping framing rather than failing Dial.
func Test_Dial_NegotiationTimesOutThreeTimes_FallsBackToEscaping(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *s101.Frame, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)

		// Drain and ignore all 3 retried non-escaping keepalive requests;
		// never answer any of them.
		for i := 0; i < negotiationAttemptsForTest; i++ {
			if _, err := s101.Decode(br); err != nil {
				return
			}
		}

		payload, err := s101.Decode(br)
		if err != nil {
			return
		}

		accepted <- &payload
	}()

	start := time.Now()

	ch, err := channel.Dial(ln.Addr().String(), 0, true)
	require.NoError(t, err)
	defer ch.Close()

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 3*time.Second, "Dial should have spent all 3 negotiation attempts before falling back")

	require.NoError(t, ch.Send(glow.NewElementsRoot(glow.NewGetDirectoryCommand())))

	select {
	case frame := <-accepted:
		require.Equal(t, s101.KindEmberPacket, frame.Kind)
		assert.False(t, frame.NonEscaping, "client should have fallen back to escaping framing")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the post-negotiation payload frame")
	}
}

// negotiationAttemptsForTest mirrors channel's unexported negotiationAttempts
// constant (3), kept local since external tests cannot reference it directly.
const negotiationAttemptsForTest = 3
