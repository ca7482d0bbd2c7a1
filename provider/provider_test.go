package provider_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/channel"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/provider"
)

// echoHandler relays every inbound Root straight back out, letting tests
// observe that the bridge goroutines actually move messages in both
// directions.
func echoHandler(ctx context.Context, tx chan<- glow.Root, rx <-chan glow.Root) error {
	for {
		select {
		case root, ok := <-rx:
			if !ok {
				return nil
			}

			select {
			case tx <- root:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func Test_StartTCPProvider_EchoesClientMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := provider.StartTCPProvider(ctx, "127.0.0.1:0", 0, true, provider.ClientHandlerFunc(echoHandler))
	require.NoError(t, err)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	clientCh := channel.Accept(conn, 0, true)
	defer clientCh.Close()

	cmd := glow.NewGetDirectoryCommand()
	require.NoError(t, clientCh.Send(glow.NewElementsRoot(cmd)))

	select {
	case got := <-clientCh.Recv():
		require.Equal(t, glow.RootElements, got.Kind)
		require.Len(t, got.Elements, 1)
		gotCmd, ok := got.Elements[0].(*glow.Command)
		require.True(t, ok)
		assert.Equal(t, glow.CommandGetDirectory, gotCmd.Number)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed message")
	}
}

func Test_StartTCPProvider_CancelStopsAcceptingNewClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	addr, err := provider.StartTCPProvider(ctx, "127.0.0.1:0", 0, true, provider.ClientHandlerFunc(echoHandler))
	require.NoError(t, err)

	cancel()

	// Give the cancellation goroutine a moment to close the listener before
	// asserting new connections are refused.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := net.Dial("tcp", addr.String()); err != nil {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("provider kept accepting connections after context cancellation")
}
