package glow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

func Test_Encode_GetDirectoryRequest_MatchesReferenceVector(t *testing.T) {
	root := glow.NewElementsRoot(glow.NewGetDirectoryCommand())

	want := []byte{
		0x60, 0x10, 0x6b, 0x0e, 0xa0, 0x0c, 0x62, 0x0a,
		0xa0, 0x03, 0x02, 0x01, 0x20, 0xa1, 0x03, 0x02, 0x01, 0xff,
	}

	assert.Equal(t, want, root.Encode())
}

func Test_Decode_GetDirectoryRequest_RoundTrips(t *testing.T) {
	root := glow.NewElementsRoot(glow.NewGetDirectoryCommand())

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)
	require.Equal(t, glow.RootElements, got.Kind)
	require.Len(t, got.Elements, 1)

	cmd, ok := got.Elements[0].(*glow.Command)
	require.True(t, ok)
	assert.Equal(t, glow.CommandGetDirectory, cmd.Number)
	assert.True(t, cmd.HasDirFieldMask)
	assert.Equal(t, glow.FieldFlagsAll, cmd.DirFieldMask)
}

func Test_Decode_ParameterWithValue_RoundTrips(t *testing.T) {
	p := glow.NewParameter(1, glow.ParameterContents{
		Identifier: "gain", HasIdentifier: true,
		Value: glow.RealValue(-3.5), HasValue: true,
		Access: glow.ParameterAccessReadWrite, HasAccess: true,
	})

	root := glow.NewElementsRoot(p)

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)
	require.Len(t, got.Elements, 1)

	decoded, ok := got.Elements[0].(*glow.Parameter)
	require.True(t, ok)
	assert.Equal(t, 1, decoded.Number)
	assert.Equal(t, "gain", decoded.Contents.Identifier)
	assert.Equal(t, glow.ValueReal, decoded.Contents.Value.Kind)
	assert.InDelta(t, -3.5, decoded.Contents.Value.Real, 1e-9)
	assert.Equal(t, glow.ParameterAccessReadWrite, decoded.Contents.Access)
}

func Test_Decode_QualifiedNodeWithChildren_RoundTrips(t *testing.T) {
	child := glow.NewParameter(2, glow.ParameterContents{Identifier: "level", HasIdentifier: true})
	node := glow.NewQualifiedNode(oid.OID{1, 2}, glow.NodeContents{Identifier: "amp", HasIdentifier: true}, child)

	root := glow.NewElementsRoot(node)

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)
	require.Len(t, got.Elements, 1)

	decoded, ok := got.Elements[0].(*glow.QualifiedNode)
	require.True(t, ok)

	path, qualified := decoded.ElementPath()
	require.True(t, qualified)
	assert.Equal(t, oid.OID{1, 2}, path)
	require.Len(t, decoded.Children, 1)

	childParam, ok := decoded.Children[0].(*glow.Parameter)
	require.True(t, ok)
	assert.Equal(t, "level", childParam.Contents.Identifier)
}

func Test_EncodeDecode_IntegerValues_RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 32, -128, 127, 128, 1 << 40, -(1 << 40)} {
		p := glow.NewParameter(1, glow.ParameterContents{Value: glow.IntegerValue(v), HasValue: true})
		root := glow.NewElementsRoot(p)

		got, err := glow.Decode(root.Encode())
		require.NoError(t, err, "value %d", v)

		decoded := got.Elements[0].(*glow.Parameter)
		assert.Equal(t, v, decoded.Contents.Value.Integer, "value %d", v)
	}
}

func Test_EncodeDecode_RealValues_RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 3.5, -3.5, 1e10, -1e-10} {
		p := glow.NewParameter(1, glow.ParameterContents{Value: glow.RealValue(v), HasValue: true})
		root := glow.NewElementsRoot(p)

		got, err := glow.Decode(root.Encode())
		require.NoError(t, err, "value %v", v)

		decoded := got.Elements[0].(*glow.Parameter)
		assert.InDelta(t, v, decoded.Contents.Value.Real, 1e-9, "value %v", v)
	}
}

func Test_Decode_StreamsRoot_RoundTrips(t *testing.T) {
	root := glow.NewStreamsRoot(
		glow.StreamEntry{StreamIdentifier: 1, StreamValue: glow.IntegerValue(42)},
		glow.StreamEntry{StreamIdentifier: 2, StreamValue: glow.RealValue(1.5)},
	)

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)
	require.Equal(t, glow.RootStreams, got.Kind)
	require.Len(t, got.Streams, 2)
	assert.Equal(t, 1, got.Streams[0].StreamIdentifier)
	assert.Equal(t, int64(42), got.Streams[0].StreamValue.Integer)
}

func Test_Decode_InvocationResultRoot_RoundTrips(t *testing.T) {
	root := glow.NewInvocationResultRoot(glow.InvocationResult{
		InvocationID: 7, Success: true, HasSuccess: true,
		Result: []glow.Value{glow.StringValue("ok")}, HasResult: true,
	})

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)
	require.Equal(t, glow.RootInvocationResult, got.Kind)
	assert.Equal(t, 7, got.InvocationResult.InvocationID)
	assert.True(t, got.InvocationResult.Success)
	require.Len(t, got.InvocationResult.Result, 1)
	assert.Equal(t, "ok", got.InvocationResult.Result[0].String)
}

func Test_Decode_MatrixWithTargetsSourcesConnections_RoundTrips(t *testing.T) {
	m := glow.NewMatrix(3, glow.MatrixContents{
		Identifier: "router", Description: "test matrix",
		TargetCount: 2, SourceCount: 2,
	})
	m.Targets = []glow.Signal{{Number: 0}, {Number: 1}}
	m.Sources = []glow.Signal{{Number: 0}, {Number: 1}}
	m.Connections = []glow.Connection{{Target: 0, Sources: oid.OID{1}, HasSources: true}}

	root := glow.NewElementsRoot(m)

	got, err := glow.Decode(root.Encode())
	require.NoError(t, err)

	decoded, ok := got.Elements[0].(*glow.Matrix)
	require.True(t, ok)
	assert.Equal(t, "router", decoded.Contents.Identifier)
	require.Len(t, decoded.Targets, 2)
	require.Len(t, decoded.Connections, 1)
	assert.Equal(t, oid.OID{1}, decoded.Connections[0].Sources)
}
