package packet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/packet"
	"github.com/emberplus/emberplus/s101"
)

func Test_ToPackets_EmptyPayload_YieldsNoPackets(t *testing.T) {
	assert.Empty(t, packet.ToPackets(nil))
}

func Test_ToPackets_ExactlyMaxPayload_YieldsSingleSinglePacket(t *testing.T) {
	payload := make([]byte, packet.MaxPayload)

	got := packet.ToPackets(payload)
	require.Len(t, got, 1)
	assert.Equal(t, byte(s101.FlagSinglePacket), got[0].Flag)
}

func Test_ToPackets_OneByteOverMaxPayload_YieldsFirstAndLast(t *testing.T) {
	payload := make([]byte, packet.MaxPayload+1)

	got := packet.ToPackets(payload)
	require.Len(t, got, 2)
	assert.Equal(t, byte(s101.FlagMultiPacketFirst), got[0].Flag)
	assert.Equal(t, byte(s101.FlagMultiPacketLast), got[1].Flag)
}

func Test_ToPackets_ThreeMaxPayloadsPlusOne_YieldsFirstMiddleMiddleLast(t *testing.T) {
	payload := make([]byte, 3*packet.MaxPayload+1)

	got := packet.ToPackets(payload)
	require.Len(t, got, 4)
	assert.Equal(t, byte(s101.FlagMultiPacketFirst), got[0].Flag)
	assert.Equal(t, byte(s101.FlagMultiPacket), got[1].Flag)
	assert.Equal(t, byte(s101.FlagMultiPacket), got[2].Flag)
	assert.Equal(t, byte(s101.FlagMultiPacketLast), got[3].Flag)
}

func Test_ToBytesFromBytes_Packet_RoundTrips(t *testing.T) {
	p := packet.Packet{
		Flag: s101.FlagSinglePacket, DTD: 0x01, AppBytes: 0x02,
		VersionMinor: 50, VersionMajor: 2, Payload: []byte{0x01, 0x02, 0x03},
	}

	got, err := packet.FromBytes(p.ToBytes())
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func Test_Reassembler_SinglePacket_CompletesImmediately(t *testing.T) {
	var r packet.Reassembler

	complete, ready := r.Feed(packet.Packet{Flag: s101.FlagSinglePacket, Payload: []byte("hello")})
	assert.True(t, ready)
	assert.Equal(t, []byte("hello"), complete)
}

func Test_Reassembler_FirstMiddleLast_ConcatenatesInOrder(t *testing.T) {
	var r packet.Reassembler

	_, ready := r.Feed(packet.Packet{Flag: s101.FlagMultiPacketFirst, Payload: []byte("ab")})
	assert.False(t, ready)

	_, ready = r.Feed(packet.Packet{Flag: s101.FlagMultiPacket, Payload: []byte("cd")})
	assert.False(t, ready)

	complete, ready := r.Feed(packet.Packet{Flag: s101.FlagMultiPacketLast, Payload: []byte("ef")})
	assert.True(t, ready)
	assert.Equal(t, []byte("abcdef"), complete)
}

func Test_Reassembler_MiddleWithNoFirst_IsDropped(t *testing.T) {
	var r packet.Reassembler

	complete, ready := r.Feed(packet.Packet{Flag: s101.FlagMultiPacket, Payload: []byte("cd")})
	assert.False(t, ready)
	assert.Nil(t, complete)
}

func Test_Reassembler_SingleAfterPartialFirst_DiscardsPartialAndCompletes(t *testing.T) {
	var r packet.Reassembler

	_, ready := r.Feed(packet.Packet{Flag: s101.FlagMultiPacketFirst, Payload: []byte("ab")})
	assert.False(t, ready)

	complete, ready := r.Feed(packet.Packet{Flag: s101.FlagSinglePacket, Payload: []byte("zz")})
	assert.True(t, ready)
	assert.Equal(t, []byte("zz"), complete)
}

func Test_Reassembler_EmptyPacket_IsNoOp(t *testing.T) {
	var r packet.Reassembler

	complete, ready := r.Feed(packet.Packet{Flag: s101.FlagEmptyPacket})
	assert.False(t, ready)
	assert.Nil(t, complete)
}
