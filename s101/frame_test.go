package s101_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/s101"
)

func Test_Encode_EscapingSinglePacket_MatchesReferenceVector(t *testing.T) {
	payload := append([]byte{0xC0, 0x01, 0x02, 0x05, 0x02}, make([]byte, 10)...)
	frame := s101.NewEmberPacketFrame(payload, false)

	want := []byte{
		254, 0, 14, 0, 1, 192, 1, 2, 5, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 107, 240, 255,
	}

	assert.Equal(t, want, frame.Encode())
}

func Test_Encode_NonEscapingSinglePacket_MatchesReferenceVector(t *testing.T) {
	payload := append([]byte{0xC0, 0x01, 0x02, 0x05, 0x02}, make([]byte, 10)...)
	frame := s101.NewEmberPacketFrame(payload, true)

	want := []byte{
		0xF8, 0x01, 0x13, 0x00, 0x0E, 0x00, 0x01, 0xC0, 0x01, 0x02, 0x05, 0x02, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	assert.Equal(t, want, frame.Encode())
}

func Test_Decode_EscapingSinglePacket_RoundTripsReferenceVector(t *testing.T) {
	data := []byte{
		254, 0, 14, 0, 1, 192, 1, 2, 5, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 107, 240, 255,
	}

	got, err := s101.Decode(bufio.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, s101.KindEmberPacket, got.Kind)
	assert.Equal(t, []byte{0xC0, 0x01, 0x02, 0x05, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, got.Payload)
	assert.False(t, got.NonEscaping)
}

func Test_Decode_NonEscapingSinglePacket_RoundTripsReferenceVector(t *testing.T) {
	data := []byte{
		0xF8, 0x01, 0x13, 0x00, 0x0E, 0x00, 0x01, 0xC0, 0x01, 0x02, 0x05, 0x02, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	got, err := s101.Decode(bufio.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, s101.KindEmberPacket, got.Kind)
	assert.True(t, got.NonEscaping)
}

func Test_Decode_EscapingFrame_RejectsSingleBitCorruption(t *testing.T) {
	data := []byte{
		254, 0, 14, 0, 1, 192, 1, 2, 5, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 107, 240, 255,
	}
	data[5] ^= 0x01 // flip one bit inside the escaped payload region

	_, err := s101.Decode(bufio.NewReader(bytes.NewReader(data)))
	require.Error(t, err)
}

func Test_EncodeDecode_KeepaliveRequestResponse_RoundTrip(t *testing.T) {
	for _, nonEscaping := range []bool{false, true} {
		req := s101.NewKeepaliveRequestFrame(nonEscaping)
		got, err := s101.Decode(bufio.NewReader(bytes.NewReader(req.Encode())))
		require.NoError(t, err)
		assert.Equal(t, s101.KindKeepaliveRequest, got.Kind)

		resp := s101.NewKeepaliveResponseFrame(nonEscaping)
		got, err = s101.Decode(bufio.NewReader(bytes.NewReader(resp.Encode())))
		require.NoError(t, err)
		assert.Equal(t, s101.KindKeepaliveResponse, got.Kind)
	}
}

func Test_EncodeDecode_NonEscapingLengthBoundaries_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 255, 256, 65535 - 4} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}

		frame := s101.NewEmberPacketFrame(payload, true)
		got, err := s101.Decode(bufio.NewReader(bytes.NewReader(frame.Encode())))
		require.NoError(t, err, "payload length %d", n)
		assert.Equal(t, payload, got.Payload, "payload length %d", n)
	}
}

func Test_Decode_UnknownStartByte_ReturnsDeserializationError(t *testing.T) {
	_, err := s101.Decode(bufio.NewReader(bytes.NewReader([]byte{0x00, 0x01})))
	require.Error(t, err)
}
