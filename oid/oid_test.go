package oid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/oid"
)

func Test_Decode_ThreeSingleByteArcs_YieldsOneTwoThree(t *testing.T) {
	got, err := oid.Decode([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, oid.OID{1, 2, 3}, got)
}

func Test_Decode_TwoByteArc_Yields16383(t *testing.T) {
	got, err := oid.Decode([]byte{0xff, 0x7f})
	require.NoError(t, err)
	assert.Equal(t, oid.OID{16383}, got)
}

func Test_EncodeDecode_BoundaryArcValues_RoundTrip(t *testing.T) {
	for _, arc := range []uint32{0, 127, 128, 16383, 2147483647} {
		encoded := oid.Encode(oid.OID{arc})
		got, err := oid.Decode(encoded)
		require.NoError(t, err, "arc %d", arc)
		assert.Equal(t, oid.OID{arc}, got, "arc %d", arc)
	}
}

func Test_Parent_OfJoin_RecoversOriginal(t *testing.T) {
	p := oid.OID{1, 2, 3}
	joined := oid.Join(p, 4)
	assert.Equal(t, p, joined.Parent())
}

func Test_Parent_OfRoot_IsRoot(t *testing.T) {
	assert.True(t, oid.Root().Parent().IsRoot())
}

func Test_Decode_TruncatedContinuation_ReturnsError(t *testing.T) {
	_, err := oid.Decode([]byte{0xff})
	require.Error(t, err)
}
