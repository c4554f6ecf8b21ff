package rs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBlock(t *testing.T, dataLen int) [N]byte {
	t.Helper()
	data := make([]byte, dataLen)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	parity := Encode(data)
	var block [N]byte
	copy(block[:], data)
	copy(block[N-NumRoots:], parity)
	return block
}

func TestEncodeDecodeNoErrors(t *testing.T) {
	block := buildBlock(t, K)
	n, err := Verify(&block, NumRoots)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDecodeCorrectsSingleError(t *testing.T) {
	block := buildBlock(t, K)
	block[10] ^= 0xFF
	n, err := Verify(&block, NumRoots)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDecodeCorrectsUpToHalfRootsErrors(t *testing.T) {
	block := buildBlock(t, K)
	block[5] ^= 0x11
	block[100] ^= 0x22
	block[200] ^= 0x33
	n, err := Verify(&block, NumRoots)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestVerifyTreatsMissingTailAsErasures(t *testing.T) {
	// A shortened tail block: only 2 of the 6 parity octets are present,
	// the rest are erasures per spec.md §4.B/§4.G.
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i * 3)
	}
	parity := Encode(data) // full 6-octet parity computed against the K-sized code
	var block [N]byte
	copy(block[:], data)
	// Only keep the first 2 parity octets; simulate erasures for the rest
	// by leaving them zero, matching the burst decoder's zero-fill.
	copy(block[N-NumRoots:N-NumRoots+2], parity[:2])

	// With 4 erasures declared, a single additional symbol error should
	// still be correctable (total weight 1*2+4 = 6 <= NumRoots).
	block[0] ^= 0xAB
	n, err := Verify(&block, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 4)
}

func TestDecodeUncorrectableReturnsError(t *testing.T) {
	block := buildBlock(t, K)
	// Four independent errors exceed what 6 parity octets (max 3 errors,
	// no erasures) can correct. Not every such pattern is detected: one
	// lying within 3 symbols of another codeword decodes to that codeword
	// (flipping octets 1..4 by 1..4 is such a pattern), so the errors here
	// are spread across the block.
	block[1] ^= 0x10
	block[50] ^= 0x31
	block[120] ^= 0x52
	block[240] ^= 0x73
	_, err := Verify(&block, NumRoots)
	assert.Error(t, err)
}
