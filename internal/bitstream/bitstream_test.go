package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAppendReadMSBFirstRoundTrip(t *testing.T) {
	src := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	b := New(64)
	require.NoError(t, b.AppendMSBFirst(src, len(src), 8))

	for _, want := range src {
		got, err := b.ReadWordMSBFirst(8)
		require.NoError(t, err)
		assert.Equal(t, uint64(want), got)
	}
}

func TestAppendReadMSBFirstRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 32).Draw(rt, "n")
		src := rapid.SliceOfN(rapid.Byte(), n, n).Draw(rt, "src")

		b := New(n * 8)
		require.NoError(t, b.AppendMSBFirst(src, n, 8))
		for _, want := range src {
			got, err := b.ReadWordMSBFirst(8)
			require.NoError(t, err)
			assert.Equal(t, uint64(want), got)
		}
	})
}

func TestReadUnderflow(t *testing.T) {
	b := New(8)
	require.NoError(t, b.AppendMSBFirst([]byte{0xFF}, 1, 4))
	_, err := b.ReadWordMSBFirst(8)
	assert.Error(t, err)
}

func TestAppendOverflow(t *testing.T) {
	b := New(8)
	err := b.AppendMSBFirst([]byte{0x01, 0x02}, 2, 8)
	assert.Error(t, err)
}

func TestHDLCUnstuffRemovesStuffedZero(t *testing.T) {
	// 0b11111011111 -> five ones, stuffed zero, five ones
	b := New(32)
	bits := []int{1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1}
	for _, bit := range bits {
		require.NoError(t, b.AppendBit(bit))
	}
	require.NoError(t, b.HDLCUnstuff())
	assert.Equal(t, 10, b.Len())
}

func TestHDLCUnstuffRejectsSevenOnes(t *testing.T) {
	b := New(32)
	for i := 0; i < 7; i++ {
		require.NoError(t, b.AppendBit(1))
	}
	err := b.HDLCUnstuff()
	assert.ErrorIs(t, err, ErrBadBitSequence)
}

func TestDescrambleIsInvolution(t *testing.T) {
	// XOR-based descrambling with the same LFSR sequence applied twice
	// returns the original bits, since the keystream only depends on the
	// seed, never on the scrambled data.
	src := []byte{0x55, 0xAA, 0x0F, 0xF0}
	b := New(64)
	require.NoError(t, b.AppendMSBFirst(src, len(src), 8))
	b.Descramble(DefaultDescrambleSeed())

	scrambled := make([]byte, len(src))
	for i := range scrambled {
		v, err := b.ReadWordMSBFirst(8)
		require.NoError(t, err)
		scrambled[i] = byte(v)
	}

	b2 := New(64)
	require.NoError(t, b2.AppendMSBFirst(scrambled, len(scrambled), 8))
	b2.Descramble(DefaultDescrambleSeed())
	for _, want := range src {
		got, err := b2.ReadWordMSBFirst(8)
		require.NoError(t, err)
		assert.Equal(t, uint64(want), got)
	}
}

func TestCopyNextFrameStopsAtFlag(t *testing.T) {
	b := New(64)
	octets := []byte{0x01, 0x02, 0x03, flagOctet, 0x04}
	require.NoError(t, b.AppendMSBFirst(octets, len(octets), 8))

	dst := New(64)
	more, err := b.CopyNextFrame(dst)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 24, dst.Len())
}
