package crc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestResidue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "data")
		framed := Append(data)
		assert.Equal(t, ResidueOK, Checksum(Init, framed))
	})
}

func TestVerifyDetectsCorruption(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	framed := Append(data)
	assert.True(t, Verify(framed))
	framed[0] ^= 0xFF
	assert.False(t, Verify(framed))
}

func TestVerifyTooShort(t *testing.T) {
	assert.False(t, Verify([]byte{0x01}))
}
