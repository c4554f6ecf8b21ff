package esis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseESH(t *testing.T) {
	buf := []byte{
		0x82, 0, 1, 0, byte(TypeESH), 0, 30, 0, 0, // 9-byte header
		3, 0x11, 0x22, 0x33, // addrlen=3, SA
	}
	pdu, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, TypeESH, pdu.Type)
	assert.EqualValues(t, 30, pdu.Holdtime)
	assert.Equal(t, []byte{0x11, 0x22, 0x33}, pdu.NetAddr)
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, HdrLen-1))
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseUnsupportedVersion(t *testing.T) {
	buf := make([]byte, HdrLen+1)
	buf[2] = 2
	_, err := Parse(buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
