package sampleio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU8Normalization(t *testing.T) {
	raw := []byte{127, 127, 255, 0, 0, 255}
	src := NewU8(bytes.NewReader(raw), 2048000)
	assert.EqualValues(t, 2048000, src.SampleRate())

	buf := make([]complex64, 3)
	n, err := src.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	assert.InDelta(t, float64(real(buf[0])), -0.5/127.5, 1e-6)
	assert.InDelta(t, float64(real(buf[1])), 1, 1e-6)
	assert.InDelta(t, float64(imag(buf[1])), -1, 1e-6)
}

func TestU8EOF(t *testing.T) {
	src := NewU8(bytes.NewReader(nil), 1000)
	buf := make([]complex64, 4)
	n, err := src.Read(buf)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestU8ShortFinalRead(t *testing.T) {
	raw := []byte{127, 127, 255, 0, 5} // 2 full samples + 1 stray byte
	src := NewU8(bytes.NewReader(raw), 1000)
	buf := make([]complex64, 4)
	n, err := src.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestS16Normalization(t *testing.T) {
	var raw bytes.Buffer
	binary.Write(&raw, binary.LittleEndian, int16(16384))
	binary.Write(&raw, binary.LittleEndian, int16(-16384))

	src := NewS16(&raw, 105000)
	buf := make([]complex64, 1)
	n, err := src.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.InDelta(t, 0.5, float64(real(buf[0])), 1e-4)
	assert.InDelta(t, -0.5, float64(imag(buf[0])), 1e-4)
}

func TestS16EOF(t *testing.T) {
	src := NewS16(bytes.NewReader(nil), 1000)
	buf := make([]complex64, 2)
	n, err := src.Read(buf)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}
