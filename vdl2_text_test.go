package vdl2

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatterFormatsMetaAndTree(t *testing.T) {
	root := &ProtoNode{Name: "avlc"}
	x25 := root.AppendChild(&ProtoNode{Name: "x25"})
	x25.AppendChild(Unparseable("clnp", []byte{1, 2}, errors.New("short PDU")))

	tree := &ProtoTree{
		Meta: Metadata{
			Timestamp:      time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC),
			Frequency:      136975000,
			FramePowerDBFS: -32.5,
			NoiseFloorDBFS: -70.1,
			PPMError:       1.2,
			FECCorrections: 3,
		},
		Root: root,
	}

	out, err := TextFormatter{}.Format(tree)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "2026-07-31 12:00:00.000")
	assert.Contains(t, s, "freq: 136975000 Hz")
	assert.Contains(t, s, "pwr: -32.5 dBFS")
	assert.Contains(t, s, "noise: -70.1 dBFS")
	assert.Contains(t, s, "ppm: 1.2")
	assert.Contains(t, s, "corrections: 3")
	assert.Contains(t, s, "avlc\n")
	assert.Contains(t, s, "x25\n")
	assert.Contains(t, s, "clnp: unparseable (short PDU), 2 raw bytes")
}

func TestTextFormatterNilRoot(t *testing.T) {
	tree := &ProtoTree{Meta: Metadata{Frequency: 136000000}}
	out, err := TextFormatter{}.Format(tree)
	require.NoError(t, err)
	assert.Contains(t, string(out), "freq: 136000000 Hz")
}
