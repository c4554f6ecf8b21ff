package station

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vdl2 "github.com/vdl2rx/vdl2rx"
)

// fakeSource emits one round of samples then io.EOF, satisfying
// vdl2.SampleSource without needing a real capture file.
type fakeSource struct {
	samples []complex64
	rate    uint32
	served  bool
}

func (f *fakeSource) SampleRate() uint32 { return f.rate }

func (f *fakeSource) Read(buf []complex64) (int, error) {
	if f.served {
		return 0, io.EOF
	}
	f.served = true
	n := copy(buf, f.samples)
	return n, nil
}

// countingFormatter counts how many trees it was asked to format.
type countingFormatter struct {
	n int
}

func (c *countingFormatter) Format(tree *vdl2.ProtoTree) ([]byte, error) {
	c.n++
	return nil, nil
}

func TestRunDrainsOnSourceEOF(t *testing.T) {
	samples := make([]complex64, 4096)
	for i := range samples {
		// Low-amplitude noise-shaped input: no real VDL2 preamble, so no
		// burst is expected, but the pipeline must still process every
		// sample and terminate cleanly once the source returns io.EOF.
		samples[i] = complex(0.01, -0.01)
	}
	src := &fakeSource{samples: samples, rate: 2100000}
	out := &countingFormatter{}

	s := New(Options{
		StationID:        "TEST",
		CenterFreq:       136975000,
		Channels:         []uint32{136975000},
		InputRate:        2100000,
		DecimationFactor: 20,
	}, src, []vdl2.Formatter{out}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(samples)), s.Stats.SamplesRead.Load())
}

func TestStationBuildsChannelsPerOption(t *testing.T) {
	src := &fakeSource{rate: 2100000}
	s := New(Options{
		CenterFreq:       136975000,
		Channels:         []uint32{136975000, 136925000},
		InputRate:        2100000,
		DecimationFactor: 20,
	}, src, nil, nil)

	require.Len(t, s.channels, 2)
	assert.Equal(t, uint32(136925000), s.channels[1].Frequency)
}
