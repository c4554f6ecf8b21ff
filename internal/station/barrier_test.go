package station

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vdl2 "github.com/vdl2rx/vdl2rx"
)

// multiRoundSource serves rounds samples at a time, round by round,
// then io.EOF, exercising the producer/channel barrier across more than
// one handoff.
type multiRoundSource struct {
	rounds [][]complex64
	rate   uint32
	next   int
}

func (m *multiRoundSource) SampleRate() uint32 { return m.rate }

func (m *multiRoundSource) Read(buf []complex64) (int, error) {
	if m.next >= len(m.rounds) {
		return 0, io.EOF
	}
	n := copy(buf, m.rounds[m.next])
	m.next++
	return n, nil
}

func TestMultiChannelMultiRoundBarrierDoesNotDeadlock(t *testing.T) {
	mkRound := func(v complex64) []complex64 {
		r := make([]complex64, 1024)
		for i := range r {
			r[i] = v
		}
		return r
	}
	src := &multiRoundSource{
		rounds: [][]complex64{mkRound(0.01), mkRound(-0.01), mkRound(0.02)},
		rate:   2100000,
	}

	s := New(Options{
		StationID:        "TEST",
		CenterFreq:       136975000,
		Channels:         []uint32{136975000, 136925000, 136800000},
		InputRate:        2100000,
		DecimationFactor: 20,
	}, src, []vdl2.Formatter{&countingFormatter{}}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	require.Equal(t, int64(3*1024), s.Stats.SamplesRead.Load())
}
