package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowpassFilterAttenuatesHighFrequency(t *testing.T) {
	const sampleRate = 200000.0
	f := NewLowpassFilter(8000, sampleRate, 0.5)

	// Settle transients, then measure steady-state gain at a frequency
	// well above the 8kHz cutoff; the output amplitude should be much
	// smaller than a near-DC tone's.
	var maxOut float64
	for i := 0; i < 2000; i++ {
		theta := 2 * math.Pi * 60000 * float64(i) / sampleRate
		re, _ := f.Apply(math.Cos(theta), 0)
		if i > 1000 && math.Abs(re) > maxOut {
			maxOut = math.Abs(re)
		}
	}
	assert.Less(t, maxOut, 0.5)
}

func TestDecimatorEmitsEveryFactorSamples(t *testing.T) {
	d := NewDecimator(4, 420000)
	emitted := 0
	for i := 0; i < 40; i++ {
		_, _, ok := d.Push(1, 0)
		if ok {
			emitted++
		}
	}
	assert.Equal(t, 10, emitted)
}

func TestDownmixerSkipsWhenFreqsMatch(t *testing.T) {
	m := NewDownmixer(136975000, 136975000, 105000)
	re, im := m.Mix(0.5, 0.25)
	assert.Equal(t, 0.5, re)
	assert.Equal(t, 0.25, im)
}

func TestDownmixerRotatesPhase(t *testing.T) {
	m := NewDownmixer(136975000, 136950000, 105000)
	_, im1 := m.Mix(1, 0)
	_, im2 := m.Mix(1, 0)
	// With a nonzero frequency offset, successive samples of a DC input
	// trace out a rotating phasor, so the imaginary part should change.
	assert.NotEqual(t, im1, im2)
}
