package dsp

import "math"

// phaseLUTSize is the number of entries in the sin/cos phase lookup
// table; the low 16 bits of the 24-bit phase accumulator linearly
// interpolate between adjacent entries, per spec.md §4.E.
const phaseLUTSize = 256

// phaseBits is the width of the fixed-point phase accumulator.
const phaseBits = 24

var sinLUT, cosLUT [phaseLUTSize + 1]float64 // +1 guard entry for interpolation at the wrap point

func init() {
	for i := 0; i <= phaseLUTSize; i++ {
		theta := 2 * math.Pi * float64(i) / phaseLUTSize
		sinLUT[i] = math.Sin(theta)
		cosLUT[i] = math.Cos(theta)
	}
}

// Downmixer shifts a complex baseband stream by a fixed delta-phase per
// sample, derived from (center_freq - channel_freq)/sample_rate, per
// spec.md §4.E. When centerFreq == channelFreq the mixer is a no-op
// (Mix returns its input unchanged without touching the LUT).
type Downmixer struct {
	phi  uint32 // 24-bit fixed point, wraps mod 2^24
	dphi uint32
	skip bool
}

// NewDownmixer builds a downmixer for one channel. centerFreq and
// channelFreq are in Hz; sampleRate is the rate (Hz) of the stream Mix is
// applied to (station mixes the front-end stream, before decimation).
func NewDownmixer(centerFreq, channelFreq int64, sampleRate float64) *Downmixer {
	if centerFreq == channelFreq {
		return &Downmixer{skip: true}
	}
	delta := float64(centerFreq-channelFreq) / sampleRate
	dphi := int64(delta * float64(uint32(1)<<phaseBits))
	return &Downmixer{dphi: uint32(dphi) & (1<<phaseBits - 1)}
}

func lutLookup(table *[phaseLUTSize + 1]float64, phase uint32) float64 {
	// Top 8 bits select the coarse LUT entry, low 16 bits (of the 24-bit
	// phase) linearly interpolate between it and the next entry.
	idx := (phase >> (phaseBits - 8)) & (phaseLUTSize - 1)
	frac := float64(phase&((1<<(phaseBits-8))-1)) / float64(1<<(phaseBits-8))
	return table[idx]*(1-frac) + table[idx+1]*frac
}

// Mix complex-multiplies one (re, im) sample by e^(j*phi) and advances the
// phase accumulator by dphi (wrapping mod 2^24).
func (m *Downmixer) Mix(re, im float64) (float64, float64) {
	if m.skip {
		return re, im
	}
	s := lutLookup(&sinLUT, m.phi)
	c := lutLookup(&cosLUT, m.phi)
	outRe := re*c - im*s
	outIm := re*s + im*c
	m.phi = (m.phi + m.dphi) & (1<<phaseBits - 1)
	return outRe, outIm
}
