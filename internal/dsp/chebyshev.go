// Package dsp implements the multi-channel front end: the shared
// decimating lowpass filter and the per-channel downmixer, per spec.md
// §4.D/§4.E.
package dsp

import "math"

// LowpassFilter is a 2-pole Chebyshev lowpass, designed once per sample
// rate and applied independently to the real and imaginary branches of a
// complex sample stream. It is the Go-native reimplementation of the
// classic "cookbook" recursive Chebyshev design used throughout the
// retrieved ham-radio DSP code, parametrized the way spec.md §4.D
// describes: cutoff 8 kHz, 0.5% ripple, 2 poles.
type LowpassFilter struct {
	a0, a1, a2 float64
	b1, b2     float64

	reI, imI   [2]float64 // input history x[n-1], x[n-2]
	reO, imO   [2]float64 // output history y[n-1], y[n-2]
}

// NewLowpassFilter designs a 2-pole Chebyshev lowpass with the given
// cutoff (Hz), sample rate (Hz) and percent ripple, following the
// standard recursive-filter-design recurrence (the same cookbook formula
// the retrieved SDR/ham codebases use for their audio/IF filters).
func NewLowpassFilter(cutoffHz, sampleRateHz, percentRipple float64) *LowpassFilter {
	fc := cutoffHz / sampleRateHz
	// 2-pole recursive Chebyshev design (Steven W. Smith's "Scientist and
	// Engineer's Guide to DSP" chapter 20 formulation, the derivation
	// every from-scratch Chebyshev cookbook in this ecosystem traces to).
	// spec.md §4.D calls for exactly one conjugate pole pair (2 poles).
	sf := chebyshevPoleNorm(2, 1, percentRipple, fc)
	return &LowpassFilter{a0: sf.a0, a1: sf.a1, a2: sf.a2, b1: sf.b1, b2: sf.b2}
}

type stage struct{ a0, a1, a2, b1, b2 float64 }

// chebyshevPoleNorm computes the s-to-z bilinear-transformed coefficients
// for one conjugate pole pair of an np-pole Chebyshev lowpass at the given
// normalized cutoff fc (cutoff/samplerate) and ripple percentage,
// following the standard recursive-filter cookbook derivation.
func chebyshevPoleNorm(np, pole int, percentRipple, fc float64) stage {
	rp := -math.Cos(math.Pi/float64(2*np) + float64(pole-1)*math.Pi/float64(np))
	ip := math.Sin(math.Pi/float64(2*np) + float64(pole-1)*math.Pi/float64(np))

	es := math.Sqrt(math.Pow(100/(100-percentRipple), 2) - 1)
	vx := math.Log((1 + math.Sqrt(1+es*es)) / es) / float64(np)
	kx := math.Log((1/es)+math.Sqrt(1/(es*es)-1)) / float64(np)
	kx = (math.Exp(kx) + math.Exp(-kx)) / 2
	rp *= math.Sinh(vx) / kx
	ip *= math.Cosh(vx) / kx

	t := 2 * math.Tan(0.5)
	w := 2 * math.Pi * fc
	m := rp*rp + ip*ip
	d := 4 - 4*rp*t + m*t*t
	x0 := t * t / d
	x1 := 2 * t * t / d
	x2 := x0
	y1 := (8 - 2*m*t*t) / d
	y2 := (-4 - 4*rp*t - m*t*t) / d

	k := math.Sin(0.5-w/2) / math.Sin(0.5+w/2)
	d2 := 1 + y1*k - y2*k*k
	a0 := (x0 - x1*k + x2*k*k) / d2
	a1 := (-2*x0*k + x1 + x1*k*k - 2*x2*k) / d2
	a2 := (x0*k*k - x1*k + x2) / d2
	b1 := (2*k + y1 + y1*k*k - 2*y2*k) / d2
	b2 := (-(k * k) - y1*k + y2) / d2
	return stage{a0: a0, a1: a1, a2: a2, b1: b1, b2: b2}
}

// Apply filters one real/imaginary sample pair.
func (f *LowpassFilter) Apply(re, im float64) (float64, float64) {
	outRe := f.a0*re + f.a1*f.reI[0] + f.a2*f.reI[1] + f.b1*f.reO[0] + f.b2*f.reO[1]
	f.reI[1], f.reI[0] = f.reI[0], re
	f.reO[1], f.reO[0] = f.reO[0], outRe

	outIm := f.a0*im + f.a1*f.imI[0] + f.a2*f.imI[1] + f.b1*f.imO[0] + f.b2*f.imO[1]
	f.imI[1], f.imI[0] = f.imI[0], im
	f.imO[1], f.imO[0] = f.imO[0], outIm

	return outRe, outIm
}
