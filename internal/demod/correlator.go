package demod

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// unwrapToPi brings a phase difference into (-pi, pi], unwrapping
// anything larger, per spec.md §4.F step 2 ("unwrap differences > pi to
// +-2pi").
func unwrapToPi(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// tryCorrelate runs one preamble-correlation attempt against the last 16
// symbol-spaced samples in syncBuf, per spec.md §4.F. On a declared sync
// it seeds the symbol clock and frequency-error estimate and transitions
// to StateSync.
func (d *Demodulator) tryCorrelate() {
	const n = 16
	errvec := make([]float64, n)
	lrX := make([]float64, n)

	for i := 0; i < n; i++ {
		// Sample the i-th most-recent symbol-spaced phase: i=15 is the
		// most recent, i=0 is 15 symbols ago, matching pr_phase's
		// preamble-start-to-end ordering.
		samplesAgo := (n - 1 - i) * SPS
		sampled := d.phaseAt(samplesAgo)
		want := preamblePhaseSteps[i] * math.Pi / 4
		errvec[i] = unwrapToPi(sampled - want)
		lrX[i] = float64(i)
	}

	mean := stat.Mean(errvec, nil)
	for i := range errvec {
		errvec[i] -= mean
	}
	xMean := stat.Mean(lrX, nil)
	for i := range lrX {
		lrX[i] -= xMean
	}

	// stat.LinearRegression(x, y, weights, origin) returns (alpha, beta)
	// for y = alpha + beta*x; beta is the per-symbol frequency-error
	// estimate spec.md §4.F calls freq_err.
	alpha, beta := stat.LinearRegression(lrX, errvec, nil, false)

	var residual float64
	for i := range errvec {
		fit := alpha + beta*lrX[i]
		e := errvec[i] - fit
		residual += e * e
	}

	d.pherr[2] = d.pherr[1]
	d.pherr[1] = d.pherr[0]
	d.pherr[0] = residual

	if d.pherr[1] < 4.0 && d.pherr[0] > d.pherr[1] {
		// The frequency-error estimate used at the sync point is the one
		// from the previous attempt, not this one: by the time the error
		// metric has turned back up, the previous attempt's regression
		// was the one sampled closest to the true symbol boundary.
		d.declareSync(d.prevFreqErr)
		return
	}
	d.prevFreqErr = beta
}

// declareSync fits a parabola through the last three residuals to locate
// the true correlation vertex (spec.md §4.F step 6), seeds the symbol
// clock offset and frequency-error estimate, and switches to StateSync.
func (d *Demodulator) declareSync(freqErr float64) {
	// Parabola vertex of (pherr[2], pherr[1], pherr[0]) sampled at x =
	// -1, 0, +1 (three consecutive SyncSkip-spaced attempts): vertex
	// offset (in attempts) is -b/(2a) for y = a*x^2 + b*x + c fit through
	// those three points.
	y0, y1, y2 := d.pherr[2], d.pherr[1], d.pherr[0]
	a := (y2 + y0) / 2 - y1
	b := (y2 - y0) / 2
	var vertexX float64
	if a != 0 {
		vertexX = -b / (2 * a)
		if vertexX < -1 {
			vertexX = -1
		} else if vertexX > 1 {
			vertexX = 1
		}
	}
	// vertexX in [-1, 1] attempts (each SyncSkip samples) translates into
	// a symbol-clock seed within one symbol period.
	offsetSamples := int(math.Round(vertexX * SyncSkip))
	seed := SPS + offsetSamples
	if seed < 1 {
		seed = 1
	}
	if seed > SPS {
		seed = SPS
	}

	d.freqErr = freqErr
	d.symbolClock = seed
	d.state = StateSync
	d.pherr[1] = pherrMax
	d.pherr[2] = pherrMax
}
