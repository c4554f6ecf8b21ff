// Package demod implements the VDL2 D8PSK demodulator: preamble
// correlation via cumulative-phase regression, symbol-clock seeding, and
// the differential slicer with Gray mapping, per spec.md §4.F.
//
// A Demodulator is owned by exactly one channel goroutine (station.
// Channel) and consumes one post-decimation complex sample at a
// time via Push.
package demod

import (
	"math"

	"github.com/vdl2rx/vdl2rx/internal/bitstream"
)

// SPS is samples per symbol post-decimation.
const SPS = 10

// SyncSkip is the number of post-decimation samples between sync
// correlation attempts while in StateInit.
const SyncSkip = 3

// SymbolRate is the VDL2 D8PSK symbol rate, in symbols/second.
const SymbolRate = 10500

// State is the demodulator's coarse state machine: Init hunts for a
// preamble, Sync clocks out data symbols once one is found.
type State int

const (
	StateInit State = iota
	StateSync
)

// grayMap converts a D8PSK phase-change index (0..7, in units of pi/4)
// into the 3-bit Gray-coded symbol value, per spec.md §4.F.
var grayMap = [8]uint8{0, 1, 3, 2, 6, 7, 5, 4}

// preamblePhaseSteps are the 16 cumulative preamble phases in units of
// pi/4, unwrapped (implementation-defined sequence from spec.md §4.F).
var preamblePhaseSteps = [16]float64{0, 3, -3, 1, 1, 2, 0, 4, -3, 4, -2, 3, 1, -2, -3, 0}

const syncBufLen = 16 * SPS

// Demodulator is the per-channel VDL2 demodulator state machine.
type Demodulator struct {
	Bits *bitstream.Bitstream

	state State

	// syncBuf is a ring of the last syncBufLen samples' arguments
	// (atan2(im, re)), indexed mod syncBufLen; head is the index the next
	// sample will be written to.
	syncBuf [syncBufLen]float64
	head    int
	filled  int

	samplesSinceAttempt int
	symbolClock         int // countdown to the next symbol-sample instant, in StateSync

	pherr       [3]float64 // most recent 3 sync-attempt residuals, pherr[0] newest
	prevFreqErr float64    // freq_err estimated on the previous correlation attempt
	freqErr     float64    // estimated per-symbol frequency offset, radians
	lastSample  complex128

	magLP   float64 // low-pass estimate of |sample|
	noiseLP float64 // low-pass estimate of noise-floor magnitude, from Init-state samples

	channelFreqHz float64
}

// New creates a Demodulator for one channel, writing decoded symbol bits
// into bits.
func New(bits *bitstream.Bitstream, channelFreqHz float64) *Demodulator {
	d := &Demodulator{Bits: bits, channelFreqHz: channelFreqHz}
	d.pherr = [3]float64{pherrMax, pherrMax, pherrMax}
	return d
}

// State reports the current coarse demodulator state.
func (d *Demodulator) State() State { return d.state }

// pherrMax seeds every pherr entry after a reset, so no sync can be
// declared before two real correlation residuals have been computed.
const pherrMax = 1000.0

// Reset returns the demodulator to StateInit, ready to hunt for a new
// preamble (called after a burst has been fully decoded or rejected).
func (d *Demodulator) Reset() {
	d.state = StateInit
	d.samplesSinceAttempt = 0
	d.symbolClock = 0
	d.pherr = [3]float64{pherrMax, pherrMax, pherrMax}
	d.prevFreqErr = 0
}

// Push consumes one post-decimation complex sample. It returns true when
// it has appended a fresh D8PSK symbol's 3 bits to Bits.
func (d *Demodulator) Push(sample complex128) bool {
	mag := cmplxAbs(sample)
	d.magLP = lowpass(d.magLP, mag, 0.05)

	phase := cmplxPhase(sample)
	d.syncBuf[d.head] = phase
	d.head = (d.head + 1) % syncBufLen
	if d.filled < syncBufLen {
		d.filled++
	}
	d.lastSample = sample

	switch d.state {
	case StateInit:
		d.noiseLP = lowpass(d.noiseLP, mag, 0.02)
		d.samplesSinceAttempt++
		if d.samplesSinceAttempt >= SyncSkip && d.filled >= syncBufLen {
			d.samplesSinceAttempt = 0
			d.tryCorrelate()
		}
		return false
	case StateSync:
		d.symbolClock--
		if d.symbolClock > 0 {
			return false
		}
		d.symbolClock = SPS
		return d.sliceSymbol()
	}
	return false
}

// phaseAt returns the phase recorded samplesAgo samples before the most
// recently pushed sample (0 = most recent).
func (d *Demodulator) phaseAt(samplesAgo int) float64 {
	idx := ((d.head-1-samplesAgo)%syncBufLen + syncBufLen) % syncBufLen
	return d.syncBuf[idx]
}

// NoiseFloorPower returns the current noise-floor magnitude estimate,
// gathered while in StateInit.
func (d *Demodulator) NoiseFloorPower() float64 { return d.noiseLP }

// SignalPower returns the current mean symbol magnitude estimate.
func (d *Demodulator) SignalPower() float64 { return d.magLP }

// PPMError reports the frequency error estimate in parts-per-million of
// the channel frequency, per spec.md §4.F:
// SYMBOL_RATE * dphi / (2*pi*f_channel) * 1e6.
func (d *Demodulator) PPMError() float64 {
	if d.channelFreqHz == 0 {
		return 0
	}
	return SymbolRate * d.freqErr / (2 * math.Pi * d.channelFreqHz) * 1e6
}

func lowpass(state, sample, alpha float64) float64 {
	return state + alpha*(sample-state)
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}

func cmplxPhase(c complex128) float64 {
	return math.Atan2(imag(c), real(c))
}
