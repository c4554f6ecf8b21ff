package dsp

// Decimator lowpass-filters an incoming complex sample stream and emits
// one output sample for every Factor input samples, per spec.md §4.D. At
// the VDL2 symbol rate (10500 sym/s) and SPS=10, inputRate/Factor must
// equal 105000 samples/s.
type Decimator struct {
	filter *LowpassFilter
	factor int
	count  int
}

// NewDecimator builds a decimator with the given integer decimation
// factor, backed by a lowpass designed for the given input sample rate.
func NewDecimator(factor int, inputSampleRateHz float64) *Decimator {
	const cutoffHz = 8000
	const ripplePercent = 0.5
	return &Decimator{
		filter: NewLowpassFilter(cutoffHz, inputSampleRateHz, ripplePercent),
		factor: factor,
	}
}

// Push feeds one input complex sample through the filter. It returns
// (output, true) every Factor-th call.
func (d *Decimator) Push(re, im float64) (outRe, outIm float64, ok bool) {
	fre, fim := d.filter.Apply(re, im)
	d.count++
	if d.count < d.factor {
		return 0, 0, false
	}
	d.count = 0
	return fre, fim, true
}
