package pitch

import (
	"github.com/audiolens/pitchtrace/audio"
	"gonum.org/v1/gonum/floats"
)

// AutocorrelationEstimator estimates pitch from the lag of the strongest
// autocorrelation peak inside the search band. Robust for strongly periodic
// signals; prone to octave errors on rich harmonic content.
type AutocorrelationEstimator struct {
	minFreq float64
	maxFreq float64

	// peakFloor discards local maxima below this fraction of the tallest
	// in-range peak.
	peakFloor float64
}

// NewAutocorrelationEstimator creates an autocorrelation estimator with the
// default search band.
func NewAutocorrelationEstimator() *AutocorrelationEstimator {
	return &AutocorrelationEstimator{
		minFreq:   MinFrequency,
		maxFreq:   MaxFrequency,
		peakFloor: 0.1,
	}
}

// Method returns the estimator identifier.
func (e *AutocorrelationEstimator) Method() Method {
	return MethodAutocorrelation
}

// Estimate computes the normalized autocorrelation of the whole buffer and
// picks the tallest local maximum inside the lag range corresponding to the
// search band. Silent input yields a zero estimate.
func (e *AutocorrelationEstimator) Estimate(buf *audio.Buffer) Estimate {
	samples := buf.Samples()
	sampleRate := float64(buf.SampleRate())

	minLag := int(sampleRate / e.maxFreq)
	maxLag := int(sampleRate / e.minFreq)
	maxLag = min(maxLag, len(samples)-1)

	if minLag < 1 || minLag >= maxLag {
		return Estimate{Method: MethodAutocorrelation}
	}

	autocorr := computeAutocorrelation(samples, maxLag+1)
	if autocorr == nil {
		return Estimate{Method: MethodAutocorrelation}
	}

	// Tallest in-range value sets the floor for accepting local maxima.
	globalMax := floats.Max(autocorr[minLag : maxLag+1])
	if globalMax <= 0 {
		return Estimate{Method: MethodAutocorrelation}
	}

	bestLag := -1
	bestValue := 0.0
	floor := e.peakFloor * globalMax

	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] < floor {
			continue
		}
		if autocorr[lag] <= autocorr[lag-1] || (lag+1 < len(autocorr) && autocorr[lag] < autocorr[lag+1]) {
			continue
		}
		if autocorr[lag] > bestValue {
			bestValue = autocorr[lag]
			bestLag = lag
		}
	}

	if bestLag < 0 {
		return Estimate{Method: MethodAutocorrelation}
	}

	refinedLag := float64(bestLag) + parabolicInterpolation(autocorr, bestLag)

	confidence := bestValue
	confidence = min(confidence, 1.0)
	confidence = max(confidence, 0.0)

	return Estimate{
		Frequency:  sampleRate / refinedLag,
		Confidence: confidence,
		Method:     MethodAutocorrelation,
	}
}

// computeAutocorrelation computes the autocorrelation for lags [0, numLags),
// normalized by the zero-lag energy. Returns nil for silent input.
func computeAutocorrelation(samples []float64, numLags int) []float64 {
	numLags = min(numLags, len(samples))
	if numLags <= 0 {
		return nil
	}

	autocorr := make([]float64, numLags)
	for lag := range numLags {
		sum := 0.0
		for i := 0; i < len(samples)-lag; i++ {
			sum += samples[i] * samples[i+lag]
		}
		autocorr[lag] = sum
	}

	r0 := autocorr[0]
	if r0 == 0 {
		return nil
	}

	for lag := range autocorr {
		autocorr[lag] /= r0
	}

	return autocorr
}
