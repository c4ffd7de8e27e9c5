package pitch

import (
	"sort"

	"github.com/audiolens/pitchtrace/audio"
	"gonum.org/v1/gonum/stat"
)

// YINThreshold is the cumulative mean normalized difference below which a
// dip is accepted as the period candidate.
const YINThreshold = 0.1

// DifferenceFunctionEstimator implements the YIN algorithm: per frame, the
// cumulative mean normalized difference function is searched for the first
// dip under the threshold, and per-frame frequencies are reduced to their
// median. The median makes the estimate robust to occasional octave slips.
type DifferenceFunctionEstimator struct {
	framer    *audio.Framer
	threshold float64
	minFreq   float64
	maxFreq   float64
}

// NewDifferenceFunctionEstimator creates a YIN estimator with the default
// frame layout, threshold, and search band.
func NewDifferenceFunctionEstimator() *DifferenceFunctionEstimator {
	return &DifferenceFunctionEstimator{
		framer:    audio.NewFramer(DefaultFrameLength, DefaultHopLength),
		threshold: YINThreshold,
		minFreq:   MinFrequency,
		maxFreq:   MaxFrequency,
	}
}

// Method returns the estimator identifier.
func (e *DifferenceFunctionEstimator) Method() Method {
	return MethodYIN
}

// Estimate returns the median of per-frame YIN frequencies. Frames with no
// dip under the threshold contribute nothing; if no frame yields a period,
// the estimate is zero.
func (e *DifferenceFunctionEstimator) Estimate(buf *audio.Buffer) Estimate {
	framer := e.framer
	if framer.NumFrames(buf) == 0 {
		framer = audio.NewFramer(buf.Len(), buf.Len())
	}

	var freqs, confidences []float64
	for frame := range framer.Frames(buf) {
		freq, conf := e.estimateFrame(frame.Samples(), buf.SampleRate())
		if freq <= 0 {
			continue
		}
		freqs = append(freqs, freq)
		confidences = append(confidences, conf)
	}

	if len(freqs) == 0 {
		return Estimate{Method: MethodYIN}
	}

	return Estimate{
		Frequency:  median(freqs),
		Confidence: stat.Mean(confidences, nil),
		Method:     MethodYIN,
	}
}

// estimateFrame runs YIN on a single frame. Returns (0, 0) when the frame has
// no dip under the threshold.
func (e *DifferenceFunctionEstimator) estimateFrame(samples []float64, sampleRate int) (freq, confidence float64) {
	maxTau := len(samples) / 2
	if maxTau < 2 {
		return 0, 0
	}

	cmndf := cumulativeMeanNormalizedDifference(samples, maxTau)

	minLag := int(float64(sampleRate) / e.maxFreq)
	maxLag := int(float64(sampleRate) / e.minFreq)
	minLag = max(minLag, 2)
	maxLag = min(maxLag, maxTau-1)

	for tau := minLag; tau <= maxLag; tau++ {
		if cmndf[tau] >= e.threshold {
			continue
		}

		// Descend to the bottom of the dip before refining.
		for tau+1 <= maxLag && cmndf[tau+1] < cmndf[tau] {
			tau++
		}

		refinedTau := float64(tau) + parabolicInterpolation(cmndf, tau)
		return float64(sampleRate) / refinedTau, 1.0 - cmndf[tau]
	}

	return 0, 0
}

// cumulativeMeanNormalizedDifference computes the YIN CMNDF for lags
// [0, maxTau). Index 0 is defined as 1.
func cumulativeMeanNormalizedDifference(samples []float64, maxTau int) []float64 {
	diff := make([]float64, maxTau)
	for tau := 1; tau < maxTau; tau++ {
		sum := 0.0
		for i := 0; i+tau < len(samples) && i < maxTau; i++ {
			d := samples[i] - samples[i+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	cmndf := make([]float64, maxTau)
	cmndf[0] = 1.0

	cumulative := 0.0
	for tau := 1; tau < maxTau; tau++ {
		cumulative += diff[tau]
		if cumulative == 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / cumulative
	}

	return cmndf
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
