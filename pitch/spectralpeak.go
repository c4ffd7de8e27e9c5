package pitch

import (
	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
	"github.com/audiolens/pitchtrace/spectral"
	"gonum.org/v1/gonum/stat"
)

// SpectralPeakEstimator estimates pitch from the dominant spectral peak of
// each analysis frame. Per-frame peaks inside the search band are refined by
// parabolic interpolation and aggregated into one magnitude-weighted estimate.
type SpectralPeakEstimator struct {
	analyzer *spectral.Analyzer
	framer   *audio.Framer
	minFreq  float64
	maxFreq  float64
}

// NewSpectralPeakEstimator creates a spectral peak estimator with the default
// frame layout and search band.
func NewSpectralPeakEstimator() *SpectralPeakEstimator {
	return &SpectralPeakEstimator{
		analyzer: spectral.NewAnalyzer(),
		framer:   audio.NewFramer(DefaultFrameLength, DefaultHopLength),
		minFreq:  MinFrequency,
		maxFreq:  MaxFrequency,
	}
}

// Method returns the estimator identifier.
func (e *SpectralPeakEstimator) Method() Method {
	return MethodSpectral
}

// Estimate returns the magnitude-weighted mean of per-frame peak frequencies.
// A buffer with no in-band energy yields a zero estimate.
func (e *SpectralPeakEstimator) Estimate(buf *audio.Buffer) Estimate {
	framer := e.framer
	if framer.NumFrames(buf) == 0 {
		// Short buffer: analyze it as a single frame.
		framer = audio.NewFramer(buf.Len(), buf.Len())
	}

	spec, err := e.analyzer.Compute(buf, framer)
	if err != nil {
		logging.Debug("spectral peak estimation skipped", logging.Fields{"error": err.Error()})
		return Estimate{Method: MethodSpectral}
	}

	var weightedFreqSum, weightSum float64
	var confidences []float64

	for _, mags := range spec.Magnitude {
		freq, conf, ok := e.framePeak(spec, mags)
		if !ok {
			continue
		}

		weight := conf * frameMax(mags)
		weightedFreqSum += freq * weight
		weightSum += weight
		confidences = append(confidences, conf)
	}

	if weightSum == 0 || len(confidences) == 0 {
		return Estimate{Method: MethodSpectral}
	}

	return Estimate{
		Frequency:  weightedFreqSum / weightSum,
		Confidence: stat.Mean(confidences, nil),
		Method:     MethodSpectral,
	}
}

// framePeak finds the strongest in-band spectral peak of one frame.
func (e *SpectralPeakEstimator) framePeak(spec *spectral.Spectrogram, mags []float64) (freq, confidence float64, ok bool) {
	minBin := int(e.minFreq / spec.FreqResolution)
	maxBin := int(e.maxFreq/spec.FreqResolution) + 1

	minBin = max(minBin, 1)
	maxBin = min(maxBin, len(mags)-1)
	if minBin >= maxBin {
		return 0, 0, false
	}

	peakBin := -1
	peakMag := 0.0
	for bin := minBin; bin <= maxBin; bin++ {
		if mags[bin] > peakMag {
			peakMag = mags[bin]
			peakBin = bin
		}
	}

	if peakBin < 0 || peakMag <= 0 {
		return 0, 0, false
	}

	offset := parabolicInterpolation(mags, peakBin)
	freq = (float64(peakBin) + offset) * spec.FreqResolution

	// Confidence is the in-band peak relative to the frame's overall
	// strongest component: 1.0 when the pitch dominates the frame.
	maxMag := frameMax(mags)
	if maxMag <= 0 {
		return 0, 0, false
	}

	return freq, peakMag / maxMag, true
}

func frameMax(mags []float64) float64 {
	m := 0.0
	for _, v := range mags {
		if v > m {
			m = v
		}
	}
	return m
}
