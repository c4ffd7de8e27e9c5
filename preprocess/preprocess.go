// Package preprocess conditions raw audio before pitch analysis: silence
// trimming, peak normalization, and pre-emphasis filtering.
package preprocess

import (
	"math"

	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
)

const (
	// TrimThresholdDB is how far under the peak a sample may sit before it
	// counts as silence at the edges.
	TrimThresholdDB = 20.0

	// MinTrimmedSeconds guards against trimming a quiet recording down to
	// nothing; shorter results fall back to the untrimmed signal.
	MinTrimmedSeconds = 0.1

	// PreEmphasisCoefficient is the first-order high-pass coefficient.
	PreEmphasisCoefficient = 0.97
)

// Processor applies the standard conditioning chain: trim, normalize,
// pre-emphasis. Each step is also available individually.
type Processor struct {
	trimThresholdDB float64
	preEmphasis     float64
}

// NewProcessor creates a processor with the default parameters.
func NewProcessor() *Processor {
	return &Processor{
		trimThresholdDB: TrimThresholdDB,
		preEmphasis:     PreEmphasisCoefficient,
	}
}

// Process runs the full conditioning chain and returns a new buffer. The
// input buffer is never modified.
func (p *Processor) Process(buf *audio.Buffer) *audio.Buffer {
	trimmed := p.Trim(buf)
	normalized := p.Normalize(trimmed)
	emphasized := p.PreEmphasis(normalized)

	logging.Debug("preprocessing complete", logging.Fields{
		"input_seconds":  buf.Seconds(),
		"output_seconds": emphasized.Seconds(),
	})

	return emphasized
}

// Trim removes leading and trailing samples more than the trim threshold
// below the peak. If the trimmed result would be shorter than the minimum,
// the original buffer is returned unchanged.
func (p *Processor) Trim(buf *audio.Buffer) *audio.Buffer {
	samples := buf.Samples()

	peak := peakAmplitude(samples)
	if peak == 0 {
		return buf
	}

	threshold := peak * math.Pow(10, -p.trimThresholdDB/20)

	start := 0
	for start < len(samples) && math.Abs(samples[start]) < threshold {
		start++
	}

	end := len(samples)
	for end > start && math.Abs(samples[end-1]) < threshold {
		end--
	}

	minSamples := int(MinTrimmedSeconds * float64(buf.SampleRate()))
	if end-start < minSamples {
		return buf
	}

	trimmed, err := audio.NewBuffer(samples[start:end], buf.SampleRate())
	if err != nil {
		return buf
	}

	return trimmed
}

// Normalize scales the signal so the peak amplitude is 1.0. Silent input is
// returned unchanged.
func (p *Processor) Normalize(buf *audio.Buffer) *audio.Buffer {
	samples := buf.Samples()

	peak := peakAmplitude(samples)
	if peak == 0 || peak == 1.0 {
		return buf
	}

	normalized := make([]float64, len(samples))
	for i, s := range samples {
		normalized[i] = s / peak
	}

	out, err := audio.NewBuffer(normalized, buf.SampleRate())
	if err != nil {
		return buf
	}

	return out
}

// PreEmphasis applies the first-order high-pass y[n] = x[n] - a*x[n-1],
// boosting the harmonics that pitch estimation relies on.
func (p *Processor) PreEmphasis(buf *audio.Buffer) *audio.Buffer {
	samples := buf.Samples()

	filtered := make([]float64, len(samples))
	filtered[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		filtered[i] = samples[i] - p.preEmphasis*samples[i-1]
	}

	out, err := audio.NewBuffer(filtered, buf.SampleRate())
	if err != nil {
		return buf
	}

	return out
}

func peakAmplitude(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
