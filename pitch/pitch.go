package pitch

import "github.com/audiolens/pitchtrace/audio"

// Method identifies the algorithm that produced an estimate.
type Method string

const (
	MethodSpectral        Method = "spectral"
	MethodAutocorrelation Method = "autocorrelation"
	MethodYIN             Method = "yin"
	MethodFused           Method = "fused"
)

// Default analysis parameters. Frame and hop sizes follow the usual
// 2048/512 short-time analysis layout at speech/music sample rates.
const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512

	// MinFrequency and MaxFrequency bound the pitch search band in Hz.
	MinFrequency = 80.0
	MaxFrequency = 2000.0
)

// Estimate is one pitch measurement. A frequency of 0 with confidence 0
// means the method detected no pitch; it is not an error.
type Estimate struct {
	// Frequency is the estimated fundamental in Hz, 0 if undetected.
	Frequency float64 `json:"frequency"`

	// Confidence is the method's self-reported reliability in [0, 1].
	Confidence float64 `json:"confidence"`

	Method Method `json:"method"`
}

// Detected reports whether the estimate carries a usable frequency.
func (e Estimate) Detected() bool {
	return e.Frequency > 0
}

// Estimator estimates a single representative pitch for a whole buffer.
type Estimator interface {
	Estimate(buf *audio.Buffer) Estimate
	Method() Method
}

// parabolicInterpolation refines a discrete peak position by fitting a
// parabola through the peak and its neighbors. Returns the fractional
// offset in [-0.5, 0.5] to add to the peak index.
func parabolicInterpolation(values []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(values)-1 {
		return 0
	}

	y1 := values[peakIdx-1]
	y2 := values[peakIdx]
	y3 := values[peakIdx+1]

	denom := y1 - 2*y2 + y3
	if denom == 0 {
		return 0
	}

	offset := 0.5 * (y1 - y3) / denom
	if offset > 0.5 {
		offset = 0.5
	} else if offset < -0.5 {
		offset = -0.5
	}

	return offset
}
