package temporal

import (
	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
	"gonum.org/v1/gonum/stat"
)

// Segment is a half-open voiced region [Start, End) in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// VoicedDetector locates regions whose energy rises above an adaptive
// threshold derived from the mean RMS of the whole signal.
type VoicedDetector struct {
	framer *audio.Framer

	// thresholdRatio scales the mean RMS into the voiced/unvoiced cutoff.
	thresholdRatio float64

	// minDuration drops segments shorter than this many seconds.
	minDuration float64
}

// DefaultVoicedDetectorConfig values.
const (
	DefaultFrameLength    = 2048
	DefaultHopLength      = 512
	DefaultThresholdRatio = 0.1
	DefaultMinDuration    = 0.1
)

// NewVoicedDetector creates a detector with the default frame layout,
// threshold ratio, and minimum segment duration.
func NewVoicedDetector() *VoicedDetector {
	return &VoicedDetector{
		framer:         audio.NewFramer(DefaultFrameLength, DefaultHopLength),
		thresholdRatio: DefaultThresholdRatio,
		minDuration:    DefaultMinDuration,
	}
}

// Detect returns the voiced segments of a buffer, in order, each at least the
// minimum duration. A uniformly quiet or too-short buffer yields no segments.
func (d *VoicedDetector) Detect(buf *audio.Buffer) []Segment {
	env := ComputeRMS(buf, d.framer)
	if len(env.Values) == 0 {
		return nil
	}

	threshold := stat.Mean(env.Values, nil) * d.thresholdRatio
	if threshold <= 0 {
		return nil
	}

	var segments []Segment
	inSegment := false
	segmentStart := 0.0

	for i, v := range env.Values {
		voiced := v > threshold

		switch {
		case voiced && !inSegment:
			inSegment = true
			segmentStart = env.Time(i)
		case !voiced && inSegment:
			inSegment = false
			segments = d.appendSegment(segments, segmentStart, env.Time(i))
		}
	}

	if inSegment {
		segments = d.appendSegment(segments, segmentStart, buf.Seconds())
	}

	logging.Debug("voiced segment detection complete", logging.Fields{
		"segments":  len(segments),
		"threshold": threshold,
	})

	return segments
}

func (d *VoicedDetector) appendSegment(segments []Segment, start, end float64) []Segment {
	if end-start < d.minDuration {
		return segments
	}
	return append(segments, Segment{Start: start, End: end})
}
