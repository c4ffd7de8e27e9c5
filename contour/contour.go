// Package contour tracks how pitch moves over time inside a region of a
// recording, producing a time series of pitch points and summary statistics
// of the melodic movement.
package contour

import (
	"fmt"
	"runtime"

	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
	"github.com/audiolens/pitchtrace/note"
	"github.com/audiolens/pitchtrace/pitch"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Silent is the note label of a contour point with no detected pitch.
const Silent = "Silent"

// DefaultFrameSeconds is the contour analysis frame length in seconds.
// Frames overlap by half their length.
const DefaultFrameSeconds = 0.1

// Point is one sample of the pitch contour.
type Point struct {
	// Time is the frame midpoint in seconds, relative to the start of the
	// whole recording.
	Time float64 `json:"time"`

	// Frequency is the frame's pitch in Hz, 0 when silent.
	Frequency float64 `json:"frequency"`

	Confidence float64 `json:"confidence"`

	// Note is the scientific pitch name, or Silent.
	Note string `json:"note"`

	// Interval is the signed distance in semitones from the first frame's
	// pitch. Zero when either end of the interval is silent.
	Interval float64 `json:"interval"`
}

// Statistics summarizes the melodic movement of a contour. Frequency stats
// cover voiced frames only; interval and confidence stats cover every frame,
// counting silent frames as interval 0 and confidence 0.
type Statistics struct {
	MinFrequency  float64 `json:"min_frequency"`
	MaxFrequency  float64 `json:"max_frequency"`
	MeanFrequency float64 `json:"mean_frequency"`

	MinInterval   float64 `json:"min_interval"`
	MaxInterval   float64 `json:"max_interval"`
	IntervalRange float64 `json:"interval_range"`

	MeanConfidence float64 `json:"mean_confidence"`

	VoicedFrames int `json:"voiced_frames"`
	TotalFrames  int `json:"total_frames"`
}

// Contour is the analyzed pitch trajectory of one time region.
type Contour struct {
	Points     []Point    `json:"points"`
	Statistics Statistics `json:"statistics"`
}

// Analyzer computes pitch contours using framewise spectral peak estimation.
type Analyzer struct {
	estimator    *pitch.SpectralPeakEstimator
	frameSeconds float64
}

// NewAnalyzer creates a contour analyzer with the default frame length.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithFrame(DefaultFrameSeconds)
}

// NewAnalyzerWithFrame creates a contour analyzer with a custom frame length
// in seconds.
func NewAnalyzerWithFrame(frameSeconds float64) *Analyzer {
	return &Analyzer{
		estimator:    pitch.NewSpectralPeakEstimator(),
		frameSeconds: frameSeconds,
	}
}

// Analyze computes the pitch contour of [startTime, endTime) seconds of the
// buffer. Times outside the buffer are clamped; a range with end <= start is
// rejected before any analysis runs.
func (a *Analyzer) Analyze(buf *audio.Buffer, startTime, endTime float64) (*Contour, error) {
	if endTime <= startTime {
		return nil, fmt.Errorf("%w: start %.3fs, end %.3fs", audio.ErrInvalidRange, startTime, endTime)
	}

	segment, err := buf.Segment(startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("extracting contour region: %w", err)
	}

	segmentStart := max(startTime, 0)

	frameLength := int(a.frameSeconds * float64(segment.SampleRate()))
	frameLength = min(frameLength, segment.Len())
	if frameLength < 2 {
		return nil, fmt.Errorf("contour region too short: %w", audio.ErrEmptySignal)
	}

	framer := audio.NewFramer(frameLength, max(frameLength/2, 1))
	numFrames := framer.NumFrames(segment)

	points := make([]Point, numFrames)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	idx := 0
	for frame := range framer.Frames(segment) {
		i := idx
		g.Go(func() error {
			frameBuf, err := audio.NewBuffer(frame.Samples(), segment.SampleRate())
			if err != nil {
				return fmt.Errorf("framing contour region: %w", err)
			}

			est := a.estimator.Estimate(frameBuf)

			p := Point{
				Time:       segmentStart + frame.MidTime(),
				Frequency:  est.Frequency,
				Confidence: est.Confidence,
				Note:       Silent,
			}
			if est.Detected() {
				p.Note = note.FrequencyToNote(est.Frequency)
			}

			points[i] = p
			return nil
		})
		idx++
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Intervals are measured against the first frame's pitch.
	if len(points) > 0 {
		reference := points[0].Frequency
		for i := range points {
			points[i].Interval = note.SemitoneInterval(points[i].Frequency, reference)
		}
	}

	c := &Contour{
		Points:     points,
		Statistics: computeStatistics(points),
	}

	logging.Debug("contour analysis complete", logging.Fields{
		"frames": len(points),
		"voiced": c.Statistics.VoicedFrames,
	})

	return c, nil
}

func computeStatistics(points []Point) Statistics {
	stats := Statistics{TotalFrames: len(points)}
	if len(points) == 0 {
		return stats
	}

	var freqs []float64
	intervals := make([]float64, len(points))
	confidences := make([]float64, len(points))

	for i, p := range points {
		intervals[i] = p.Interval
		confidences[i] = p.Confidence
		if p.Frequency > 0 {
			freqs = append(freqs, p.Frequency)
		}
	}

	stats.VoicedFrames = len(freqs)
	stats.MinInterval = floats.Min(intervals)
	stats.MaxInterval = floats.Max(intervals)
	stats.IntervalRange = stats.MaxInterval - stats.MinInterval
	stats.MeanConfidence = stat.Mean(confidences, nil)

	if len(freqs) > 0 {
		stats.MinFrequency = floats.Min(freqs)
		stats.MaxFrequency = floats.Max(freqs)
		stats.MeanFrequency = stat.Mean(freqs, nil)
	}

	return stats
}
