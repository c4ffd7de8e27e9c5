// Package analyzer ties the pipeline together: preprocessing, multi-method
// pitch estimation with fusion, voiced segment re-analysis, and musical
// interpretation of the results.
package analyzer

import (
	"fmt"

	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
	"github.com/audiolens/pitchtrace/note"
	"github.com/audiolens/pitchtrace/pitch"
	"github.com/audiolens/pitchtrace/preprocess"
	"github.com/audiolens/pitchtrace/temporal"
	"golang.org/x/sync/errgroup"
)

// Fixed confidences reported by the single-method strategies, reflecting the
// same method reliabilities the fuser uses as weights.
const (
	yinMethodConfidence      = 0.8
	autocorrMethodConfidence = 0.6
)

// SegmentResult is the analysis of one voiced segment.
type SegmentResult struct {
	Segment temporal.Segment `json:"segment"`
	Pitch   pitch.Estimate   `json:"pitch"`
	Note    string           `json:"note"`
}

// Result is the outcome of analyzing one buffer.
type Result struct {
	// Pitch is the overall estimate for the buffer.
	Pitch pitch.Estimate `json:"pitch"`

	// Note is the musical name of the overall pitch, or "Unknown".
	Note string `json:"note"`

	// Segments holds per-voiced-segment estimates when segment analysis
	// is enabled.
	Segments []SegmentResult `json:"segments,omitempty"`
}

// Analyzer runs the configured pitch analysis pipeline.
type Analyzer struct {
	config *Config

	processor *preprocess.Processor
	detector  *temporal.VoicedDetector

	spectral *pitch.SpectralPeakEstimator
	autocorr *pitch.AutocorrelationEstimator
	yin      *pitch.DifferenceFunctionEstimator
	fuser    *pitch.Fuser
}

// New creates an analyzer. A nil config uses DefaultConfig.
func New(config *Config) (*Analyzer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer config: %w", err)
	}

	return &Analyzer{
		config:    config,
		processor: preprocess.NewProcessor(),
		detector:  temporal.NewVoicedDetector(),
		spectral:  pitch.NewSpectralPeakEstimator(),
		autocorr:  pitch.NewAutocorrelationEstimator(),
		yin:       pitch.NewDifferenceFunctionEstimator(),
		fuser:     pitch.NewFuser(),
	}, nil
}

// Analyze runs the full pipeline on a buffer.
func (a *Analyzer) Analyze(buf *audio.Buffer) (*Result, error) {
	if a.config.Preprocess {
		buf = a.processor.Process(buf)
	}

	overall := a.estimate(buf)

	result := &Result{
		Pitch: overall,
		Note:  note.FrequencyToNote(overall.Frequency),
	}

	if a.config.AnalyzeSegments {
		segments, err := a.analyzeSegments(buf)
		if err != nil {
			return nil, err
		}
		result.Segments = segments
	}

	logging.Info("analysis complete", logging.Fields{
		"frequency":  overall.Frequency,
		"confidence": overall.Confidence,
		"note":       result.Note,
		"segments":   len(result.Segments),
	})

	return result, nil
}

// estimate runs the configured estimation strategy on a buffer.
func (a *Analyzer) estimate(buf *audio.Buffer) pitch.Estimate {
	switch a.config.Method {
	case MethodSpectral:
		return a.spectral.Estimate(buf)

	case MethodYIN:
		est := a.yin.Estimate(buf)
		if est.Detected() {
			est.Confidence = yinMethodConfidence
		}
		return est

	case MethodAutocorrelation:
		est := a.autocorr.Estimate(buf)
		if est.Detected() {
			est.Confidence = autocorrMethodConfidence
		}
		return est

	default: // MethodMulti
		return a.estimateMulti(buf)
	}
}

// estimateMulti runs all three estimators concurrently and fuses their
// results.
func (a *Analyzer) estimateMulti(buf *audio.Buffer) pitch.Estimate {
	var spectralEst, yinEst, autocorrEst pitch.Estimate

	g := new(errgroup.Group)
	g.Go(func() error {
		spectralEst = a.spectral.Estimate(buf)
		return nil
	})
	g.Go(func() error {
		yinEst = a.yin.Estimate(buf)
		return nil
	})
	g.Go(func() error {
		autocorrEst = a.autocorr.Estimate(buf)
		return nil
	})
	g.Wait() //nolint:errcheck // estimators report no errors

	return a.fuser.Fuse(spectralEst, yinEst, autocorrEst)
}

// analyzeSegments re-runs estimation on each voiced segment, bounded by the
// configured segment count and minimum duration.
func (a *Analyzer) analyzeSegments(buf *audio.Buffer) ([]SegmentResult, error) {
	if a.config.MaxSegments == 0 {
		return nil, nil
	}

	segments := a.detector.Detect(buf)

	selected := make([]temporal.Segment, 0, a.config.MaxSegments)
	for _, seg := range segments {
		if seg.Duration() < a.config.MinSegmentSeconds {
			continue
		}
		selected = append(selected, seg)
		if len(selected) == a.config.MaxSegments {
			break
		}
	}

	if len(selected) == 0 {
		return nil, nil
	}

	results := make([]SegmentResult, len(selected))

	g := new(errgroup.Group)
	g.SetLimit(a.config.MaxSegments)

	for i, seg := range selected {
		g.Go(func() error {
			segBuf, err := buf.Segment(seg.Start, seg.End)
			if err != nil {
				return fmt.Errorf("extracting segment [%.3f, %.3f): %w", seg.Start, seg.End, err)
			}

			est := a.estimate(segBuf)
			results[i] = SegmentResult{
				Segment: seg,
				Pitch:   est,
				Note:    note.FrequencyToNote(est.Frequency),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Keep only segments where re-analysis actually found a pitch.
	detected := results[:0]
	for _, r := range results {
		if r.Pitch.Detected() {
			detected = append(detected, r)
		}
	}

	return detected, nil
}
