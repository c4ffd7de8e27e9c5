package analyzer

import (
	"fmt"

	"github.com/audiolens/pitchtrace/pitch"
)

// Config controls the analysis pipeline.
type Config struct {
	// Method selects the estimation strategy: "multi" fuses YIN and
	// autocorrelation; "spectral", "yin", and "autocorrelation" run a
	// single method.
	Method string `json:"method"`

	// Preprocess enables trimming, normalization, and pre-emphasis before
	// estimation.
	Preprocess bool `json:"preprocess"`

	// AnalyzeSegments enables per-voiced-segment re-analysis.
	AnalyzeSegments bool `json:"analyze_segments"`

	// MaxSegments bounds how many voiced segments are re-analyzed.
	MaxSegments int `json:"max_segments"`

	// MinSegmentSeconds drops voiced segments shorter than this from
	// re-analysis.
	MinSegmentSeconds float64 `json:"min_segment_seconds"`
}

// Method names accepted by Config.Method.
const (
	MethodMulti           = "multi"
	MethodSpectral        = string(pitch.MethodSpectral)
	MethodYIN             = string(pitch.MethodYIN)
	MethodAutocorrelation = string(pitch.MethodAutocorrelation)
)

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() *Config {
	return &Config{
		Method:            MethodMulti,
		Preprocess:        true,
		AnalyzeSegments:   true,
		MaxSegments:       5,
		MinSegmentSeconds: 0.05,
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.Method {
	case MethodMulti, MethodSpectral, MethodYIN, MethodAutocorrelation:
	default:
		return fmt.Errorf("unknown analysis method %q", c.Method)
	}

	if c.MaxSegments < 0 {
		return fmt.Errorf("max segments must be non-negative, got %d", c.MaxSegments)
	}
	if c.MinSegmentSeconds < 0 {
		return fmt.Errorf("min segment duration must be non-negative, got %f", c.MinSegmentSeconds)
	}

	return nil
}
