package analyzer

import (
	"math"

	"github.com/audiolens/pitchtrace/note"
	"github.com/audiolens/pitchtrace/pitch"
	"gonum.org/v1/gonum/stat"
)

// MatchTolerance is the maximum relative frequency error for two pitches to
// count as the same.
const MatchTolerance = 0.05

// Comparison is the outcome of matching two pitch estimates.
type Comparison struct {
	Match bool `json:"match"`

	// RelativeError is |f1-f2| divided by the larger frequency.
	RelativeError float64 `json:"relative_error"`

	// Semitones is the signed interval from the first pitch to the second.
	Semitones float64 `json:"semitones"`

	// SameNote reports whether both pitches round to the same note name.
	SameNote bool `json:"same_note"`

	// Confidence scales the weaker estimate's confidence down by how far
	// apart the frequencies are.
	Confidence float64 `json:"confidence"`
}

// Compare matches two pitch estimates. Estimates without a detected pitch
// never match; they compare with infinite relative error and zero confidence
// so callers can tell "no pitch" apart from a perfect match.
func Compare(a, b pitch.Estimate) Comparison {
	if !a.Detected() || !b.Detected() {
		return Comparison{RelativeError: math.Inf(1)}
	}

	relErr := math.Abs(a.Frequency-b.Frequency) / math.Max(a.Frequency, b.Frequency)

	return Comparison{
		Match:         relErr <= MatchTolerance,
		RelativeError: relErr,
		Semitones:     note.SemitoneInterval(b.Frequency, a.Frequency),
		SameNote:      note.FrequencyToNote(a.Frequency) == note.FrequencyToNote(b.Frequency),
		Confidence:    math.Min(a.Confidence, b.Confidence) * (1 - relErr),
	}
}

// ComparisonSummary aggregates pairwise comparisons of a set of estimates.
type ComparisonSummary struct {
	Comparisons []Comparison `json:"comparisons"`
	Matches     int          `json:"matches"`
	Pairs       int          `json:"pairs"`

	// MatchRatio is Matches/Pairs, 0 with no pairs.
	MatchRatio float64 `json:"match_ratio"`

	// MeanConfidence is the mean comparison confidence across all pairs.
	MeanConfidence float64 `json:"mean_confidence"`
}

// AllMatch reports whether every pair matched. True for fewer than two
// estimates.
func (s ComparisonSummary) AllMatch() bool {
	return s.Matches == s.Pairs
}

// CompareAll compares every pair of estimates in order.
func CompareAll(estimates []pitch.Estimate) ComparisonSummary {
	var summary ComparisonSummary
	var confidences []float64

	for i := range estimates {
		for j := i + 1; j < len(estimates); j++ {
			c := Compare(estimates[i], estimates[j])
			summary.Comparisons = append(summary.Comparisons, c)
			summary.Pairs++
			if c.Match {
				summary.Matches++
			}
			confidences = append(confidences, c.Confidence)
		}
	}

	if summary.Pairs > 0 {
		summary.MatchRatio = float64(summary.Matches) / float64(summary.Pairs)
		summary.MeanConfidence = stat.Mean(confidences, nil)
	}

	return summary
}
