package pitch

import (
	"math"
	"testing"

	"github.com/audiolens/pitchtrace/audio"
)

// relativeTolerance is the accuracy bar for every estimator on a clean sine.
const relativeTolerance = 0.02

func sineBuffer(t *testing.T, freq float64, sampleRate int, duration float64) *audio.Buffer {
	t.Helper()

	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range n {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	buf, err := audio.NewBuffer(samples, sampleRate)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func silentBuffer(t *testing.T, sampleRate int, duration float64) *audio.Buffer {
	t.Helper()

	buf, err := audio.NewBuffer(make([]float64, int(duration*float64(sampleRate))), sampleRate)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func checkFrequency(t *testing.T, est Estimate, want float64) {
	t.Helper()

	if !est.Detected() {
		t.Fatalf("expected a detected pitch near %f Hz, got none", want)
	}

	relErr := math.Abs(est.Frequency-want) / want
	if relErr > relativeTolerance {
		t.Errorf("expected %f Hz within %.0f%%, got %f Hz (error %.2f%%)",
			want, relativeTolerance*100, est.Frequency, relErr*100)
	}

	if est.Confidence <= 0 || est.Confidence > 1 {
		t.Errorf("expected confidence in (0, 1], got %f", est.Confidence)
	}
}

func TestParabolicInterpolation(t *testing.T) {
	// Symmetric peak: no offset.
	if off := parabolicInterpolation([]float64{1, 2, 1}, 1); off != 0 {
		t.Errorf("expected offset 0 for symmetric peak, got %f", off)
	}

	// Heavier right neighbor pulls the peak right.
	if off := parabolicInterpolation([]float64{1, 2, 1.5}, 1); off <= 0 || off > 0.5 {
		t.Errorf("expected offset in (0, 0.5], got %f", off)
	}

	// Edge peaks cannot be refined.
	if off := parabolicInterpolation([]float64{2, 1, 0}, 0); off != 0 {
		t.Errorf("expected offset 0 at edge, got %f", off)
	}
}
