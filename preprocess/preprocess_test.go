package preprocess

import (
	"math"
	"testing"

	"github.com/audiolens/pitchtrace/audio"
)

func TestTrim(t *testing.T) {
	sampleRate := 44100

	// Half a second of silence around a half-second tone.
	samples := make([]float64, 3*sampleRate/2)
	for i := sampleRate / 2; i < sampleRate; i++ {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	buf, _ := audio.NewBuffer(samples, sampleRate)

	trimmed := NewProcessor().Trim(buf)
	if trimmed.Len() >= buf.Len() {
		t.Errorf("expected trimming to shorten the buffer, got %d >= %d", trimmed.Len(), buf.Len())
	}
	if math.Abs(trimmed.Seconds()-0.5) > 0.05 {
		t.Errorf("expected ~0.5s after trimming, got %f", trimmed.Seconds())
	}
}

func TestTrimKeepsQuietSignal(t *testing.T) {
	// Everything is below the threshold relative to nothing: a silent
	// buffer must come back unchanged instead of empty.
	buf, _ := audio.NewBuffer(make([]float64, 44100), 44100)

	trimmed := NewProcessor().Trim(buf)
	if trimmed.Len() != buf.Len() {
		t.Errorf("expected silent buffer unchanged, got %d samples", trimmed.Len())
	}
}

func TestTrimMinimumDuration(t *testing.T) {
	sampleRate := 44100

	// A 50 ms click inside a second of silence: trimming would leave less
	// than the minimum, so the original is kept.
	samples := make([]float64, sampleRate)
	for i := sampleRate / 2; i < sampleRate/2+sampleRate/20; i++ {
		samples[i] = 0.9
	}
	buf, _ := audio.NewBuffer(samples, sampleRate)

	trimmed := NewProcessor().Trim(buf)
	if trimmed.Len() != buf.Len() {
		t.Errorf("expected sub-minimum trim to fall back to the original, got %d samples", trimmed.Len())
	}
}

func TestNormalize(t *testing.T) {
	buf, _ := audio.NewBuffer([]float64{0.1, -0.5, 0.25}, 44100)

	normalized := NewProcessor().Normalize(buf)

	peak := 0.0
	for _, s := range normalized.Samples() {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 1e-12 {
		t.Errorf("expected peak 1.0 after normalization, got %f", peak)
	}

	// Relative shape preserved.
	if math.Abs(normalized.Samples()[0]-0.2) > 1e-12 {
		t.Errorf("expected first sample 0.2, got %f", normalized.Samples()[0])
	}

	// Input untouched.
	if buf.Samples()[0] != 0.1 {
		t.Error("Normalize modified the input buffer")
	}
}

func TestNormalizeSilence(t *testing.T) {
	buf, _ := audio.NewBuffer(make([]float64, 100), 44100)

	normalized := NewProcessor().Normalize(buf)
	if normalized != buf {
		t.Error("expected silent buffer returned unchanged")
	}
}

func TestPreEmphasis(t *testing.T) {
	buf, _ := audio.NewBuffer([]float64{1.0, 1.0, 0.5, 0.0}, 44100)

	filtered := NewProcessor().PreEmphasis(buf)
	want := []float64{1.0, 1.0 - 0.97, 0.5 - 0.97, 0.0 - 0.97*0.5}

	for i, w := range want {
		if math.Abs(filtered.Samples()[i]-w) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, w, filtered.Samples()[i])
		}
	}
}

func TestProcessPreservesPitch(t *testing.T) {
	sampleRate := 44100
	samples := make([]float64, sampleRate)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	buf, _ := audio.NewBuffer(samples, sampleRate)

	processed := NewProcessor().Process(buf)
	if processed.SampleRate() != sampleRate {
		t.Errorf("expected sample rate preserved, got %d", processed.SampleRate())
	}
	if processed.Len() == 0 {
		t.Fatal("expected non-empty output")
	}

	// Zero crossings of the fundamental survive the chain: count them as a
	// cheap frequency check.
	crossings := 0
	prev := processed.Samples()[0]
	for _, s := range processed.Samples()[1:] {
		if (prev < 0 && s >= 0) || (prev >= 0 && s < 0) {
			crossings++
		}
		prev = s
	}

	gotFreq := float64(crossings) / 2.0 / processed.Seconds()
	if math.Abs(gotFreq-440) > 10 {
		t.Errorf("expected ~440 Hz after processing, got %f", gotFreq)
	}
}
