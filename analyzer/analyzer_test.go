package analyzer

import (
	"math"
	"testing"

	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/pitch"
)

func sineBuffer(t *testing.T, freq float64, sampleRate int, duration float64) *audio.Buffer {
	t.Helper()

	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range n {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	buf, err := audio.NewBuffer(samples, sampleRate)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func checkNear(t *testing.T, got, want, relTol float64) {
	t.Helper()
	if math.Abs(got-want)/want > relTol {
		t.Errorf("expected %f within %.0f%%, got %f", want, relTol*100, got)
	}
}

func TestAnalyzeMulti(t *testing.T) {
	a, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(sineBuffer(t, 440, 44100, 1.0))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkNear(t, result.Pitch.Frequency, 440, 0.02)
	if result.Note != "A4" {
		t.Errorf("expected note A4, got %q", result.Note)
	}
	if result.Pitch.Method != pitch.MethodFused {
		t.Errorf("expected fused method, got %q", result.Pitch.Method)
	}

	// All three estimators agree on a pure sine, so the fused confidence is
	// the mean of spectral's own confidence (~1 for a dominant sine) and the
	// YIN/autocorrelation weights: (1 + 0.8 + 0.6)/3. A fusion missing the
	// spectral estimate would land at 0.7 instead.
	if math.Abs(result.Pitch.Confidence-0.8) > 0.01 {
		t.Errorf("expected three-way fused confidence near 0.8, got %f", result.Pitch.Confidence)
	}

	if len(result.Segments) == 0 {
		t.Error("expected at least one voiced segment for a steady tone")
	}
}

func TestAnalyzeNoteRoundTrip(t *testing.T) {
	a, _ := New(nil)

	tests := []struct {
		note string
		freq float64
	}{
		{"A4", 440.0},
		{"C5", 523.25},
		{"E5", 659.25},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			result, err := a.Analyze(sineBuffer(t, tt.freq, 44100, 1.0))
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}

			checkNear(t, result.Pitch.Frequency, tt.freq, 0.02)
			if result.Note != tt.note {
				t.Errorf("expected note %q, got %q (%f Hz)", tt.note, result.Note, result.Pitch.Frequency)
			}
		})
	}
}

func TestAnalyzeSingleMethods(t *testing.T) {
	tests := []struct {
		method         string
		wantMethod     pitch.Method
		wantConfidence float64
	}{
		{MethodYIN, pitch.MethodYIN, 0.8},
		{MethodAutocorrelation, pitch.MethodAutocorrelation, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			a, err := New(&Config{Method: tt.method})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			result, err := a.Analyze(sineBuffer(t, 440, 44100, 1.0))
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}

			checkNear(t, result.Pitch.Frequency, 440, 0.02)
			if result.Pitch.Method != tt.wantMethod {
				t.Errorf("expected method %q, got %q", tt.wantMethod, result.Pitch.Method)
			}
			if result.Pitch.Confidence != tt.wantConfidence {
				t.Errorf("expected fixed confidence %f, got %f", tt.wantConfidence, result.Pitch.Confidence)
			}
		})
	}
}

func TestAnalyzeSpectralMethod(t *testing.T) {
	a, err := New(&Config{Method: MethodSpectral})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := a.Analyze(sineBuffer(t, 880, 44100, 1.0))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	checkNear(t, result.Pitch.Frequency, 880, 0.02)
	if result.Note != "A5" {
		t.Errorf("expected note A5, got %q", result.Note)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	a, _ := New(nil)

	buf, _ := audio.NewBuffer(make([]float64, 44100), 44100)
	result, err := a.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Pitch.Detected() {
		t.Errorf("expected no pitch for silence, got %f Hz", result.Pitch.Frequency)
	}
	if result.Note != "Unknown" {
		t.Errorf("expected note Unknown, got %q", result.Note)
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected no voiced segments, got %d", len(result.Segments))
	}
}

func TestAnalyzeSegmentLimit(t *testing.T) {
	sampleRate := 44100

	// Ten 0.2s tones separated by 0.2s of silence.
	samples := make([]float64, 4*sampleRate)
	toneLen := sampleRate / 5
	for k := range 10 {
		start := k * 2 * toneLen
		for i := range toneLen {
			samples[start+i] = 0.5 * math.Sin(2*math.Pi*440*float64(start+i)/float64(sampleRate))
		}
	}
	buf, _ := audio.NewBuffer(samples, sampleRate)

	cfg := DefaultConfig()
	cfg.Preprocess = false
	a, _ := New(cfg)

	result, err := a.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Segments) != cfg.MaxSegments {
		t.Errorf("expected segment analysis capped at %d, got %d", cfg.MaxSegments, len(result.Segments))
	}
	for i, seg := range result.Segments {
		checkNear(t, seg.Pitch.Frequency, 440, 0.02)
		if seg.Note != "A4" {
			t.Errorf("segment %d: expected A4, got %q", i, seg.Note)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default ok", *DefaultConfig(), false},
		{"spectral ok", Config{Method: MethodSpectral}, false},
		{"unknown method", Config{Method: "cepstrum"}, true},
		{"negative segments", Config{Method: MethodMulti, MaxSegments: -1}, true},
		{"negative duration", Config{Method: MethodMulti, MinSegmentSeconds: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
