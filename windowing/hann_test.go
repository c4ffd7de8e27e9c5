package windowing

import (
	"math"
	"testing"
)

func TestHannPeriodic(t *testing.T) {
	h := NewHann(8, false)

	if h.Size() != 8 {
		t.Errorf("expected size 8, got %d", h.Size())
	}
	if h.coefficients[0] != 0 {
		t.Errorf("expected first coefficient 0, got %f", h.coefficients[0])
	}
	// Periodic window: w[size/2] is the peak.
	if math.Abs(h.coefficients[4]-1.0) > 1e-12 {
		t.Errorf("expected peak 1.0 at center, got %f", h.coefficients[4])
	}
}

func TestHannSymmetric(t *testing.T) {
	h := NewHann(9, true)

	for i := range 4 {
		left := h.coefficients[i]
		right := h.coefficients[8-i]
		if math.Abs(left-right) > 1e-12 {
			t.Errorf("coefficient %d: expected symmetry, got %f vs %f", i, left, right)
		}
	}
	if math.Abs(h.coefficients[4]-1.0) > 1e-12 {
		t.Errorf("expected peak 1.0 at center, got %f", h.coefficients[4])
	}
}

func TestHannApply(t *testing.T) {
	h := NewHann(4, false)
	signal := []float64{1, 1, 1, 1}

	windowed := h.Apply(signal)
	if windowed == nil {
		t.Fatal("Apply returned nil for matching length")
	}
	for i, c := range h.coefficients {
		if math.Abs(windowed[i]-c) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, c, windowed[i])
		}
	}

	// Input untouched
	for _, s := range signal {
		if s != 1 {
			t.Error("Apply modified the input signal")
		}
	}
}

func TestHannApplyMismatch(t *testing.T) {
	h := NewHann(4, false)

	if h.Apply([]float64{1, 2}) != nil {
		t.Error("expected nil for length mismatch")
	}
	if err := h.ApplyInPlace([]float64{1, 2}); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4, false)
	signal := []float64{2, 2, 2, 2}

	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace failed: %v", err)
	}
	for i, c := range h.coefficients {
		if math.Abs(signal[i]-2*c) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, 2*c, signal[i])
		}
	}
}
