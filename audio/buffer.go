package audio

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for precondition failures. Estimators never return these;
// they degrade to zero-valued results on empty or silent input. Only
// constructors and extractors that cannot produce a buffer at all report them.
var (
	// ErrInvalidRange indicates a time range with end <= start or a
	// non-positive duration.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrEmptySignal indicates a buffer with no samples.
	ErrEmptySignal = errors.New("empty signal")
)

// Buffer is an immutable view of mono audio samples with amplitudes in
// [-1, 1] plus a sample rate. Estimators borrow it read-only; the caller
// retains ownership of the underlying slice.
type Buffer struct {
	samples    []float64
	sampleRate int
}

// NewBuffer wraps samples at the given sample rate.
func NewBuffer(samples []float64, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	return &Buffer{samples: samples, sampleRate: sampleRate}, nil
}

// Samples returns the underlying sample slice. Callers must not mutate it.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Duration returns the buffer duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(len(b.samples)) / float64(b.sampleRate) * float64(time.Second))
}

// Seconds returns the buffer duration in seconds.
func (b *Buffer) Seconds() float64 {
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// Segment returns a view of the buffer restricted to [startTime, endTime)
// seconds. Out-of-bounds times are clamped to the buffer. The returned buffer
// shares storage with the parent.
func (b *Buffer) Segment(startTime, endTime float64) (*Buffer, error) {
	if endTime <= startTime {
		return nil, fmt.Errorf("%w: start %.3fs, end %.3fs", ErrInvalidRange, startTime, endTime)
	}

	startSample := int(startTime * float64(b.sampleRate))
	endSample := int(endTime * float64(b.sampleRate))

	startSample = max(startSample, 0)
	endSample = min(endSample, len(b.samples))

	if startSample >= endSample {
		return nil, fmt.Errorf("%w: range [%.3fs, %.3fs) is outside the buffer", ErrInvalidRange, startTime, endTime)
	}

	return &Buffer{
		samples:    b.samples[startSample:endSample],
		sampleRate: b.sampleRate,
	}, nil
}

// Frame is a contiguous fixed-length view into a parent buffer. It carries no
// ownership of the data, only an offset and length.
type Frame struct {
	buf    *Buffer
	offset int
	length int
}

// Samples returns the frame's sample slice. Callers must not mutate it.
func (f Frame) Samples() []float64 {
	return f.buf.samples[f.offset : f.offset+f.length]
}

// Offset returns the frame's starting sample index in the parent buffer.
func (f Frame) Offset() int {
	return f.offset
}

// Len returns the frame length in samples.
func (f Frame) Len() int {
	return f.length
}

// StartTime returns the time of the frame's first sample in seconds.
func (f Frame) StartTime() float64 {
	return float64(f.offset) / float64(f.buf.sampleRate)
}

// MidTime returns the frame's temporal midpoint in seconds.
func (f Frame) MidTime() float64 {
	return (float64(f.offset) + float64(f.length)/2.0) / float64(f.buf.sampleRate)
}
