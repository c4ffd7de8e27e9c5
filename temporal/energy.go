package temporal

import (
	"math"

	"github.com/audiolens/pitchtrace/audio"
)

// Envelope is a framewise energy track. Values[i] is the RMS of the frame
// starting at sample i*hop; Time(i) gives the frame start in seconds.
type Envelope struct {
	Values     []float64
	HopLength  int
	SampleRate int
}

// Time returns the start time of frame i in seconds.
func (e *Envelope) Time(i int) float64 {
	return float64(i*e.HopLength) / float64(e.SampleRate)
}

// ComputeRMS computes the framewise root-mean-square energy envelope of a
// buffer. A buffer shorter than one frame produces an empty envelope.
func ComputeRMS(buf *audio.Buffer, framer *audio.Framer) *Envelope {
	env := &Envelope{
		HopLength:  framer.HopLength(),
		SampleRate: buf.SampleRate(),
	}

	numFrames := framer.NumFrames(buf)
	if numFrames == 0 {
		return env
	}

	env.Values = make([]float64, 0, numFrames)
	for frame := range framer.Frames(buf) {
		env.Values = append(env.Values, rms(frame.Samples()))
	}

	return env
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}

	return math.Sqrt(sum / float64(len(samples)))
}
