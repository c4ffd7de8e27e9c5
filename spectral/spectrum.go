package spectral

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/audiolens/pitchtrace/audio"
	"github.com/audiolens/pitchtrace/logging"
	"github.com/audiolens/pitchtrace/windowing"
)

// Spectrogram holds per-frame magnitude spectra of a framed signal.
type Spectrogram struct {
	// Magnitude is a TimeFrames x FreqBins matrix of spectral magnitudes.
	Magnitude [][]float64

	TimeFrames int
	FreqBins   int
	SampleRate int
	FrameSize  int
	HopSize    int

	// FreqResolution is the bin width in Hz.
	FreqResolution float64
}

// BinFrequency returns the center frequency of a bin in Hz.
func (s *Spectrogram) BinFrequency(bin int) float64 {
	return float64(bin) * s.FreqResolution
}

// Analyzer computes short-time magnitude spectra. Frames are independent, so
// they are processed by a small worker pool.
type Analyzer struct {
	fft *FFT
}

// NewAnalyzer creates a new short-time spectrum analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{fft: NewFFT()}
}

// Compute computes Hann-windowed magnitude spectra for every frame the framer
// produces over the buffer. A buffer shorter than one frame yields an error.
func (a *Analyzer) Compute(buf *audio.Buffer, framer *audio.Framer) (*Spectrogram, error) {
	numFrames := framer.NumFrames(buf)
	if numFrames == 0 {
		return nil, fmt.Errorf("signal too short for frame size %d: %w", framer.FrameLength(), audio.ErrEmptySignal)
	}

	frameSize := framer.FrameLength()
	freqBins := frameSize/2 + 1

	magnitude := make([][]float64, numFrames)
	window := windowing.NewHann(frameSize, false)

	type frameJob struct {
		frameIdx int
		offset   int
	}

	numWorkers := optimalWorkerCount(numFrames)
	jobs := make(chan frameJob, numFrames)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse the frame buffer for this worker
			frameBuffer := make([]float64, frameSize)
			samples := buf.Samples()

			for job := range jobs {
				copy(frameBuffer, samples[job.offset:job.offset+frameSize])

				if err := window.ApplyInPlace(frameBuffer); err != nil {
					continue
				}

				magnitude[job.frameIdx] = a.fft.Magnitude(frameBuffer)
			}
		}()
	}

	idx := 0
	for frame := range framer.Frames(buf) {
		jobs <- frameJob{frameIdx: idx, offset: frame.Offset()}
		idx++
	}
	close(jobs)
	wg.Wait()

	logging.Debug("computed short-time spectra", logging.Fields{
		"frames":  numFrames,
		"bins":    freqBins,
		"workers": numWorkers,
	})

	return &Spectrogram{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     buf.SampleRate(),
		FrameSize:      frameSize,
		HopSize:        framer.HopLength(),
		FreqResolution: float64(buf.SampleRate()) / float64(frameSize),
	}, nil
}

// optimalWorkerCount sizes the worker pool to the workload
func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	if numFrames < 100 {
		return max(min(numCPU/2, numFrames), 1)
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
