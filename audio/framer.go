package audio

import "iter"

// Framer slices a buffer into overlapping fixed-size analysis frames.
// A hop of half the frame length gives the standard 50% overlap.
type Framer struct {
	frameLength int
	hopLength   int
}

// NewFramer creates a framer with the given frame and hop lengths in samples.
func NewFramer(frameLength, hopLength int) *Framer {
	return &Framer{
		frameLength: frameLength,
		hopLength:   hopLength,
	}
}

// FrameLength returns the frame length in samples.
func (fr *Framer) FrameLength() int {
	return fr.frameLength
}

// HopLength returns the hop length in samples.
func (fr *Framer) HopLength() int {
	return fr.hopLength
}

// NumFrames returns the number of frames the framer produces for a buffer.
// A buffer shorter than one frame produces zero frames.
func (fr *Framer) NumFrames(buf *Buffer) int {
	if fr.frameLength <= 0 || fr.hopLength <= 0 || buf.Len() < fr.frameLength {
		return 0
	}
	return (buf.Len()-fr.frameLength)/fr.hopLength + 1
}

// Frames returns a lazy, restartable sequence of frames covering
// [0, len-frameLength] in steps of hopLength.
func (fr *Framer) Frames(buf *Buffer) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		numFrames := fr.NumFrames(buf)
		for i := range numFrames {
			frame := Frame{
				buf:    buf,
				offset: i * fr.hopLength,
				length: fr.frameLength,
			}
			if !yield(frame) {
				return
			}
		}
	}
}
