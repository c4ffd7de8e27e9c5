// Package note converts frequencies to musical pitch notation using twelve
// tone equal temperament with A4 = 440 Hz.
package note

import (
	"fmt"
	"math"
)

// ReferenceFrequency is the frequency of A4 in Hz.
const ReferenceFrequency = 440.0

// referenceMIDI is the MIDI note number of A4.
const referenceMIDI = 69

var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Unknown is returned for frequencies that have no pitch.
const Unknown = "Unknown"

// FrequencyToNote converts a frequency to scientific pitch notation, e.g.
// 440 -> "A4", 523.25 -> "C5". Non-positive frequencies map to Unknown.
// Frequencies exactly between two semitones round away from A4.
func FrequencyToNote(freq float64) string {
	if freq <= 0 {
		return Unknown
	}

	midi := MIDINote(freq)
	octave := floorDiv(midi-12, 12)
	name := pitchClassNames[((midi%12)+12)%12]

	return fmt.Sprintf("%s%d", name, octave)
}

// floorDiv divides rounding toward negative infinity, so sub-audible
// frequencies below C0 land in negative octaves instead of collapsing
// toward octave -1.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// MIDINote returns the MIDI note number nearest to a frequency.
func MIDINote(freq float64) int {
	return referenceMIDI + int(math.Round(12*math.Log2(freq/ReferenceFrequency)))
}

// SemitoneInterval returns the signed interval in semitones from ref to freq.
// Zero if either frequency is non-positive.
func SemitoneInterval(freq, ref float64) float64 {
	if freq <= 0 || ref <= 0 {
		return 0
	}
	return 12 * math.Log2(freq/ref)
}
