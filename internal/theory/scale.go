// Package theory holds the pitch and rhythm vocabulary shared by the planner
// and the composer: scales, scale-degree chords, note names and rhythm templates.
package theory

import (
	"fmt"
	"math"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

// Scale is the closed set of scale types. The ordinals match the values
// accepted in MusicParameters.ScaleType.
type Scale int

const (
	Major Scale = iota
	Minor
	Dorian
	Lydian
)

var scaleIntervals = map[Scale][]int{
	Major:  {0, 2, 4, 5, 7, 9, 11},
	Minor:  {0, 2, 3, 5, 7, 8, 10},
	Dorian: {0, 2, 3, 5, 7, 9, 10},
	Lydian: {0, 2, 4, 6, 7, 9, 11},
}

// ParseScale converts a scale ordinal into a Scale.
func ParseScale(ordinal int) (Scale, error) {
	s := Scale(ordinal)
	if _, ok := scaleIntervals[s]; !ok {
		return 0, errs.InvalidInput("unknown scale ordinal %d", ordinal)
	}
	return s, nil
}

func (s Scale) String() string {
	switch s {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Dorian:
		return "dorian"
	case Lydian:
		return "lydian"
	default:
		return fmt.Sprintf("scale(%d)", int(s))
	}
}

// MarshalText encodes the scale as its name.
func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Intervals returns the seven semitone offsets of the scale. Unknown scales
// fall back to major.
func (s Scale) Intervals() []int {
	iv, ok := scaleIntervals[s]
	if !ok {
		iv = scaleIntervals[Major]
	}
	out := make([]int, len(iv))
	copy(out, iv)
	return out
}

// Bright reports whether the scale has a major third.
func (s Scale) Bright() bool {
	return s == Major || s == Lydian
}

// Degree returns the pitch of a zero-based scale degree above root. Degrees
// outside 0..6 wrap into neighbouring octaves.
func Degree(root int, s Scale, degree int) int {
	iv := scaleIntervals[s]
	if iv == nil {
		iv = scaleIntervals[Major]
	}
	octave := floorDiv(degree, len(iv))
	idx := degree - octave*len(iv)
	return root + 12*octave + iv[idx]
}

// FreqToMIDI returns the nearest MIDI note for a frequency in Hz (A4 = 440 Hz = 69).
func FreqToMIDI(freq float64) int {
	return int(math.Round(69 + 12*math.Log2(freq/440)))
}

// MIDIToFreq returns the equal-tempered frequency of a MIDI note.
func MIDIToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI note as scientific pitch, e.g. 60 -> "C4".
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", noteNames[((note%12)+12)%12], floorDiv(note, 12)-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
