package theory

import (
	"strings"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

// ChordProgression is a list of chord symbols played one per bar, cycling.
type ChordProgression []string

// ParseProgression checks every symbol with ChordToMIDI. An empty list is
// valid and means "use the genre progression".
func ParseProgression(symbols []string) (ChordProgression, error) {
	out := make(ChordProgression, 0, len(symbols))
	for i, s := range symbols {
		s = strings.TrimSpace(s)
		if _, err := ChordToMIDI(s, 4); err != nil {
			return nil, errs.InvalidInput("chord %d %q: %v", i, s, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// At returns the symbol for a bar.
func (p ChordProgression) At(bar int) string {
	if len(p) == 0 {
		return ""
	}
	return p[bar%len(p)]
}

// Voicing returns the chord tones for a bar with the root in octave. A slash
// bass is dropped; harmony parts leave the bass to the bass track.
func (p ChordProgression) Voicing(bar, octave int) []int {
	symbol := p.At(bar)
	if i := strings.Index(symbol, "/"); i >= 0 {
		symbol = symbol[:i]
	}
	notes, err := ChordToMIDI(symbol, octave)
	if err != nil {
		return nil
	}
	return notes
}

// BassNote returns the lowest note of a bar's chord in octave: the slash bass
// when there is one, else the root.
func (p ChordProgression) BassNote(bar, octave int) int {
	symbol := p.At(bar)
	if i := strings.Index(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	root, err := parseRootNote(strings.TrimSpace(symbol))
	if err != nil {
		return clampMIDI(noteToMIDI("C", octave))
	}
	return clampMIDI(noteToMIDI(root, octave))
}

// OctaveOf returns the scientific octave of a MIDI note (60 is octave 4).
func OctaveOf(note int) int {
	return note/12 - 1
}
