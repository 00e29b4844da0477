package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

func TestParseScale(t *testing.T) {
	s, err := ParseScale(3)
	require.NoError(t, err)
	assert.Equal(t, Lydian, s)
	assert.Equal(t, "lydian", s.String())

	_, err = ParseScale(4)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = ParseScale(-1)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDegree(t *testing.T) {
	tests := []struct {
		name   string
		scale  Scale
		degree int
		want   int
	}{
		{"tonic", Major, 0, 60},
		{"major third", Major, 2, 64},
		{"minor third", Minor, 2, 63},
		{"dorian sixth", Dorian, 5, 69},
		{"lydian fourth", Lydian, 3, 66},
		{"next octave", Major, 7, 72},
		{"ninth", Minor, 8, 74},
		{"below root", Major, -1, 59},
		{"octave below", Minor, -7, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Degree(60, tt.scale, tt.degree))
		})
	}
}

func TestChord(t *testing.T) {
	assert.Equal(t, []int{60, 64, 67}, Chord(60, Major, 0, Triad))
	assert.Equal(t, []int{57, 60, 64, 67}, Chord(48, Major, 5, Seventh), "vi7 in C")
	assert.Equal(t, []int{60, 63, 67, 70, 74}, Chord(60, Minor, 0, Ninth))
	assert.Len(t, Chord(60, Dorian, 4, Eleventh), 6)
}

func TestFreqToMIDI(t *testing.T) {
	assert.Equal(t, 69, FreqToMIDI(440))
	assert.Equal(t, 60, FreqToMIDI(261.63))
	assert.Equal(t, 57, FreqToMIDI(220))
	assert.Equal(t, 81, FreqToMIDI(880))
	assert.InDelta(t, 261.63, MIDIToFreq(60), 0.01)
}

func TestNoteName(t *testing.T) {
	assert.Equal(t, "C4", NoteName(60))
	assert.Equal(t, "A4", NoteName(69))
	assert.Equal(t, "C#-1", NoteName(1))
	assert.Equal(t, "G9", NoteName(127))
}

func TestNoteNameToMIDI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"middle C", "C4", 60, false},
		{"sharp", "F#3", 54, false},
		{"flat", "Bb2", 46, false},
		{"lowercase", "e1", 28, false},
		{"negative octave", "C-1", 0, false},
		{"clamped high", "B10", 127, false},
		{"too short", "C", 0, true},
		{"bad letter", "H4", 0, true},
		{"missing octave", "C#", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NoteNameToMIDI(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChordToMIDI(t *testing.T) {
	tests := []struct {
		symbol string
		want   []int
	}{
		{"C", []int{60, 64, 67}},
		{"Em", []int{64, 67, 71}},
		{"Am7", []int{69, 72, 76, 79}},
		{"Cmaj7", []int{60, 64, 67, 71}},
		{"Emin/G", []int{55, 64, 67, 71}},
		{"Dsus4", []int{62, 67, 69}},
		{"Bbdim", []int{70, 73, 76}},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := ChordToMIDI(tt.symbol, 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ChordToMIDI("X7", 4)
	assert.Error(t, err)
}

func TestRhythmTemplateHits(t *testing.T) {
	hits := MustRhythmTemplate("half").Hits(4, 480)
	require.Len(t, hits, 2)
	assert.Equal(t, Hit{Offset: 0, Duration: 960, Accent: 1.0}, hits[0])
	assert.Equal(t, 960, hits[1].Offset)

	hits = MustRhythmTemplate("16ths").Hits(4, 480)
	require.Len(t, hits, 16)
	for _, h := range hits {
		assert.LessOrEqual(t, h.Duration, 120)
		assert.Less(t, h.Offset+h.Duration, 1921)
	}

	// legato overlaps are cut at the next onset
	for _, h := range MustRhythmTemplate("legato").Hits(4, 480) {
		assert.Equal(t, 480, h.Duration)
	}

	// 3/4 bars drop the fourth quarter
	assert.Len(t, MustRhythmTemplate("quarters").Hits(3, 480), 3)

	_, ok := GetRhythmTemplate("polka")
	assert.False(t, ok)
}

func TestParseProgression(t *testing.T) {
	p, err := ParseProgression([]string{"Am", " F ", "C/E", "G7"})
	require.NoError(t, err)
	assert.Equal(t, ChordProgression{"Am", "F", "C/E", "G7"}, p)

	assert.Equal(t, "Am", p.At(4))
	assert.Equal(t, []int{57, 60, 64}, p.Voicing(0, 3))
	assert.Equal(t, []int{60, 64, 67}, p.Voicing(2, 4), "slash bass is left to the bass track")
	assert.Equal(t, 45, p.BassNote(0, 2))
	assert.Equal(t, 40, p.BassNote(2, 2))
	assert.Equal(t, 4, OctaveOf(60))
	assert.Equal(t, 2, OctaveOf(47))

	_, err = ParseProgression([]string{"Am", "Q7"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	empty, err := ParseProgression(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "", empty.At(3))
}
