package composer

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

// Progressions are zero-based scale degrees, one chord per bar.
type progressionSet [][]int

var (
	brightProgressions = progressionSet{
		{0, 5, 3, 4}, // I-vi-IV-V
		{0, 4, 0, 5},
		{0, 3, 4, 4},
	}
	darkProgressions = progressionSet{
		{0, 3, 5, 5},
		{0, 4, 3, 5},
		{0, 5, 3, 3},
	}

	genreProgressions = map[genre.Genre]map[bool]progressionSet{
		genre.EDMChill: {
			true: {{0, 5, 3, 4}, {3, 4, 0, 5}, {0, 3, 4, 4}},
		},
		genre.EDMDrop: {
			false: {{0, 5, 2, 6}, {0, 5, 2, 6}, {0, 3, 5, 5}},
		},
		genre.RetroWave: {
			true:  {{0, 4, 5, 3}, {5, 3, 0, 4}, {0, 3, 4, 4}},
			false: {{0, 5, 2, 6}, {5, 2, 6, 0}, {0, 3, 5, 5}},
		},
		genre.Cinematic: {
			false: {{0, 5, 3, 4}, {0, 5, 2, 6}, {0, 2, 6, 5}},
		},
	}
)

// Progression returns the chord degrees for a section.
func Progression(g genre.Genre, s theory.Scale, kind genre.SectionKind) []int {
	set := darkProgressions
	if s.Bright() {
		set = brightProgressions
	}
	if byFamily, ok := genreProgressions[g]; ok {
		if custom, ok := byFamily[s.Bright()]; ok && len(custom) > 0 {
			set = custom
		}
	}

	idx := 0
	switch kind {
	case genre.Drop:
		idx = 1
	case genre.Break:
		idx = 2
	}
	return set[idx%len(set)]
}

// chordAt returns the chord degree for bar (section-relative).
func chordAt(progression []int, bar int) int {
	if len(progression) == 0 {
		return 0
	}
	return progression[bar%len(progression)]
}

// VoicingSize maps complexity to the number of stacked thirds.
func VoicingSize(complexity float64) int {
	switch {
	case complexity < 0.4:
		return theory.Triad
	case complexity < 0.65:
		return theory.Seventh
	case complexity < 0.85:
		return theory.Ninth
	default:
		return theory.Eleventh
	}
}

// harmonyTemplate picks the comping rhythm for a harmony role.
func harmonyTemplate(role genre.Role, energy float64) theory.RhythmTemplate {
	switch role {
	case genre.Piano:
		switch {
		case energy < 0.3:
			return theory.MustRhythmTemplate("whole")
		case energy < 0.7:
			return theory.MustRhythmTemplate("half")
		default:
			return theory.MustRhythmTemplate("syncopated")
		}
	case genre.Strings:
		if energy >= 0.7 {
			return theory.MustRhythmTemplate("legato")
		}
		return theory.MustRhythmTemplate("whole")
	default:
		return theory.MustRhythmTemplate("whole")
	}
}

// arpTemplate picks the arpeggio rhythm by energy. Plucks sit on the
// syncopated grid instead of straight subdivisions.
func arpTemplate(role genre.Role, energy float64) theory.RhythmTemplate {
	if role == genre.Pluck {
		if energy >= 0.6 {
			return theory.MustRhythmTemplate("syncopated")
		}
		return theory.MustRhythmTemplate("offbeat")
	}
	switch {
	case energy >= 0.7:
		return theory.MustRhythmTemplate("16ths")
	case energy >= 0.4:
		return theory.MustRhythmTemplate("8ths")
	default:
		return theory.MustRhythmTemplate("broken")
	}
}

// Lead motifs are scale steps relative to the current chord degree.
var (
	brightMotif = []int{0, 2, 4, 5, 4, 2, 1, 2}
	evenMotif   = []int{0, 2, 1, 4, 2, 0, 1, -1}
	darkMotif   = []int{0, -1, 0, 2, 0, -3, -2, 0}
)

// Motif picks the lead figure for a mood score.
func Motif(mood float64) []int {
	switch {
	case mood > 0.6:
		return brightMotif
	case mood < 0.3:
		return darkMotif
	default:
		return evenMotif
	}
}
