package theory

import "fmt"

// RhythmTemplate defines timing and accent patterns for one 4/4 bar.
type RhythmTemplate struct {
	Name string
	// Offsets within a bar, in beats.
	Offsets []float64
	// Velocity multipliers for accents (1.0 = normal).
	Accents []float64
	// Duration multiplier applied to the even share of the bar.
	Articulation float64
}

const (
	articulationHigh    = 0.9
	articulationMedium  = 0.8
	articulationMidHigh = 0.85
	articulationShort   = 0.4
	articulationOverlap = 1.1
)

var rhythmTemplates = map[string]RhythmTemplate{
	"whole": {
		Name:         "whole",
		Offsets:      []float64{0},
		Accents:      []float64{1.0},
		Articulation: 1.0,
	},
	"half": {
		Name:         "half",
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.9},
		Articulation: 1.0,
	},
	"quarters": {
		Name:         "quarters",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"8ths": {
		Name:         "8ths",
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		Articulation: articulationMidHigh,
	},
	"16ths": {
		Name:         "16ths",
		Offsets:      []float64{0, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.25, 2.5, 2.75, 3, 3.25, 3.5, 3.75},
		Accents:      []float64{1.0, 0.6, 0.8, 0.6, 0.9, 0.6, 0.8, 0.6, 0.95, 0.6, 0.8, 0.6, 0.9, 0.6, 0.8, 0.6},
		Articulation: articulationMedium,
	},
	"offbeat": {
		Name:         "offbeat",
		Offsets:      []float64{0.5, 1.5, 2.5, 3.5},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationMidHigh,
	},
	"syncopated": {
		Name:         "syncopated",
		Offsets:      []float64{0, 0.5, 1.5, 2, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.95, 0.8},
		Articulation: articulationMidHigh,
	},
	"anticipation": {
		Name:         "anticipation",
		Offsets:      []float64{0, 1, 1.75, 3, 3.75},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.9},
		Articulation: articulationMidHigh,
	},
	"tresillo": {
		Name:         "tresillo",
		Offsets:      []float64{0, 1.5, 3},
		Accents:      []float64{1.0, 0.9, 0.95},
		Articulation: articulationHigh,
	},
	"broken": {
		Name:         "broken",
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.85, 0.75, 0.95, 0.8, 0.85, 0.75},
		Articulation: articulationHigh,
	},
	"staccato": {
		Name:         "staccato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.9, 0.95, 0.9},
		Articulation: articulationShort,
	},
	"legato": {
		Name:         "legato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationOverlap,
	},
}

// GetRhythmTemplate returns a rhythm template by name.
func GetRhythmTemplate(name string) (RhythmTemplate, bool) {
	tmpl, ok := rhythmTemplates[name]
	return tmpl, ok
}

// MustRhythmTemplate is GetRhythmTemplate for names fixed at compile time.
func MustRhythmTemplate(name string) RhythmTemplate {
	tmpl, ok := rhythmTemplates[name]
	if !ok {
		panic(fmt.Sprintf("theory: unknown rhythm template %q", name))
	}
	return tmpl
}

// Hit is one onset of a rendered template, in ticks relative to the bar start.
type Hit struct {
	Offset   int
	Duration int
	Accent   float64
}

// Hits renders the template for one bar of beatsPerBar beats. Offsets past the
// bar are dropped and each duration stops at the next onset or the bar end.
func (t RhythmTemplate) Hits(beatsPerBar, ticksPerBeat int) []Hit {
	barTicks := beatsPerBar * ticksPerBeat
	hits := make([]Hit, 0, len(t.Offsets))
	for i, offset := range t.Offsets {
		start := int(offset * float64(ticksPerBeat))
		if start >= barTicks {
			break
		}
		limit := barTicks - start
		if i+1 < len(t.Offsets) {
			next := int(t.Offsets[i+1] * float64(ticksPerBeat))
			if next < barTicks {
				limit = next - start
			}
		}
		duration := int(float64(barTicks) / float64(len(t.Offsets)) * t.Articulation)
		if duration > limit {
			duration = limit
		}
		if duration < 1 {
			duration = 1
		}
		accent := 1.0
		if i < len(t.Accents) {
			accent = t.Accents[i]
		}
		hits = append(hits, Hit{Offset: start, Duration: duration, Accent: accent})
	}
	return hits
}
