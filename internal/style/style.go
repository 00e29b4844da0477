// Package style derives the non-structural character of a song from the image:
// its mood score, an ambience tag and the lead instrument preset.
package style

import (
	"math"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
)

// Ambience is a background texture tag handed to the renderer.
type Ambience int

const (
	AmbienceNone Ambience = iota
	AmbienceOcean
	AmbienceRain
	AmbienceForest
	AmbienceCity
)

func (a Ambience) String() string {
	switch a {
	case AmbienceNone:
		return "none"
	case AmbienceOcean:
		return "ocean"
	case AmbienceRain:
		return "rain"
	case AmbienceForest:
		return "forest"
	case AmbienceCity:
		return "city"
	default:
		return "unknown"
	}
}

// MarshalText encodes the ambience as its tag.
func (a Ambience) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Preset is the lead instrument colour.
type Preset int

const (
	PresetSoftPad Preset = iota
	PresetPluck
	PresetBell
	PresetSoftKeys
)

func (p Preset) String() string {
	switch p {
	case PresetSoftPad:
		return "soft_pad"
	case PresetPluck:
		return "pluck"
	case PresetBell:
		return "bell"
	case PresetSoftKeys:
		return "soft_keys"
	default:
		return "unknown"
	}
}

// MarshalText encodes the preset as its tag.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Program returns a General MIDI program for the preset.
func (p Preset) Program() int {
	switch p {
	case PresetPluck:
		return 45 // pizzicato strings
	case PresetBell:
		return 14 // tubular bells
	case PresetSoftKeys:
		return 4 // electric piano
	default:
		return 89 // warm pad
	}
}

// Style is the derived character of a song.
type Style struct {
	MoodScore float64  `json:"mood_score"`
	Ambience  Ambience `json:"ambience"`
	Preset    Preset   `json:"preset"`
}

// Derive computes the style for an image and its music parameters.
func Derive(f models.ImageFeatures, p models.MusicParameters) Style {
	return Style{
		MoodScore: MoodScore(f),
		Ambience:  AmbienceFor(f),
		Preset:    PresetFor(p),
	}
}

// MoodScore rates how pleasant the image feels, in [0, 1]. Saturated,
// colourful and bright images score high; contrast pulls the score down.
func MoodScore(f models.ImageFeatures) float64 {
	pleasant := (f.Saturation + math.Min(f.Colorfulness*500, 1)) / 2
	mood := 0.6*pleasant + 0.4*f.Brightness - 0.2*f.Contrast
	return math.Max(0, math.Min(1, mood))
}

// AmbienceFor maps hue and tone to an ambience tag. First match wins.
func AmbienceFor(f models.ImageFeatures) Ambience {
	switch {
	case f.Hue >= 0.55 && f.Hue <= 0.75 && f.Contrast < 0.4:
		return AmbienceOcean
	case f.Hue >= 0.25 && f.Hue <= 0.45 && f.Saturation > 0.4:
		return AmbienceForest
	case f.Brightness < 0.4 && f.Contrast > 0.5:
		return AmbienceCity
	case f.Saturation < 0.2 && f.Colorfulness < 0.0015:
		return AmbienceNone
	default:
		return AmbienceRain
	}
}

// PresetFor picks the lead preset from the pattern type and tone parameters.
func PresetFor(p models.MusicParameters) Preset {
	switch {
	case p.PatternType == 0 && p.Brightness < 0.4:
		return PresetSoftPad
	case p.PatternType == 1 && p.Energy > 0.5:
		return PresetPluck
	case p.PatternType == 2 && p.Brightness > 0.5:
		return PresetBell
	default:
		return PresetSoftKeys
	}
}
