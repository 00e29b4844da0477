package genre

import (
	"strings"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
)

// Select picks a genre from image features and the energy parameter. Rules are
// evaluated in order and the first match wins. Energy is clamped to [0.3, 0.9]
// first so extreme values cannot dominate the colour cues.
func Select(f models.ImageFeatures, energy float64) Genre {
	e := clampFloat(energy, 0.3, 0.9)

	switch {
	case f.Brightness < 0.2:
		return Cinematic
	case f.Brightness > 0.9 && e > 0.7:
		return RetroWave
	case f.Saturation < 0.15 && f.Colorfulness < 0.2:
		return Cinematic
	case e > 0.6 && (f.Hue < 0.15 || f.Hue > 0.9):
		// warm reds and oranges
		return EDMDrop
	case f.Brightness > 0.6 && f.Saturation > 0.4 && f.Saturation < 0.7:
		return RetroWave
	case f.Colorfulness < 0.3 && f.Contrast > 0.5:
		return Cinematic
	case f.Hue > 0.5 && f.Hue < 0.7:
		// blues
		return EDMChill
	case e > 0.7:
		return EDMDrop
	case e > 0.4:
		return RetroWave
	case f.Brightness < 0.4:
		return Cinematic
	default:
		return EDMChill
	}
}

// Resolve returns the override genre when one is given and the heuristic
// choice otherwise. A non-empty override that is not a known tag is an error.
func Resolve(override string, f models.ImageFeatures, energy float64) (Genre, error) {
	if strings.TrimSpace(override) != "" {
		return Parse(override)
	}
	return Select(f, energy), nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
