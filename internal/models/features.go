package models

import (
	"math"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

// Upper bound accepted for the requested tempo before genre clamping.
const MaxRequestTempo = 400

// ImageFeatures is the normalized feature vector extracted from an image.
// Every value is in [0, 1].
type ImageFeatures struct {
	AvgR         float64 `json:"avg_r"`
	AvgG         float64 `json:"avg_g"`
	AvgB         float64 `json:"avg_b"`
	Brightness   float64 `json:"brightness"`
	Hue          float64 `json:"hue"`
	Saturation   float64 `json:"saturation"`
	Colorfulness float64 `json:"colorfulness"`
	Contrast     float64 `json:"contrast"`
}

// Validate rejects values outside [0, 1].
func (f ImageFeatures) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"avg_r", f.AvgR},
		{"avg_g", f.AvgG},
		{"avg_b", f.AvgB},
		{"brightness", f.Brightness},
		{"hue", f.Hue},
		{"saturation", f.Saturation},
		{"colorfulness", f.Colorfulness},
		{"contrast", f.Contrast},
	}
	for _, field := range fields {
		if err := unitRange(field.name, field.value); err != nil {
			return err
		}
	}
	return nil
}

// MusicParameters is the musical parameter vector derived from the same image.
type MusicParameters struct {
	TempoBPM      float64 `json:"tempo_bpm"`
	BaseFrequency float64 `json:"base_frequency"`
	Energy        float64 `json:"energy"`
	Brightness    float64 `json:"brightness"`
	Reverb        float64 `json:"reverb"`
	ScaleType     int     `json:"scale_type"`   // 0 major, 1 minor, 2 dorian, 3 lydian
	PatternType   int     `json:"pattern_type"` // 0 pad, 1 pluck, 2 bell
}

// Validate rejects parameters the pipeline cannot interpret.
func (p MusicParameters) Validate() error {
	if math.IsNaN(p.TempoBPM) || p.TempoBPM <= 0 || p.TempoBPM > MaxRequestTempo {
		return errs.InvalidInput("tempo_bpm must be in (0, %d], got %v", MaxRequestTempo, p.TempoBPM)
	}
	if math.IsNaN(p.BaseFrequency) || math.IsInf(p.BaseFrequency, 0) || p.BaseFrequency <= 0 {
		return errs.InvalidInput("base_frequency must be positive, got %v", p.BaseFrequency)
	}
	if err := unitRange("energy", p.Energy); err != nil {
		return err
	}
	if err := unitRange("brightness", p.Brightness); err != nil {
		return err
	}
	if err := unitRange("reverb", p.Reverb); err != nil {
		return err
	}
	if p.ScaleType < 0 || p.ScaleType > 3 {
		return errs.InvalidInput("scale_type must be in [0, 3], got %d", p.ScaleType)
	}
	if p.PatternType < 0 || p.PatternType > 2 {
		return errs.InvalidInput("pattern_type must be in [0, 2], got %d", p.PatternType)
	}
	return nil
}

func unitRange(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return errs.InvalidInput("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}
