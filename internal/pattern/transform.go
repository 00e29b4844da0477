package pattern

import (
	"math"
	"math/rand/v2"
)

// Transpose shifts every pitch by semitones, clamping to 0..127.
func Transpose(p *Pattern, semitones int) {
	semitones = clamp(semitones, -127, 127)
	for i := range p.Notes {
		p.Notes[i].Pitch = clamp(p.Notes[i].Pitch+semitones, 0, 127)
	}
}

// ScaleVelocity multiplies every velocity by factor, clamping to 1..127.
func ScaleVelocity(p *Pattern, factor float64) {
	if math.IsNaN(factor) || factor < 0 {
		factor = 0
	}
	for i := range p.Notes {
		// clamp before converting: huge products overflow int
		v := math.Round(float64(p.Notes[i].Velocity) * factor)
		if math.IsNaN(v) {
			v = 1
		}
		p.Notes[i].Velocity = int(math.Max(1, math.Min(v, 127)))
	}
}

// ThinNotes keeps an evenly spaced subset of roughly keepRatio of the notes,
// in start order. The selection depends only on the note count and the
// ratio: 16 notes at 0.5 always keep the 8 even-indexed ones.
func ThinNotes(p *Pattern, keepRatio float64) {
	if math.IsNaN(keepRatio) || keepRatio <= 0 {
		p.Notes = p.Notes[:0]
		return
	}
	if keepRatio >= 1 {
		return
	}
	p.Sort()
	kept := p.Notes[:0]
	for i, n := range p.Notes {
		if ceilStable(float64(i+1)*keepRatio) > ceilStable(float64(i)*keepRatio) {
			kept = append(kept, n)
		}
	}
	p.Notes = kept
}

func ceilStable(x float64) float64 {
	return math.Ceil(x - 1e-9)
}

// Humanize nudges start times by up to ±timingVariance ticks and velocities by
// up to ±velocityVariance. rng must be seeded by the caller; a nil source
// leaves the pattern unchanged.
func Humanize(p *Pattern, timingVariance, velocityVariance int, rng *rand.Rand) {
	if rng == nil {
		return
	}
	for i := range p.Notes {
		n := &p.Notes[i]
		if timingVariance > 0 {
			n.StartTick += rng.IntN(2*timingVariance+1) - timingVariance
		}
		if velocityVariance > 0 {
			n.Velocity += rng.IntN(2*velocityVariance+1) - velocityVariance
		}
		n.Velocity = clamp(n.Velocity, 1, 127)
		fitInside(p, n)
	}
}

// Swing delays every odd step of size stepTicks by amount·step/3; amount 1
// gives a triplet shuffle.
func Swing(p *Pattern, amount float64, stepTicks int) {
	if stepTicks <= 0 || math.IsNaN(amount) || amount <= 0 {
		return
	}
	if amount > 1 {
		amount = 1
	}
	delay := int(amount * float64(stepTicks) / 3)
	if delay == 0 {
		return
	}
	for i := range p.Notes {
		n := &p.Notes[i]
		if n.StartTick%stepTicks == 0 && (n.StartTick/stepTicks)%2 == 1 {
			n.StartTick += delay
			if !p.RingOut && n.End() > p.LengthTicks {
				n.Duration = p.LengthTicks - n.StartTick
			}
		}
	}
}

// ApplyRamp multiplies the velocity of notes in bar i by ramp[i]. Bars past
// the end of ramp are left alone.
func ApplyRamp(p *Pattern, ramp []float64) {
	barTicks := p.BarTicks()
	if barTicks <= 0 {
		return
	}
	for i := range p.Notes {
		bar := p.Notes[i].StartTick / barTicks
		if bar < 0 || bar >= len(ramp) {
			continue
		}
		v := int(math.Round(float64(p.Notes[i].Velocity) * ramp[bar]))
		p.Notes[i].Velocity = clamp(v, 1, 127)
	}
}

// fitInside moves a note back inside the pattern after a timing change.
func fitInside(p *Pattern, n *Note) {
	if n.StartTick < 0 {
		n.StartTick = 0
	}
	if p.RingOut || p.LengthTicks <= 0 {
		return
	}
	if n.Duration > p.LengthTicks {
		n.Duration = p.LengthTicks
	}
	if n.End() > p.LengthTicks {
		n.StartTick = p.LengthTicks - n.Duration
	}
}
