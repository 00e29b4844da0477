// Package pattern generates and transforms bar-aligned note patterns.
//
// Generators are pure functions of their arguments. Transforms mutate a
// pattern in place and never touch shared state; the only randomness
// (Humanize) comes from a caller-supplied seeded source.
package pattern

import (
	"sort"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

const (
	// TicksPerBeat is the pattern time base; it matches the file division.
	TicksPerBeat = 480

	// DrumChannel is the General MIDI percussion channel.
	DrumChannel = 9
)

// Note is a single note event in pattern-relative ticks.
type Note struct {
	Pitch     int
	Velocity  int
	StartTick int
	Duration  int
	Channel   int
}

// End returns the tick at which the note is released.
func (n Note) End() int {
	return n.StartTick + n.Duration
}

// Pattern is an ordered note list spanning a whole number of bars.
type Pattern struct {
	Notes       []Note
	LengthBars  int
	BeatsPerBar int
	LengthTicks int
	// RingOut allows notes to sound past LengthTicks (sustained pads, risers).
	RingOut bool
}

// New returns an empty pattern of the given size.
func New(bars, beatsPerBar int) *Pattern {
	if bars < 0 {
		bars = 0
	}
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	return &Pattern{
		LengthBars:  bars,
		BeatsPerBar: beatsPerBar,
		LengthTicks: bars * beatsPerBar * TicksPerBeat,
	}
}

// BarTicks returns the length of one bar in ticks.
func (p *Pattern) BarTicks() int {
	return p.BeatsPerBar * TicksPerBeat
}

// Len returns the number of notes.
func (p *Pattern) Len() int {
	return len(p.Notes)
}

// Add appends a note.
func (p *Pattern) Add(n Note) {
	p.Notes = append(p.Notes, n)
}

// Sort orders notes by start tick, keeping insertion order for ties.
func (p *Pattern) Sort() {
	sort.SliceStable(p.Notes, func(i, j int) bool {
		return p.Notes[i].StartTick < p.Notes[j].StartTick
	})
}

// Clone returns a deep copy.
func (p *Pattern) Clone() *Pattern {
	c := *p
	c.Notes = make([]Note, len(p.Notes))
	copy(c.Notes, p.Notes)
	return &c
}

// SetChannel moves every note to channel ch.
func (p *Pattern) SetChannel(ch int) {
	for i := range p.Notes {
		p.Notes[i].Channel = ch
	}
}

// Append copies other's notes into p shifted by offset ticks, growing p if
// other extends past its end.
func (p *Pattern) Append(other *Pattern, offset int) {
	for _, n := range other.Notes {
		n.StartTick += offset
		p.Notes = append(p.Notes, n)
	}
	if end := offset + other.LengthTicks; end > p.LengthTicks {
		p.LengthTicks = end
		if bt := p.BarTicks(); bt > 0 {
			p.LengthBars = (end + bt - 1) / bt
		}
	}
	p.RingOut = p.RingOut || other.RingOut
}

// RemoveRange drops notes starting in [from, to).
func (p *Pattern) RemoveRange(from, to int) {
	kept := p.Notes[:0]
	for _, n := range p.Notes {
		if n.StartTick >= from && n.StartTick < to {
			continue
		}
		kept = append(kept, n)
	}
	p.Notes = kept
}

// Validate checks note ranges and that notes stay inside the pattern unless
// RingOut is set.
func (p *Pattern) Validate() error {
	for i, n := range p.Notes {
		switch {
		case n.Pitch < 0 || n.Pitch > 127:
			return errs.Invariant("note %d: pitch %d out of range", i, n.Pitch)
		case n.Velocity < 1 || n.Velocity > 127:
			return errs.Invariant("note %d: velocity %d out of range", i, n.Velocity)
		case n.Channel < 0 || n.Channel > 15:
			return errs.Invariant("note %d: channel %d out of range", i, n.Channel)
		case n.StartTick < 0:
			return errs.Invariant("note %d: negative start tick %d", i, n.StartTick)
		case n.Duration < 1:
			return errs.Invariant("note %d: non-positive duration %d", i, n.Duration)
		case !p.RingOut && n.End() > p.LengthTicks:
			return errs.Invariant("note %d: ends at %d past pattern length %d", i, n.End(), p.LengthTicks)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
