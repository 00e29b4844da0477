package pattern

// FillKind selects the one-bar fill played before a section change.
type FillKind int

const (
	FillNone FillKind = iota
	FillSnareRoll
	FillTomRun
	FillOpenHat
	FillTimpaniRoll
)

func (k FillKind) String() string {
	switch k {
	case FillNone:
		return "none"
	case FillSnareRoll:
		return "snare_roll"
	case FillTomRun:
		return "tom_run"
	case FillOpenHat:
		return "open_hat"
	case FillTimpaniRoll:
		return "timpani_roll"
	default:
		return "unknown"
	}
}

// FillStart returns the bar-relative tick from which a fill replaces the
// regular pattern: the last beat of the bar.
func FillStart(beatsPerBar int) int {
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	return (beatsPerBar - 1) * TicksPerBeat
}

// Fill returns a one-bar pattern holding only the fill notes. pitch and
// channel are used by melodic fills (timpani); drum fills ignore them.
func Fill(kind FillKind, beatsPerBar, pitch, channel int) *Pattern {
	p := New(1, beatsPerBar)
	start := FillStart(p.BeatsPerBar)
	switch kind {
	case FillSnareRoll:
		for i := 0; i < 4; i++ {
			p.Add(drumHit(SnareNote, 70+i*15, start+i*sixteenth, sixteenth))
		}
	case FillTomRun:
		for i, tom := range []int{HighTomNote, HiMidTomNote, LowTomNote, FloorTomNote} {
			p.Add(drumHit(tom, 100, start+i*sixteenth, sixteenth))
		}
	case FillOpenHat:
		p.Add(drumHit(OpenHatNote, 85, start+eighth, eighth))
	case FillTimpaniRoll:
		step := TicksPerBeat / 8
		for i := 0; i < 8; i++ {
			p.Add(Note{
				Pitch:     clamp(pitch, 0, 127),
				Velocity:  clamp(60+i*8, 1, 127),
				StartTick: start + i*step,
				Duration:  step,
				Channel:   channel,
			})
		}
	case FillNone:
	}
	return p
}
