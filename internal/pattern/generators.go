package pattern

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

// General MIDI percussion keys.
const (
	KickNote      = 36
	SnareNote     = 38
	ClosedHatNote = 42
	OpenHatNote   = 46
	HighTomNote   = 50
	HiMidTomNote  = 48
	LowTomNote    = 45
	FloorTomNote  = 43
	CrashNote     = 49
)

const (
	sixteenth = TicksPerBeat / 4
	eighth    = TicksPerBeat / 2
)

// Kick returns a kick drum pattern. Driving grooves get four on the floor;
// the others get a syncopated figure: beat 1, the "and" of 2, beat 3.
func Kick(bars, beatsPerBar int, groove theory.Groove) *Pattern {
	p := New(bars, beatsPerBar)
	for bar := 0; bar < p.LengthBars; bar++ {
		base := bar * p.BarTicks()
		if groove == theory.Driving {
			for beat := 0; beat < p.BeatsPerBar; beat++ {
				p.Add(drumHit(KickNote, 100, base+beat*TicksPerBeat, sixteenth))
			}
			continue
		}
		vel := 100
		if groove == theory.Chill {
			vel = 90
		}
		p.Add(drumHit(KickNote, vel, base, sixteenth))
		if p.BeatsPerBar >= 3 {
			p.Add(drumHit(KickNote, vel-20, base+TicksPerBeat+eighth, sixteenth))
			p.Add(drumHit(KickNote, vel-5, base+2*TicksPerBeat, sixteenth))
		}
	}
	return p
}

// HiHat returns closed hi-hats on every eighth or sixteenth, accented on the beat.
func HiHat(bars, beatsPerBar int, sixteenths bool) *Pattern {
	p := New(bars, beatsPerBar)
	sub := 2
	if sixteenths {
		sub = 4
	}
	step := TicksPerBeat / sub
	steps := p.LengthTicks / step
	for i := 0; i < steps; i++ {
		vel := 60
		if i%sub == 0 {
			vel = 80
		}
		p.Add(drumHit(ClosedHatNote, vel, i*step, step/2))
	}
	return p
}

// Snare returns a backbeat on beats 2 and 4 (every second beat in other
// meters). With ghosts, a quiet hit lands a sixteenth before each backbeat.
func Snare(bars, beatsPerBar int, ghosts bool) *Pattern {
	p := New(bars, beatsPerBar)
	for bar := 0; bar < p.LengthBars; bar++ {
		base := bar * p.BarTicks()
		for beat := 1; beat < p.BeatsPerBar; beat += 2 {
			at := base + beat*TicksPerBeat
			if ghosts {
				p.Add(drumHit(SnareNote, 28, at-sixteenth, sixteenth/2))
			}
			p.Add(drumHit(SnareNote, 100, at, sixteenth))
		}
	}
	return p
}

// Bass returns a bass line an octave below root. Every bar starts on the
// root; complexity above 0.5 adds the fifth on beat 3 and above 0.7 adds
// eighth-note passing tones, so density never drops as complexity rises.
func Bass(bars, beatsPerBar, root int, scale theory.Scale, complexity float64) *Pattern {
	return BassOnDegree(bars, beatsPerBar, root, scale, 0, complexity)
}

// BassOnDegree is Bass built on a scale degree of the tonic root, so the
// fifth and passing tones stay inside the key under any chord.
func BassOnDegree(bars, beatsPerBar, root int, scale theory.Scale, degree int, complexity float64) *Pattern {
	p := New(bars, beatsPerBar)
	tonic := root - 12
	rootBeats := 2
	if p.BeatsPerBar < rootBeats {
		rootBeats = p.BeatsPerBar
	}
	for bar := 0; bar < p.LengthBars; bar++ {
		base := bar * p.BarTicks()
		p.Add(bassNote(theory.Degree(tonic, scale, degree), 100, base, rootBeats*TicksPerBeat))
		if complexity > 0.5 && p.BeatsPerBar > 2 {
			p.Add(bassNote(theory.Degree(tonic, scale, degree+4), 90, base+2*TicksPerBeat, TicksPerBeat))
		}
		if complexity > 0.7 {
			// third, second, seventh on the "and" of beats 2, 3 and 4
			for i, step := range []int{2, 1, 6} {
				beat := i + 1
				if beat >= p.BeatsPerBar {
					break
				}
				p.Add(bassNote(theory.Degree(tonic, scale, degree+step), 75, base+beat*TicksPerBeat+eighth, eighth))
			}
		}
	}
	p.Sort()
	return p
}

func bassNote(pitch, velocity, tick, duration int) Note {
	return Note{Pitch: clamp(pitch, 0, 127), Velocity: velocity, StartTick: tick, Duration: duration}
}

// RhythmBar plays all pitches together on every hit of a rhythm template.
func RhythmBar(beatsPerBar int, tmpl theory.RhythmTemplate, pitches []int, velocity, channel int) *Pattern {
	p := New(1, beatsPerBar)
	for _, h := range tmpl.Hits(p.BeatsPerBar, TicksPerBeat) {
		vel := clamp(int(float64(velocity)*h.Accent), 1, 127)
		for _, pitch := range pitches {
			p.Add(Note{Pitch: clamp(pitch, 0, 127), Velocity: vel, StartTick: h.Offset, Duration: h.Duration, Channel: channel})
		}
	}
	return p
}

// ArpeggioBar cycles through pitches, one per template hit.
func ArpeggioBar(beatsPerBar int, tmpl theory.RhythmTemplate, pitches []int, velocity, channel int) *Pattern {
	p := New(1, beatsPerBar)
	if len(pitches) == 0 {
		return p
	}
	for i, h := range tmpl.Hits(p.BeatsPerBar, TicksPerBeat) {
		vel := clamp(int(float64(velocity)*h.Accent), 1, 127)
		pitch := pitches[i%len(pitches)]
		p.Add(Note{Pitch: clamp(pitch, 0, 127), Velocity: vel, StartTick: h.Offset, Duration: h.Duration, Channel: channel})
	}
	return p
}

func drumHit(pitch, velocity, tick, duration int) Note {
	return Note{Pitch: pitch, Velocity: velocity, StartTick: tick, Duration: duration, Channel: DrumChannel}
}
