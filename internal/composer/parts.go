package composer

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

const (
	harmonyVelocity = 72
	leadVelocity    = 95
	arpVelocity     = 85
	percVelocity    = 90

	// quietEnergy is the section energy below which hats drop to quarters.
	quietEnergy = 0.3
)

// part is everything needed to render one track over one section.
type part struct {
	spec        planner.SongSpec
	profile     genre.Profile
	section     planner.SectionSpec
	track       planner.TrackSpec
	layer       genre.Layer
	activity    Activity
	progression []int
	// custom is a user-supplied drum part that replaces the generated one.
	custom *pattern.Pattern
	chords theory.ChordProgression
}

func (pc part) bars() int        { return pc.section.Bars }
func (pc part) beatsPerBar() int { return pc.spec.BeatsPerBar }
func (pc part) energy() float64  { return pc.section.TargetEnergy }
func (pc part) barTicks() int    { return pc.beatsPerBar() * pattern.TicksPerBeat }

// complexity scales the track's base complexity with section energy.
func (pc part) complexity() float64 {
	c := pc.track.Complexity * (0.5 + pc.energy())
	if c > 1 {
		return 1
	}
	return c
}

func (pc part) degree(base, step int) int {
	return theory.Degree(base, pc.spec.Scale, step)
}

// render produces the section-relative pattern for one track.
func render(pc part) *pattern.Pattern {
	var p *pattern.Pattern
	switch pc.track.Role.Family() {
	case genre.FamilyDrums:
		p = renderDrums(pc)
	case genre.FamilyPercussion:
		p = renderPercussion(pc)
	case genre.FamilyBass:
		p = renderBass(pc)
	case genre.FamilyHarmony:
		p = renderHarmony(pc)
	case genre.FamilyLead:
		p = renderLead(pc)
	case genre.FamilyArp:
		p = renderArp(pc)
	default:
		p = renderFX(pc)
	}
	p.SetChannel(pc.track.Channel)
	return p
}

func renderDrums(pc part) *pattern.Pattern {
	groove := pc.spec.Groove
	if pc.section.DramaticMoment {
		groove = theory.Driving
	}

	var p *pattern.Pattern
	switch {
	case pc.custom != nil:
		p = pc.custom.Clone()
	case pc.track.Role == genre.Kick:
		p = pattern.Kick(pc.bars(), pc.beatsPerBar(), groove)
		retune(p, pattern.KickNote, pc.layer.Program)
	case pc.track.Role == genre.Snare:
		p = pattern.Snare(pc.bars(), pc.beatsPerBar(), pc.profile.GhostSnare)
		retune(p, pattern.SnareNote, pc.layer.Program)
	default:
		p = pattern.HiHat(pc.bars(), pc.beatsPerBar(), pc.energy() >= 0.6)
		retune(p, pattern.ClosedHatNote, pc.layer.Program)
		if pc.energy() < quietEnergy {
			pattern.ThinNotes(p, 0.5)
		}
	}

	if pc.track.Role == genre.HiHat && pc.section.DramaticMoment && !hitAt(p, pattern.CrashNote, 0) {
		p.Add(pattern.Note{
			Pitch:     pattern.CrashNote,
			Velocity:  90 + int(30*pc.section.DramaIntensity),
			StartTick: 0,
			Duration:  pattern.TicksPerBeat,
		})
		p.Sort()
	}
	return p
}

func hitAt(p *pattern.Pattern, pitch, tick int) bool {
	for _, n := range p.Notes {
		if n.Pitch == pitch && n.StartTick == tick {
			return true
		}
	}
	return false
}

// retune moves a generated drum part onto the layer's percussion key.
func retune(p *pattern.Pattern, from, to int) {
	if to <= 0 || to == from {
		return
	}
	pattern.Transpose(p, to-from)
}

// renderPercussion plays timpani on the downbeat, adding the fifth on beat 3
// in dramatic sections.
func renderPercussion(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	low := pc.spec.RootNote - 12
	for bar := 0; bar < pc.bars(); bar++ {
		base := bar * pc.barTicks()
		deg := chordAt(pc.progression, bar)
		p.Add(pattern.Note{
			Pitch:     pc.degree(low, deg),
			Velocity:  percVelocity,
			StartTick: base,
			Duration:  pattern.TicksPerBeat,
		})
		if pc.section.DramaticMoment && pc.beatsPerBar() > 2 {
			p.Add(pattern.Note{
				Pitch:     pc.degree(low, deg+4),
				Velocity:  percVelocity - 10,
				StartTick: base + 2*pattern.TicksPerBeat,
				Duration:  pattern.TicksPerBeat,
			})
		}
	}
	return p
}

// renderBass picks density by energy: whole notes, root and octave halves,
// or the full walking line.
func renderBass(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	low := pc.spec.RootNote - 12
	barTicks := pc.barTicks()
	half := (pc.beatsPerBar() / 2) * pattern.TicksPerBeat

	for bar := 0; bar < pc.bars(); bar++ {
		base := bar * barTicks
		deg := chordAt(pc.progression, bar)
		pitch := pc.degree(low, deg)
		if len(pc.chords) > 0 {
			pitch = pc.chords.BassNote(bar, theory.OctaveOf(low))
		}
		switch {
		case pc.energy() < 0.3:
			p.Add(pattern.Note{Pitch: pitch, Velocity: 90, StartTick: base, Duration: barTicks})
		case (pc.energy() < 0.6 || len(pc.chords) > 0) && half > 0:
			// the walking line walks the scale, so chord symbols keep root and octave
			p.Add(pattern.Note{Pitch: pitch, Velocity: 95, StartTick: base, Duration: half})
			p.Add(pattern.Note{Pitch: min(pitch+12, 127), Velocity: 80, StartTick: base + half, Duration: barTicks - half})
		default:
			line := pattern.BassOnDegree(1, pc.beatsPerBar(), pc.spec.RootNote, pc.spec.Scale, deg, pc.complexity())
			p.Append(line, base)
		}
	}
	return p
}

func renderHarmony(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	root := pc.spec.RootNote
	if pc.track.Role == genre.Choir {
		root += 12
	}
	tmpl := harmonyTemplate(pc.track.Role, pc.energy())

	for bar := 0; bar < pc.bars(); bar++ {
		deg := chordAt(pc.progression, bar)
		var pitches []int
		switch {
		case len(pc.chords) > 0:
			pitches = pc.chords.Voicing(bar, theory.OctaveOf(root))
		case pc.track.Role == genre.Choir:
			pitches = theory.Chord(root, pc.spec.Scale, deg, theory.Triad)
		case pc.track.Role == genre.Pad && pc.spec.MoodScore <= 0.5:
			pitches = []int{pc.degree(root, deg), pc.degree(root, deg+4)}
		default:
			pitches = theory.Chord(root, pc.spec.Scale, deg, VoicingSize(pc.complexity()))
		}
		p.Append(pattern.RhythmBar(pc.beatsPerBar(), tmpl, pitches, harmonyVelocity, 0), bar*pc.barTicks())
	}
	return p
}

// renderLead plays the mood motif over the chord of each bar. Brass holds
// root and third in half notes instead.
func renderLead(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	root := pc.spec.RootNote

	if pc.track.Role == genre.Brass {
		tmpl := theory.MustRhythmTemplate("half")
		for bar := pc.activity.LeadFromBar; bar < pc.bars(); bar++ {
			deg := chordAt(pc.progression, bar)
			pitches := []int{pc.degree(root, deg), pc.degree(root, deg+2)}
			p.Append(pattern.RhythmBar(pc.beatsPerBar(), tmpl, pitches, leadVelocity, 0), bar*pc.barTicks())
		}
		return p
	}

	tmpl := theory.MustRhythmTemplate("quarters")
	if pc.energy() >= 0.5 {
		tmpl = theory.MustRhythmTemplate("8ths")
	}
	motif := Motif(pc.spec.MoodScore)
	hits := tmpl.Hits(pc.beatsPerBar(), pattern.TicksPerBeat)
	for bar := pc.activity.LeadFromBar; bar < pc.bars(); bar++ {
		deg := chordAt(pc.progression, bar)
		base := bar * pc.barTicks()
		for i, h := range hits {
			// odd bars answer the even ones from further into the motif
			step := motif[(bar*2+i)%len(motif)]
			p.Add(pattern.Note{
				Pitch:     pc.degree(root+12, deg+step),
				Velocity:  clampVelocity(int(float64(leadVelocity) * h.Accent)),
				StartTick: base + h.Offset,
				Duration:  h.Duration,
			})
		}
	}
	return p
}

// renderArp runs up and back down the chord an octave above the root.
func renderArp(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	tmpl := arpTemplate(pc.track.Role, pc.energy())
	for bar := 0; bar < pc.bars(); bar++ {
		chord := theory.Chord(pc.spec.RootNote+12, pc.spec.Scale, chordAt(pc.progression, bar), VoicingSize(pc.complexity()))
		if len(pc.chords) > 0 {
			chord = pc.chords.Voicing(bar, theory.OctaveOf(pc.spec.RootNote+12))
		}
		seq := append([]int(nil), chord...)
		for i := len(chord) - 2; i > 0; i-- {
			seq = append(seq, chord[i])
		}
		p.Append(pattern.ArpeggioBar(pc.beatsPerBar(), tmpl, seq, arpVelocity, 0), bar*pc.barTicks())
	}
	return p
}

// renderFX adds a rising eighth-note riser over the last two bars of a build
// and a low impact on the first beat of a drop.
func renderFX(pc part) *pattern.Pattern {
	p := pattern.New(pc.bars(), pc.beatsPerBar())
	root := pc.spec.RootNote
	const step = pattern.TicksPerBeat / 2

	if pc.section.Name == genre.Build {
		riserBars := min(2, pc.bars())
		start := (pc.bars() - riserBars) * pc.barTicks()
		n := riserBars * pc.barTicks() / step
		for i := 0; i < n; i++ {
			p.Add(pattern.Note{
				Pitch:     pc.degree(root+12, i),
				Velocity:  clampVelocity(40 + i*80/n),
				StartTick: start + i*step,
				Duration:  step,
			})
		}
	}
	if pc.section.DramaticMoment {
		p.Add(pattern.Note{
			Pitch:     root - 12,
			Velocity:  clampVelocity(100 + int(27*pc.section.DramaIntensity)),
			StartTick: 0,
			Duration:  pc.barTicks(),
		})
		p.Sort()
	}
	return p
}

func clampVelocity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
