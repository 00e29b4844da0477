// Package composer renders a SongSpec into a multi-track MIDI file.
//
// Composition is a pure function of the spec, the catalog and the options:
// the only randomness is the per-track humanize source, derived from
// Options.Seed and the track index.
package composer

import (
	"math/rand/v2"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/groove"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/smf"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

const (
	// ConductorTrack is the name of the control track.
	ConductorTrack = "conductor"

	// unityVolume is the track base volume that leaves velocities untouched.
	unityVolume = 0.7

	fillMinEnergy = 0.3
)

// Options tune rendering. The zero value is valid and renders without
// humanization at the default division.
type Options struct {
	TicksPerQuarter  int
	Seed             uint64
	Humanize         bool
	TimingVariance   int
	VelocityVariance int
	// Drums replaces the generated parts of the drum tracks it names.
	Drums groove.Kit
	// Chords replaces the genre progression for bass, harmony and arp.
	Chords theory.ChordProgression
}

// DefaultOptions returns the options used by the service.
func DefaultOptions() Options {
	return Options{
		TicksPerQuarter:  smf.DefaultTicksPerQuarter,
		Seed:             1,
		Humanize:         true,
		TimingVariance:   10,
		VelocityVariance: 8,
	}
}

// TrackInfo describes one rendered track.
type TrackInfo struct {
	Name       string     `json:"name"`
	Role       genre.Role `json:"role"`
	Channel    int        `json:"channel"`
	Program    int        `json:"program"`
	DuckOnKick bool       `json:"duck_on_kick"`
	Notes      int        `json:"notes"`
}

// AutomationLane carries per-bar curves for one section. The MIDI file does
// not contain them; they are returned for an audio renderer.
type AutomationLane struct {
	Section      int               `json:"section"`
	Kind         genre.SectionKind `json:"kind"`
	StartBar     int               `json:"start_bar"`
	FilterCutoff []int             `json:"filter_cutoff,omitempty"`
	Volume       []float64         `json:"volume,omitempty"`
}

// Result is a composed song held in memory.
type Result struct {
	Writer     *smf.Writer
	Tracks     []TrackInfo
	Automation []AutomationLane
	TotalTicks int
	NoteCount  int
}

// Composer turns song specs into MIDI. It is safe for concurrent use.
type Composer struct {
	catalog *genre.Catalog
	opts    Options
}

// New returns a Composer reading genre profiles from catalog.
func New(catalog *genre.Catalog, opts Options) *Composer {
	if opts.TicksPerQuarter <= 0 {
		opts.TicksPerQuarter = smf.DefaultTicksPerQuarter
	}
	return &Composer{catalog: catalog, opts: opts}
}

// Compose renders spec into an in-memory writer.
func (c *Composer) Compose(spec planner.SongSpec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	profile, err := c.catalog.Profile(spec.Genre)
	if err != nil {
		return nil, errs.Invariant("no profile for genre %s", spec.Genre)
	}
	layers := make([]genre.Layer, len(spec.Tracks))
	for i, t := range spec.Tracks {
		l, ok := profile.Layer(t.Role)
		if !ok {
			return nil, errs.Invariant("track %s is not a layer of %s", t.Role, spec.Genre)
		}
		layers[i] = l
	}

	w, err := smf.NewWriter(c.opts.TicksPerQuarter)
	if err != nil {
		return nil, err
	}
	if err := w.SetTempo(float64(spec.TempoBPM)); err != nil {
		return nil, err
	}
	if err := w.SetTimeSignature(spec.BeatsPerBar, 4); err != nil {
		return nil, err
	}
	w.NewTrack(ConductorTrack)

	songTicks := spec.TotalBars * spec.BeatsPerBar * pattern.TicksPerBeat
	res := &Result{
		Writer:     w,
		TotalTicks: c.ticks(songTicks),
		Automation: automation(spec),
	}

	for i, track := range spec.Tracks {
		song, err := c.renderTrack(spec, profile, track, layers[i], uint64(i))
		if err != nil {
			return nil, err
		}
		id := w.NewTrack(track.Role.String())
		if track.Channel != smf.DrumChannel {
			if err := w.AddProgramChange(id, 0, track.Channel, track.Program); err != nil {
				return nil, err
			}
		}
		for _, n := range song.Notes {
			if err := w.Note(id, c.ticks(n.StartTick), max(1, c.ticks(n.Duration)), n.Channel, n.Pitch, n.Velocity); err != nil {
				return nil, err
			}
		}
		res.Tracks = append(res.Tracks, TrackInfo{
			Name:       track.Role.String(),
			Role:       track.Role,
			Channel:    track.Channel,
			Program:    track.Program,
			DuckOnKick: track.DuckOnKick,
			Notes:      song.Len(),
		})
		res.NoteCount += song.Len()
	}

	if err := w.ExtendTo(res.TotalTicks); err != nil {
		return nil, err
	}
	return res, nil
}

// ComposeToFile composes spec and writes it to path atomically. Nothing is
// written when composition fails.
func (c *Composer) ComposeToFile(spec planner.SongSpec, path string) (*Result, error) {
	res, err := c.Compose(spec)
	if err != nil {
		return nil, err
	}
	if err := res.Writer.Write(path); err != nil {
		return nil, err
	}
	return res, nil
}

// ComposeStems composes spec and writes one single-track file per
// non-empty track into dir.
func (c *Composer) ComposeStems(spec planner.SongSpec, dir string) (map[string]string, error) {
	res, err := c.Compose(spec)
	if err != nil {
		return nil, err
	}
	return res.Writer.WriteStems(dir)
}

// renderTrack builds the whole-song pattern for one track, section by
// section.
func (c *Composer) renderTrack(spec planner.SongSpec, profile genre.Profile, track planner.TrackSpec, layer genre.Layer, index uint64) (*pattern.Pattern, error) {
	song := pattern.New(spec.TotalBars, spec.BeatsPerBar)
	barTicks := song.BarTicks()

	var rng *rand.Rand
	if c.opts.Humanize {
		rng = rand.New(rand.NewPCG(c.opts.Seed, index))
	}
	timing := c.opts.TimingVariance
	if tight(track.Role) {
		timing = 0
	}

	gain := 1.0
	if track.BaseVolume > 0 {
		gain = track.BaseVolume / unityVolume
	}

	for si, section := range spec.Sections {
		act := ActivityFor(profile, section, spec.MoodScore)
		if !plays(act, layer, section) {
			continue
		}
		pc := part{
			spec:        spec,
			profile:     profile,
			section:     section,
			track:       track,
			layer:       layer,
			activity:    act,
			progression: Progression(spec.Genre, spec.Scale, section.Name),
			chords:      c.opts.Chords,
		}
		if c.opts.Drums.Overrides(track.Role) {
			custom, err := c.opts.Drums.Render(track.Role, section.Bars, spec.BeatsPerBar)
			if err != nil {
				return nil, err
			}
			pc.custom = custom
		}
		p := render(pc)

		if profile.UseSwing {
			if step := swingStep(track.Role.Family()); step > 0 {
				pattern.Swing(p, profile.SwingAmount, step)
			}
		}
		pattern.Humanize(p, timing, c.opts.VelocityVariance, rng)

		dynamics := (0.6 + 0.5*section.TargetEnergy) * gain
		if section.DramaticMoment {
			dynamics *= 1 + 0.1*section.DramaIntensity
		}
		pattern.ScaleVelocity(p, dynamics)
		if section.VolumeBuild {
			pattern.ApplyRamp(p, pattern.VolumeRamp(section.Bars, 0.6, 1.0))
		}

		last := si == len(spec.Sections)-1
		if !last && section.TargetEnergy > fillMinEnergy && fillRole(profile.Fill) == track.Role {
			lastBar := (section.Bars - 1) * barTicks
			p.RemoveRange(lastBar+pattern.FillStart(spec.BeatsPerBar), p.LengthTicks)
			p.Append(pattern.Fill(profile.Fill, spec.BeatsPerBar, spec.RootNote-12, track.Channel), lastBar)
		}

		if err := p.Validate(); err != nil {
			return nil, errs.Invariant("%s in %s section %d: %v", track.Role, section.Name, si, err)
		}
		song.Append(p, section.StartBar*barTicks)
	}

	song.Sort()
	if err := song.Validate(); err != nil {
		return nil, errs.Invariant("%s: %v", track.Role, err)
	}
	return song, nil
}

// ticks converts pattern ticks to the writer's division.
func (c *Composer) ticks(t int) int {
	if c.opts.TicksPerQuarter == pattern.TicksPerBeat {
		return t
	}
	return t * c.opts.TicksPerQuarter / pattern.TicksPerBeat
}

// tight reports roles whose timing is never humanized: the kick anchors
// sidechain ducking, and sustained parts abut repeated pitches.
func tight(r genre.Role) bool {
	switch r.Family() {
	case genre.FamilyBass, genre.FamilyHarmony:
		return true
	}
	return r == genre.Kick || r == genre.Brass
}

func swingStep(f genre.Family) int {
	switch f {
	case genre.FamilyDrums, genre.FamilyArp:
		return pattern.TicksPerBeat / 4
	case genre.FamilyBass, genre.FamilyLead:
		return pattern.TicksPerBeat / 2
	default:
		return 0
	}
}

// fillRole names the track that carries a fill kind.
func fillRole(kind pattern.FillKind) genre.Role {
	switch kind {
	case pattern.FillSnareRoll, pattern.FillTomRun:
		return genre.Snare
	case pattern.FillOpenHat:
		return genre.HiHat
	case pattern.FillTimpaniRoll:
		return genre.Perc
	default:
		return -1
	}
}

func automation(spec planner.SongSpec) []AutomationLane {
	var lanes []AutomationLane
	for i, s := range spec.Sections {
		if !s.FilterSweep && !s.VolumeBuild {
			continue
		}
		lane := AutomationLane{Section: i, Kind: s.Name, StartBar: s.StartBar}
		if s.FilterSweep {
			lane.FilterCutoff = pattern.FilterSweep(s.Bars, 20, 127)
		}
		if s.VolumeBuild {
			lane.Volume = pattern.VolumeRamp(s.Bars, 0.6, 1.0)
		}
		lanes = append(lanes, lane)
	}
	return lanes
}
