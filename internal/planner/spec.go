package planner

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/style"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

const (
	drumChannel = 9

	defaultTrackVolume     = 0.7
	defaultTrackComplexity = 0.5
)

// SectionSpec is one section as seen by the composer.
type SectionSpec struct {
	Name           genre.SectionKind `json:"name"`
	StartBar       int               `json:"start_bar"`
	Bars           int               `json:"bars"`
	TargetEnergy   float64           `json:"target_energy"`
	DramaticMoment bool              `json:"dramatic_moment"`
	DramaIntensity float64           `json:"drama_intensity"`
	FilterSweep    bool              `json:"filter_sweep"`
	VolumeBuild    bool              `json:"volume_build"`
}

// TrackSpec is one output track.
type TrackSpec struct {
	Role       genre.Role   `json:"role"`
	Family     genre.Family `json:"-"`
	Channel    int          `json:"channel"`
	Program    int          `json:"program"`
	BaseVolume float64      `json:"base_volume"`
	Complexity float64      `json:"complexity"`
	DuckOnKick bool         `json:"duck_on_kick"`
}

// SongSpec is the composer's input.
type SongSpec struct {
	Genre       genre.Genre    `json:"genre"`
	TempoBPM    int            `json:"tempo_bpm"`
	Scale       theory.Scale   `json:"scale"`
	RootNote    int            `json:"root_note"`
	TotalBars   int            `json:"total_bars"`
	BeatsPerBar int            `json:"beats_per_bar"`
	Groove      theory.Groove  `json:"-"`
	MoodScore   float64        `json:"mood_score"`
	Ambience    style.Ambience `json:"ambience"`
	Preset      style.Preset   `json:"preset"`
	Sections    []SectionSpec  `json:"sections"`
	Tracks      []TrackSpec    `json:"tracks"`
}

// ToSpec converts a plan into a SongSpec. Sections and layers map one to one;
// drum roles share the percussion channel and every other role gets its own
// channel in layer order, skipping the percussion channel.
func ToSpec(plan SongPlan) (SongSpec, error) {
	if err := plan.Check(); err != nil {
		return SongSpec{}, err
	}

	spec := SongSpec{
		Genre:       plan.Genre,
		TempoBPM:    plan.TempoBPM,
		Scale:       plan.Scale,
		RootNote:    plan.RootNote,
		TotalBars:   plan.TotalBars,
		BeatsPerBar: BeatsPerBar,
		Groove:      plan.Groove,
		MoodScore:   plan.Style.MoodScore,
		Ambience:    plan.Style.Ambience,
		Preset:      plan.Style.Preset,
		Sections:    make([]SectionSpec, 0, len(plan.Sections)),
		Tracks:      make([]TrackSpec, 0, len(plan.Layers)),
	}

	for _, s := range plan.Sections {
		spec.Sections = append(spec.Sections, SectionSpec{
			Name:           s.Kind,
			StartBar:       s.StartBar,
			Bars:           s.Bars,
			TargetEnergy:   s.Energy,
			DramaticMoment: s.DramaticMoment,
			DramaIntensity: s.DramaIntensity,
			FilterSweep:    s.FilterSweep,
			VolumeBuild:    s.VolumeBuild,
		})
	}

	next := 0
	for _, l := range plan.Layers {
		channel := drumChannel
		if l.Role.Family() != genre.FamilyDrums {
			if next == drumChannel {
				next++
			}
			channel = next
			next++
		}
		spec.Tracks = append(spec.Tracks, TrackSpec{
			Role:       l.Role,
			Family:     l.Role.Family(),
			Channel:    channel,
			Program:    l.Program,
			BaseVolume: defaultTrackVolume,
			Complexity: defaultTrackComplexity,
			DuckOnKick: l.DuckOnKick,
		})
	}

	if err := spec.Validate(); err != nil {
		return SongSpec{}, err
	}
	return spec, nil
}

// Validate checks the structural invariants the composer relies on.
func (s SongSpec) Validate() error {
	if s.TempoBPM <= 0 {
		return errs.Invariant("tempo %d must be positive", s.TempoBPM)
	}
	if s.BeatsPerBar <= 0 {
		return errs.Invariant("beats per bar %d must be positive", s.BeatsPerBar)
	}
	if s.RootNote < 0 || s.RootNote > 127 {
		return errs.Invariant("root note %d out of range", s.RootNote)
	}
	if len(s.Sections) == 0 {
		return errs.Invariant("spec has no sections")
	}
	next := 0
	for i, sec := range s.Sections {
		if sec.Bars <= 0 || sec.StartBar != next {
			return errs.Invariant("section %d (%s) does not continue the timeline at bar %d", i, sec.Name, next)
		}
		next += sec.Bars
	}
	if next != s.TotalBars {
		return errs.Invariant("sections cover %d bars, spec says %d", next, s.TotalBars)
	}

	seen := make(map[genre.Role]bool, len(s.Tracks))
	for _, t := range s.Tracks {
		if seen[t.Role] {
			return errs.Invariant("duplicate track for role %s", t.Role)
		}
		seen[t.Role] = true
		if t.Channel < 0 || t.Channel > 15 {
			return errs.Invariant("track %s: channel %d out of range", t.Role, t.Channel)
		}
		if (t.Role.Family() == genre.FamilyDrums) != (t.Channel == drumChannel) {
			return errs.Invariant("track %s: drums and only drums use channel %d", t.Role, drumChannel)
		}
		if t.Program < 0 || t.Program > 127 {
			return errs.Invariant("track %s: program %d out of range", t.Role, t.Program)
		}
	}
	return nil
}

// TicksPerBar returns the bar length for a division.
func (s SongSpec) TicksPerBar(ticksPerQuarter int) int {
	return s.BeatsPerBar * ticksPerQuarter
}
