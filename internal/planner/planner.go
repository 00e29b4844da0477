// Package planner expands a genre profile into a concrete song timeline and
// converts that timeline into the flatter SongSpec consumed by the composer.
package planner

import (
	"math"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/style"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

const (
	// DropEnergyBoost scales the input energy added to a realized drop.
	DropEnergyBoost = 0.3

	// DoubleDropMargin is how far above the drop threshold the input energy
	// must be before a DoubleDrop profile repeats its last drop.
	DoubleDropMargin = 0.2

	// Root notes are kept between C3 and C5.
	MinRootNote = 48
	MaxRootNote = 72

	// BeatsPerBar is fixed: every template is written in 4/4.
	BeatsPerBar = 4
)

// PlannedSection is one section of the timeline.
type PlannedSection struct {
	Kind           genre.SectionKind `json:"kind"`
	StartBar       int               `json:"start_bar"`
	Bars           int               `json:"bars"`
	Energy         float64           `json:"energy"`
	DramaticMoment bool              `json:"dramatic_moment"`
	DramaIntensity float64           `json:"drama_intensity"`
	FilterSweep    bool              `json:"filter_sweep"`
	VolumeBuild    bool              `json:"volume_build"`
}

// SongPlan is the planned form of a song.
type SongPlan struct {
	Genre     genre.Genre      `json:"genre"`
	TempoBPM  int              `json:"tempo_bpm"`
	Scale     theory.Scale     `json:"scale"`
	RootNote  int              `json:"root_note"`
	TotalBars int              `json:"total_bars"`
	Sections  []PlannedSection `json:"sections"`
	// Layers holds the active instrument layers in profile order.
	Layers []genre.Layer `json:"-"`
	Groove theory.Groove `json:"-"`
	Style  style.Style   `json:"style"`
}

// ActiveRoles lists the roles of the active layers.
func (p SongPlan) ActiveRoles() []genre.Role {
	roles := make([]genre.Role, len(p.Layers))
	for i, l := range p.Layers {
		roles[i] = l.Role
	}
	return roles
}

// Plan builds the song timeline for one request.
func Plan(f models.ImageFeatures, params models.MusicParameters, profile genre.Profile) (SongPlan, error) {
	if err := f.Validate(); err != nil {
		return SongPlan{}, err
	}
	if err := params.Validate(); err != nil {
		return SongPlan{}, err
	}
	if err := checkProfile(profile); err != nil {
		return SongPlan{}, err
	}

	requested, err := theory.ParseScale(params.ScaleType)
	if err != nil {
		return SongPlan{}, err
	}

	plan := SongPlan{
		Genre:    profile.Genre,
		TempoBPM: clampInt(int(math.Round(params.TempoBPM)), profile.MinTempo, profile.MaxTempo),
		Scale:    chooseScale(requested, profile.PreferredScales),
		RootNote: clampInt(theory.FreqToMIDI(params.BaseFrequency), MinRootNote, MaxRootNote),
		Groove:   profile.Groove,
		Style:    style.Derive(f, params),
	}

	plan.Sections = planSections(profile, params.Energy)
	for _, s := range plan.Sections {
		plan.TotalBars += s.Bars
	}
	plan.Layers = activeLayers(profile, plan.Sections)

	if err := plan.Check(); err != nil {
		return SongPlan{}, err
	}
	return plan, nil
}

func planSections(profile genre.Profile, energy float64) []PlannedSection {
	threshold := profile.DropEnergyThreshold
	realizeDrops := energy >= threshold

	sections := make([]PlannedSection, 0, len(profile.Sections)+1)
	lastDrop := -1
	for _, shape := range profile.Sections {
		s := PlannedSection{
			Kind:   shape.Kind,
			Bars:   shape.Bars,
			Energy: shape.Energy,
		}
		if shape.DramaticMoment && realizeDrops {
			s.DramaticMoment = true
			s.Energy = math.Min(1, shape.Energy+energy*DropEnergyBoost)
			s.DramaIntensity = dramaIntensity(energy, threshold)
			lastDrop = len(sections)
		}
		if shape.Kind == genre.Build {
			s.FilterSweep = true
			s.VolumeBuild = true
		}
		sections = append(sections, s)
	}

	if profile.DoubleDrop && lastDrop >= 0 && energy >= threshold+DoubleDropMargin {
		repeat := sections[lastDrop]
		repeat.DramaIntensity = 1
		sections = append(sections[:lastDrop+1], append([]PlannedSection{repeat}, sections[lastDrop+1:]...)...)
	}

	start := 0
	for i := range sections {
		sections[i].StartBar = start
		start += sections[i].Bars
	}
	return sections
}

// dramaIntensity grows from 0.5 at the threshold to 1 at full energy.
func dramaIntensity(energy, threshold float64) float64 {
	if threshold >= 1 {
		return 1
	}
	v := 0.5 + 0.5*(energy-threshold)/(1-threshold)
	return math.Max(0.5, math.Min(1, v))
}

// activeLayers keeps the layers whose minimum energy is reached by at least one
// section. Kick and bass are kept whenever the profile declares them.
func activeLayers(profile genre.Profile, sections []PlannedSection) []genre.Layer {
	peak := 0.0
	for _, s := range sections {
		peak = math.Max(peak, s.Energy)
	}
	var layers []genre.Layer
	for _, l := range profile.Layers {
		if l.MinEnergy <= peak || l.Role == genre.Kick || l.Role == genre.Bass {
			layers = append(layers, l)
		}
	}
	return layers
}

func chooseScale(requested theory.Scale, preferred []theory.Scale) theory.Scale {
	if len(preferred) == 0 {
		return requested
	}
	for _, s := range preferred {
		if s == requested {
			return requested
		}
	}
	return preferred[0]
}

func checkProfile(p genre.Profile) error {
	switch {
	case p.MinTempo <= 0 || p.MaxTempo < p.MinTempo:
		return errs.Invariant("profile %s: bad tempo range [%d, %d]", p.Genre, p.MinTempo, p.MaxTempo)
	case len(p.Sections) == 0:
		return errs.Invariant("profile %s: no section shapes", p.Genre)
	case len(p.Layers) == 0:
		return errs.Invariant("profile %s: no layers", p.Genre)
	}
	for i, s := range p.Sections {
		if s.Bars <= 0 {
			return errs.Invariant("profile %s: section %d has %d bars", p.Genre, i, s.Bars)
		}
	}
	return nil
}

// Check verifies that sections tile the song exactly.
func (p SongPlan) Check() error {
	if len(p.Sections) == 0 {
		return errs.Invariant("plan has no sections")
	}
	next := 0
	for i, s := range p.Sections {
		if s.Bars <= 0 {
			return errs.Invariant("section %d has %d bars", i, s.Bars)
		}
		if s.StartBar != next {
			return errs.Invariant("section %d starts at bar %d, expected %d", i, s.StartBar, next)
		}
		if s.Energy < 0 || s.Energy > 1 {
			return errs.Invariant("section %d energy %v out of range", i, s.Energy)
		}
		next += s.Bars
	}
	if next != p.TotalBars {
		return errs.Invariant("sections cover %d bars, plan says %d", next, p.TotalBars)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
