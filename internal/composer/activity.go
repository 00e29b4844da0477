package composer

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

// Activity says which role families play in a section.
type Activity struct {
	Kick    bool
	Snare   bool
	HiHat   bool
	Perc    bool
	Bass    bool
	Harmony bool
	Lead    bool
	Arp     bool
	FX      bool
	// LeadFromBar delays the lead inside the section.
	LeadFromBar int
}

// ActivityFor is the per-section rule table. It depends only on its
// arguments.
func ActivityFor(profile genre.Profile, section planner.SectionSpec, mood float64) Activity {
	switch section.Name {
	case genre.Drop:
		return Activity{
			Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
			Harmony: true, Lead: true, Arp: true, FX: true,
		}
	case genre.Build:
		a := Activity{
			Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
			Harmony: true, Arp: true, FX: true,
		}
		if mood > 0.5 {
			a.Lead = true
			a.LeadFromBar = section.Bars / 2
		}
		return a
	case genre.Break:
		return Activity{Bass: true, Harmony: true, Arp: true, Lead: mood > 0.6}
	case genre.Intro:
		return Activity{HiHat: true, Harmony: true, Kick: profile.Groove == theory.Driving}
	case genre.Outro:
		return Activity{Kick: true, HiHat: true, Bass: true, Harmony: true, Lead: true}
	default:
		return Activity{}
	}
}

// Allows reports whether role plays under a.
func (a Activity) Allows(role genre.Role) bool {
	switch role {
	case genre.Kick:
		return a.Kick
	case genre.Snare:
		return a.Snare
	case genre.HiHat:
		return a.HiHat
	}
	switch role.Family() {
	case genre.FamilyPercussion:
		return a.Perc
	case genre.FamilyBass:
		return a.Bass
	case genre.FamilyHarmony:
		return a.Harmony
	case genre.FamilyLead:
		return a.Lead
	case genre.FamilyArp:
		return a.Arp
	case genre.FamilyFX:
		return a.FX
	default:
		return false
	}
}

// plays combines the rule table with the layer's energy floor. Harmony
// layers ignore the floor so that no section is left empty.
func plays(a Activity, layer genre.Layer, section planner.SectionSpec) bool {
	if !a.Allows(layer.Role) {
		return false
	}
	if layer.Role.Family() == genre.FamilyHarmony {
		return true
	}
	return section.TargetEnergy >= layer.MinEnergy
}
