package genre

import (
	"fmt"
	"sort"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

// Catalog is a read-only set of genre profiles. Build one with NewCatalog and
// pass it to whatever needs it; lookups return copies, so a Catalog is safe
// for concurrent use.
type Catalog struct {
	profiles map[Genre]Profile
}

// NewCatalog returns the built-in catalog of the four genre templates.
func NewCatalog() *Catalog {
	return NewCatalogFrom(
		edmChillProfile(),
		edmDropProfile(),
		retroWaveProfile(),
		cinematicProfile(),
	)
}

// NewCatalogFrom builds a catalog from explicit profiles. A later profile for
// the same genre replaces an earlier one.
func NewCatalogFrom(profiles ...Profile) *Catalog {
	c := &Catalog{profiles: make(map[Genre]Profile, len(profiles))}
	for _, p := range profiles {
		c.profiles[p.Genre] = p.clone()
	}
	return c
}

// Profile returns the profile for g.
func (c *Catalog) Profile(g Genre) (Profile, error) {
	p, ok := c.profiles[g]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownGenre, g)
	}
	return p.clone(), nil
}

// Genres lists the genres present in the catalog.
func (c *Catalog) Genres() []Genre {
	out := make([]Genre, 0, len(c.profiles))
	for g := range c.profiles {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func edmChillProfile() Profile {
	return Profile{
		Genre:    EDMChill,
		Name:     "EDM Chill",
		MinTempo: 100,
		MaxTempo: 115,
		Sections: []SectionShape{
			{Kind: Intro, Bars: 4, Energy: 0.2},
			{Kind: Build, Bars: 8, Energy: 0.5},
			{Kind: Drop, Bars: 8, Energy: 0.7, DramaticMoment: true},
			{Kind: Break, Bars: 4, Energy: 0.4},
			{Kind: Outro, Bars: 4, Energy: 0.2},
		},
		Layers: []Layer{
			{Role: Kick, Program: pattern.KickNote},
			{Role: HiHat, Program: pattern.ClosedHatNote},
			{Role: Snare, Program: pattern.SnareNote, MinEnergy: 0.3},
			{Role: Bass, Program: 38, MinEnergy: 0.2, DuckOnKick: true},
			{Role: Pad, Program: 89, DuckOnKick: true},
			{Role: Lead, Program: 81, MinEnergy: 0.5, DuckOnKick: true},
			{Role: Arp, Program: 88, MinEnergy: 0.6, DuckOnKick: true},
		},
		DropEnergyThreshold: 0.4,
		PreferredScales:     []theory.Scale{theory.Major, theory.Lydian},
		Groove:              theory.Chill,
		UseSwing:            true,
		SwingAmount:         0.15,
		GhostSnare:          true,
		Sidechain:           true,
		Fill:                pattern.FillOpenHat,
	}
}

func edmDropProfile() Profile {
	return Profile{
		Genre:    EDMDrop,
		Name:     "EDM Drop",
		MinTempo: 125,
		MaxTempo: 135,
		Sections: []SectionShape{
			{Kind: Intro, Bars: 4, Energy: 0.3},
			{Kind: Build, Bars: 8, Energy: 0.6},
			{Kind: Drop, Bars: 8, Energy: 1.0, DramaticMoment: true},
			{Kind: Build, Bars: 4, Energy: 0.7},
			{Kind: Drop, Bars: 8, Energy: 1.0, DramaticMoment: true},
			{Kind: Outro, Bars: 4, Energy: 0.3},
		},
		Layers: []Layer{
			{Role: Kick, Program: pattern.KickNote},
			{Role: Snare, Program: 40},
			{Role: HiHat, Program: pattern.ClosedHatNote},
			{Role: Bass, Program: 38, DuckOnKick: true},
			{Role: Lead, Program: 80, MinEnergy: 0.5},
			{Role: Pluck, Program: 25, MinEnergy: 0.6},
			{Role: Pad, Program: 89, MinEnergy: 0.3},
			{Role: FX, Program: 99, MinEnergy: 0.8},
		},
		DropEnergyThreshold: 0.7,
		PreferredScales:     []theory.Scale{theory.Minor, theory.Dorian},
		Groove:              theory.Driving,
		Sidechain:           true,
		DoubleDrop:          true,
		Fill:                pattern.FillSnareRoll,
	}
}

func retroWaveProfile() Profile {
	return Profile{
		Genre:    RetroWave,
		Name:     "RetroWave",
		MinTempo: 90,
		MaxTempo: 110,
		Sections: []SectionShape{
			{Kind: Intro, Bars: 4, Energy: 0.3},
			{Kind: Build, Bars: 8, Energy: 0.5},
			{Kind: Drop, Bars: 8, Energy: 0.8, DramaticMoment: true},
			{Kind: Break, Bars: 8, Energy: 0.5},
			{Kind: Drop, Bars: 8, Energy: 0.8, DramaticMoment: true},
			{Kind: Outro, Bars: 4, Energy: 0.3},
		},
		Layers: []Layer{
			{Role: Kick, Program: pattern.KickNote},
			{Role: Snare, Program: 40, MinEnergy: 0.3},
			{Role: HiHat, Program: pattern.ClosedHatNote},
			{Role: Bass, Program: 38},
			{Role: Lead, Program: 81, MinEnergy: 0.4},
			{Role: Pad, Program: 89, MinEnergy: 0.2},
			{Role: Arp, Program: 88, MinEnergy: 0.6},
		},
		DropEnergyThreshold: 0.6,
		PreferredScales:     []theory.Scale{theory.Major, theory.Lydian},
		Groove:              theory.Chill,
		DoubleDrop:          true,
		Fill:                pattern.FillTomRun,
	}
}

func cinematicProfile() Profile {
	return Profile{
		Genre:    Cinematic,
		Name:     "Cinematic",
		MinTempo: 70,
		MaxTempo: 90,
		Sections: []SectionShape{
			{Kind: Intro, Bars: 8, Energy: 0.2},
			{Kind: Build, Bars: 12, Energy: 0.5},
			{Kind: Drop, Bars: 8, Energy: 0.9, DramaticMoment: true},
			{Kind: Break, Bars: 8, Energy: 0.4},
			{Kind: Outro, Bars: 8, Energy: 0.2},
		},
		Layers: []Layer{
			{Role: Perc, Program: 47, MinEnergy: 0.3},
			{Role: Strings, Program: 49},
			{Role: Brass, Program: 61, MinEnergy: 0.5},
			{Role: Choir, Program: 52, MinEnergy: 0.4},
			{Role: Pad, Program: 89},
			{Role: Piano, Program: 0, MinEnergy: 0.6},
		},
		DropEnergyThreshold: 0.5,
		PreferredScales:     []theory.Scale{theory.Minor, theory.Dorian},
		Groove:              theory.Straight,
		Fill:                pattern.FillTimpaniRoll,
	}
}
