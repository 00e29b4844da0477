// Package genre holds the genre vocabulary and the read-only catalog of genre
// templates that drive song structure and instrumentation.
package genre

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

// Genre is the closed set of supported genres.
type Genre int

const (
	EDMChill Genre = iota
	EDMDrop
	RetroWave
	Cinematic
)

// All lists every genre in catalog order.
var All = []Genre{EDMChill, EDMDrop, RetroWave, Cinematic}

// ErrUnknownGenre is returned for tags and values outside the genre set.
var ErrUnknownGenre = fmt.Errorf("%w: unknown genre", errs.ErrInvalidInput)

func (g Genre) String() string {
	switch g {
	case EDMChill:
		return "EDM_CHILL"
	case EDMDrop:
		return "EDM_DROP"
	case RetroWave:
		return "RETROWAVE"
	case Cinematic:
		return "CINEMATIC"
	default:
		return fmt.Sprintf("GENRE(%d)", int(g))
	}
}

// Parse converts a genre tag such as "EDM_CHILL" (case-insensitive) to a Genre.
func Parse(tag string) (Genre, error) {
	tag = strings.TrimSpace(tag)
	for _, g := range All {
		if strings.EqualFold(tag, g.String()) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGenre, tag)
}

// MarshalText encodes the genre as its tag.
func (g Genre) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// SectionKind tags a section of the song form.
type SectionKind int

const (
	Intro SectionKind = iota
	Build
	Drop
	Break
	Outro
)

func (k SectionKind) String() string {
	switch k {
	case Intro:
		return "intro"
	case Build:
		return "build"
	case Drop:
		return "drop"
	case Break:
		return "break"
	case Outro:
		return "outro"
	default:
		return "unknown"
	}
}

// MarshalText encodes the section kind as its tag.
func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Role is an instrument role within a genre's layer list.
type Role int

const (
	Kick Role = iota
	Snare
	HiHat
	Perc
	Bass
	Pad
	Strings
	Choir
	Piano
	Brass
	Lead
	Pluck
	Arp
	FX
)

var roleNames = map[Role]string{
	Kick: "kick", Snare: "snare", HiHat: "hihat", Perc: "perc", Bass: "bass",
	Pad: "pad", Strings: "strings", Choir: "choir", Piano: "piano", Brass: "brass",
	Lead: "lead", Pluck: "pluck", Arp: "arp", FX: "fx",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText encodes the role as its name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Family groups roles that the composer renders the same way.
type Family int

const (
	FamilyDrums Family = iota
	FamilyPercussion
	FamilyBass
	FamilyHarmony
	FamilyLead
	FamilyArp
	FamilyFX
)

func (f Family) String() string {
	switch f {
	case FamilyDrums:
		return "drums"
	case FamilyPercussion:
		return "percussion"
	case FamilyBass:
		return "bass"
	case FamilyHarmony:
		return "harmony"
	case FamilyLead:
		return "lead"
	case FamilyArp:
		return "arp"
	case FamilyFX:
		return "fx"
	default:
		return "unknown"
	}
}

// Family returns the rendering family of the role.
func (r Role) Family() Family {
	switch r {
	case Kick, Snare, HiHat:
		return FamilyDrums
	case Perc:
		return FamilyPercussion
	case Bass:
		return FamilyBass
	case Pad, Strings, Choir, Piano:
		return FamilyHarmony
	case Lead, Brass:
		return FamilyLead
	case Pluck, Arp:
		return FamilyArp
	default:
		return FamilyFX
	}
}

// SectionShape is one entry of a genre's section template.
type SectionShape struct {
	Kind   SectionKind
	Bars   int
	Energy float64
	// DramaticMoment marks a shape that becomes a drop when the input energy
	// reaches the profile's DropEnergyThreshold.
	DramaticMoment bool
}

// Layer is one instrument layer of a genre. For drum roles Program holds the
// General MIDI percussion key instead of a program number.
type Layer struct {
	Role       Role
	Program    int
	MinEnergy  float64
	DuckOnKick bool
}

// Profile is the template for one genre.
type Profile struct {
	Genre               Genre
	Name                string
	MinTempo            int
	MaxTempo            int
	Sections            []SectionShape
	Layers              []Layer
	DropEnergyThreshold float64
	PreferredScales     []theory.Scale
	Groove              theory.Groove
	UseSwing            bool
	SwingAmount         float64
	GhostSnare          bool
	Sidechain           bool
	// DoubleDrop lets high-energy inputs repeat the last drop back to back.
	DoubleDrop bool
	Fill       pattern.FillKind
}

// Layer returns the layer for role, if the profile declares one.
func (p Profile) Layer(role Role) (Layer, bool) {
	for _, l := range p.Layers {
		if l.Role == role {
			return l, true
		}
	}
	return Layer{}, false
}

// TemplateBars returns the sum of the section template lengths.
func (p Profile) TemplateBars() int {
	total := 0
	for _, s := range p.Sections {
		total += s.Bars
	}
	return total
}

func (p Profile) clone() Profile {
	c := p
	c.Sections = append([]SectionShape(nil), p.Sections...)
	c.Layers = append([]Layer(nil), p.Layers...)
	c.PreferredScales = append([]theory.Scale(nil), p.PreferredScales...)
	return c
}
