package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

func TestActivityFor(t *testing.T) {
	driving := genre.Profile{Groove: theory.Driving}
	chill := genre.Profile{Groove: theory.Chill}

	tests := []struct {
		name    string
		profile genre.Profile
		section planner.SectionSpec
		mood    float64
		want    Activity
	}{
		{
			name:    "drop plays everything",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Drop, Bars: 8},
			want: Activity{Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
				Harmony: true, Lead: true, Arp: true, FX: true},
		},
		{
			name:    "build with a dark mood has no lead",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Build, Bars: 8},
			mood:    0.4,
			want: Activity{Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
				Harmony: true, Arp: true, FX: true},
		},
		{
			name:    "build with a bright mood brings the lead in halfway",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Build, Bars: 8},
			mood:    0.8,
			want: Activity{Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
				Harmony: true, Arp: true, FX: true, Lead: true, LeadFromBar: 4},
		},
		{
			name:    "break drops the drums",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Break, Bars: 4},
			mood:    0.5,
			want:    Activity{Bass: true, Harmony: true, Arp: true},
		},
		{
			name:    "intro kick only for driving grooves",
			profile: driving,
			section: planner.SectionSpec{Name: genre.Intro, Bars: 4},
			want:    Activity{Kick: true, HiHat: true, Harmony: true},
		},
		{
			name:    "chill intro",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Intro, Bars: 4},
			want:    Activity{HiHat: true, Harmony: true},
		},
		{
			name:    "outro",
			profile: chill,
			section: planner.SectionSpec{Name: genre.Outro, Bars: 4},
			want:    Activity{Kick: true, HiHat: true, Bass: true, Harmony: true, Lead: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivityFor(tt.profile, tt.section, tt.mood))
		})
	}
}

func TestPlays_EnergyFloor(t *testing.T) {
	all := Activity{Kick: true, Snare: true, HiHat: true, Perc: true, Bass: true,
		Harmony: true, Lead: true, Arp: true, FX: true}
	quiet := planner.SectionSpec{Name: genre.Drop, Bars: 8, TargetEnergy: 0.3}

	assert.False(t, plays(all, genre.Layer{Role: genre.Arp, MinEnergy: 0.6}, quiet))
	assert.True(t, plays(all, genre.Layer{Role: genre.Arp, MinEnergy: 0.3}, quiet))
	assert.True(t, plays(all, genre.Layer{Role: genre.Piano, MinEnergy: 0.6}, quiet), "harmony ignores the floor")
	assert.False(t, plays(Activity{}, genre.Layer{Role: genre.Pad}, quiet))
}

func TestProgression(t *testing.T) {
	assert.Equal(t, []int{0, 5, 3, 4}, Progression(genre.EDMChill, theory.Major, genre.Intro))
	assert.Equal(t, []int{3, 4, 0, 5}, Progression(genre.EDMChill, theory.Lydian, genre.Drop))
	assert.Equal(t, []int{0, 3, 4, 4}, Progression(genre.EDMChill, theory.Major, genre.Break))

	// no dark set for EDM_CHILL, so the shared one applies
	assert.Equal(t, darkProgressions[1], Progression(genre.EDMChill, theory.Minor, genre.Drop))
	assert.Equal(t, []int{0, 2, 6, 5}, Progression(genre.Cinematic, theory.Dorian, genre.Break))

	for _, g := range genre.All {
		for _, s := range []theory.Scale{theory.Major, theory.Minor, theory.Dorian, theory.Lydian} {
			for _, k := range []genre.SectionKind{genre.Intro, genre.Build, genre.Drop, genre.Break, genre.Outro} {
				p := Progression(g, s, k)
				assert.NotEmpty(t, p)
				for _, d := range p {
					assert.GreaterOrEqual(t, d, 0)
					assert.Less(t, d, 7)
				}
			}
		}
	}
}

func TestVoicingSize(t *testing.T) {
	tests := []struct {
		complexity float64
		want       int
	}{
		{0, theory.Triad},
		{0.39, theory.Triad},
		{0.4, theory.Seventh},
		{0.65, theory.Ninth},
		{0.85, theory.Eleventh},
		{1, theory.Eleventh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VoicingSize(tt.complexity), "complexity %v", tt.complexity)
	}
}

func TestMotif(t *testing.T) {
	assert.Equal(t, brightMotif, Motif(0.9))
	assert.Equal(t, evenMotif, Motif(0.5))
	assert.Equal(t, darkMotif, Motif(0.1))
}
