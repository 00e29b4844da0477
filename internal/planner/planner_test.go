package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

func testFeatures() models.ImageFeatures {
	return models.ImageFeatures{
		AvgR: 0.4, AvgG: 0.5, AvgB: 0.7,
		Brightness: 0.6, Hue: 0.6, Saturation: 0.5, Colorfulness: 0.4, Contrast: 0.3,
	}
}

func testParams(energy float64) models.MusicParameters {
	return models.MusicParameters{
		TempoBPM:      120,
		BaseFrequency: 261.63,
		Energy:        energy,
		Brightness:    0.6,
		Reverb:        0.3,
		ScaleType:     int(theory.Major),
		PatternType:   0,
	}
}

func profile(t *testing.T, g genre.Genre) genre.Profile {
	t.Helper()
	p, err := genre.NewCatalog().Profile(g)
	require.NoError(t, err)
	return p
}

func dramaticSections(plan SongPlan) []PlannedSection {
	var out []PlannedSection
	for _, s := range plan.Sections {
		if s.DramaticMoment {
			out = append(out, s)
		}
	}
	return out
}

func TestPlan_LowEnergyHasNoDrop(t *testing.T) {
	plan, err := Plan(testFeatures(), testParams(0.3), profile(t, genre.EDMChill))
	require.NoError(t, err)

	assert.Len(t, plan.Sections, 5)
	assert.Empty(t, dramaticSections(plan))
	assert.Equal(t, 28, plan.TotalBars)
	assert.GreaterOrEqual(t, plan.TempoBPM, 100)
	assert.LessOrEqual(t, plan.TempoBPM, 115)

	drop := plan.Sections[2]
	assert.Equal(t, genre.Drop, drop.Kind, "the slot keeps its kind and length")
	assert.Equal(t, 8, drop.Bars)
	assert.InDelta(t, 0.7, drop.Energy, 1e-9)
	assert.Zero(t, drop.DramaIntensity)
}

func TestPlan_HighEnergyRealizesDrop(t *testing.T) {
	plan, err := Plan(testFeatures(), testParams(0.9), profile(t, genre.EDMChill))
	require.NoError(t, err)

	drops := dramaticSections(plan)
	require.Len(t, drops, 1)
	assert.GreaterOrEqual(t, drops[0].DramaIntensity, 0.7)
	assert.InDelta(t, 0.97, drops[0].Energy, 1e-9)
	assert.Equal(t, 28, plan.TotalBars)
}

func TestPlan_TempoClamp(t *testing.T) {
	tests := []struct {
		name  string
		genre genre.Genre
		tempo float64
		want  int
	}{
		{"below range", genre.EDMChill, 60, 100},
		{"above range", genre.EDMChill, 180, 115},
		{"inside range rounds", genre.EDMChill, 107.6, 108},
		{"cinematic upper bound", genre.Cinematic, 120, 90},
		{"drop lower bound", genre.EDMDrop, 90, 125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams(0.5)
			params.TempoBPM = tt.tempo
			plan, err := Plan(testFeatures(), params, profile(t, tt.genre))
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.TempoBPM)
		})
	}
}

func TestPlan_SectionsTileTheSong(t *testing.T) {
	for _, g := range genre.All {
		for _, energy := range []float64{0, 0.25, 0.5, 0.75, 1} {
			plan, err := Plan(testFeatures(), testParams(energy), profile(t, g))
			require.NoError(t, err, "%s at %v", g, energy)

			next := 0
			for _, s := range plan.Sections {
				assert.Equal(t, next, s.StartBar)
				assert.Positive(t, s.Bars)
				next += s.Bars
			}
			assert.Equal(t, plan.TotalBars, next)
		}
	}
}

func TestPlan_DropPresenceIsMonotonicInEnergy(t *testing.T) {
	for _, g := range genre.All {
		t.Run(g.String(), func(t *testing.T) {
			prev := 0
			for i := 0; i <= 20; i++ {
				energy := float64(i) / 20
				plan, err := Plan(testFeatures(), testParams(energy), profile(t, g))
				require.NoError(t, err)
				n := len(dramaticSections(plan))
				assert.GreaterOrEqual(t, n, prev, "energy %v", energy)
				prev = n
			}
			assert.Positive(t, prev, "full energy always produces a drop")
		})
	}
}

func TestPlan_DoubleDrop(t *testing.T) {
	p := profile(t, genre.EDMDrop)

	plain, err := Plan(testFeatures(), testParams(0.8), p)
	require.NoError(t, err)
	assert.Len(t, plain.Sections, 6)
	assert.Len(t, dramaticSections(plain), 2)
	assert.Equal(t, 36, plain.TotalBars)

	double, err := Plan(testFeatures(), testParams(0.95), p)
	require.NoError(t, err)
	require.Len(t, double.Sections, 7)
	assert.Equal(t, 44, double.TotalBars)
	assert.Equal(t, genre.Drop, double.Sections[4].Kind)
	assert.Equal(t, genre.Drop, double.Sections[5].Kind)
	assert.Equal(t, 1.0, double.Sections[5].DramaIntensity)
	assert.Equal(t, genre.Outro, double.Sections[6].Kind)
	assert.Equal(t, 40, double.Sections[6].StartBar)

	// EDM_CHILL never doubles
	chill, err := Plan(testFeatures(), testParams(1), profile(t, genre.EDMChill))
	require.NoError(t, err)
	assert.Len(t, chill.Sections, 5)
}

func TestPlan_BuildSectionsCarryAutomation(t *testing.T) {
	plan, err := Plan(testFeatures(), testParams(0.5), profile(t, genre.EDMDrop))
	require.NoError(t, err)
	for _, s := range plan.Sections {
		assert.Equal(t, s.Kind == genre.Build, s.FilterSweep)
		assert.Equal(t, s.Kind == genre.Build, s.VolumeBuild)
	}
}

func TestPlan_ScaleAndRoot(t *testing.T) {
	params := testParams(0.5)
	params.ScaleType = int(theory.Lydian)
	plan, err := Plan(testFeatures(), params, profile(t, genre.EDMChill))
	require.NoError(t, err)
	assert.Equal(t, theory.Lydian, plan.Scale, "a preferred scale is kept")
	assert.Equal(t, 60, plan.RootNote)

	plan, err = Plan(testFeatures(), params, profile(t, genre.Cinematic))
	require.NoError(t, err)
	assert.Equal(t, theory.Minor, plan.Scale, "otherwise the first preferred scale wins")

	params.BaseFrequency = 55
	plan, err = Plan(testFeatures(), params, profile(t, genre.Cinematic))
	require.NoError(t, err)
	assert.Equal(t, MinRootNote, plan.RootNote)

	params.BaseFrequency = 4000
	plan, err = Plan(testFeatures(), params, profile(t, genre.Cinematic))
	require.NoError(t, err)
	assert.Equal(t, MaxRootNote, plan.RootNote)
}

func TestPlan_ActiveLayers(t *testing.T) {
	quiet := genre.Profile{
		Genre:    genre.EDMChill,
		MinTempo: 100,
		MaxTempo: 110,
		Sections: []genre.SectionShape{
			{Kind: genre.Intro, Bars: 4, Energy: 0.2},
			{Kind: genre.Outro, Bars: 4, Energy: 0.4},
		},
		Layers: []genre.Layer{
			{Role: genre.HiHat, Program: 42, MinEnergy: 0.3},
			{Role: genre.Bass, Program: 38, MinEnergy: 0.9},
			{Role: genre.Arp, Program: 88, MinEnergy: 0.6},
			{Role: genre.Pad, Program: 89},
		},
		DropEnergyThreshold: 0.5,
	}

	plan, err := Plan(testFeatures(), testParams(0.5), quiet)
	require.NoError(t, err)
	assert.Equal(t, []genre.Role{genre.HiHat, genre.Bass, genre.Pad}, plan.ActiveRoles())
	assert.Equal(t, 8, plan.TotalBars)
}

func TestPlan_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *models.ImageFeatures, p *models.MusicParameters)
	}{
		{"zero tempo", func(_ *models.ImageFeatures, p *models.MusicParameters) { p.TempoBPM = 0 }},
		{"negative frequency", func(_ *models.ImageFeatures, p *models.MusicParameters) { p.BaseFrequency = -1 }},
		{"energy above one", func(_ *models.ImageFeatures, p *models.MusicParameters) { p.Energy = 1.2 }},
		{"unknown scale", func(_ *models.ImageFeatures, p *models.MusicParameters) { p.ScaleType = 7 }},
		{"unknown pattern", func(_ *models.ImageFeatures, p *models.MusicParameters) { p.PatternType = 3 }},
		{"hue below zero", func(f *models.ImageFeatures, _ *models.MusicParameters) { f.Hue = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, p := testFeatures(), testParams(0.5)
			tt.mutate(&f, &p)
			_, err := Plan(f, p, profile(t, genre.EDMChill))
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestPlan_BrokenProfile(t *testing.T) {
	broken := profile(t, genre.EDMChill)
	broken.Sections[1].Bars = 0
	_, err := Plan(testFeatures(), testParams(0.5), broken)
	assert.ErrorIs(t, err, errs.ErrInvariantViolation)

	inverted := profile(t, genre.EDMChill)
	inverted.MinTempo, inverted.MaxTempo = 120, 100
	_, err = Plan(testFeatures(), testParams(0.5), inverted)
	assert.ErrorIs(t, err, errs.ErrInvariantViolation)
}

func TestPlan_Deterministic(t *testing.T) {
	a, err := Plan(testFeatures(), testParams(0.7), profile(t, genre.RetroWave))
	require.NoError(t, err)
	b, err := Plan(testFeatures(), testParams(0.7), profile(t, genre.RetroWave))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
