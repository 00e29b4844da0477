package composer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gosmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/groove"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

func testSpec(t *testing.T, g genre.Genre, energy float64) planner.SongSpec {
	t.Helper()
	profile, err := genre.NewCatalog().Profile(g)
	require.NoError(t, err)

	features := models.ImageFeatures{
		AvgR: 0.4, AvgG: 0.5, AvgB: 0.7,
		Brightness: 0.6, Hue: 0.6, Saturation: 0.5, Colorfulness: 0.4, Contrast: 0.3,
	}
	params := models.MusicParameters{
		TempoBPM:      120,
		BaseFrequency: 261.63,
		Energy:        energy,
		Brightness:    0.6,
		Reverb:        0.3,
		ScaleType:     int(theory.Major),
	}
	plan, err := planner.Plan(features, params, profile)
	require.NoError(t, err)
	spec, err := planner.ToSpec(plan)
	require.NoError(t, err)
	return spec
}

func tightOptions() Options {
	return Options{TicksPerQuarter: 480, Seed: 7}
}

type noteOn struct {
	tick    uint32
	channel uint8
	key     uint8
}

// parse reads the composed bytes back and returns note-ons per track name.
func parse(t *testing.T, res *Result) (*gosmf.SMF, map[string][]noteOn) {
	t.Helper()
	data, err := res.Writer.Bytes()
	require.NoError(t, err)
	file, err := gosmf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	notes := map[string][]noteOn{}
	for _, track := range file.Tracks {
		var (
			name         string
			tick         uint32
			ch, key, vel uint8
			collected    []noteOn
		)
		for _, ev := range track {
			tick += ev.Delta
			ev.Message.GetMetaTrackName(&name)
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				collected = append(collected, noteOn{tick: tick, channel: ch, key: key})
			}
		}
		notes[name] = collected
	}
	return file, notes
}

func TestCompose_AllGenres(t *testing.T) {
	for _, g := range genre.All {
		for _, energy := range []float64{0.3, 0.9} {
			spec := testSpec(t, g, energy)
			res, err := New(genre.NewCatalog(), DefaultOptions()).Compose(spec)
			require.NoError(t, err, "%s at %v", g, energy)

			assert.Positive(t, res.NoteCount)
			assert.Equal(t, spec.TotalBars*4*480, res.TotalTicks)
			assert.Equal(t, len(spec.Tracks)+1, res.Writer.TrackCount())
			require.Len(t, res.Tracks, len(spec.Tracks))

			file, _ := parse(t, res)
			require.Len(t, file.Tracks, len(spec.Tracks)+1)
			for _, track := range file.Tracks {
				var end uint32
				for _, ev := range track {
					end += ev.Delta
				}
				assert.LessOrEqual(t, end, uint32(res.TotalTicks))
			}
		}
	}
}

func TestCompose_Deterministic(t *testing.T) {
	spec := testSpec(t, genre.RetroWave, 0.8)
	c := New(genre.NewCatalog(), DefaultOptions())

	a, err := c.Compose(spec)
	require.NoError(t, err)
	b, err := c.Compose(spec)
	require.NoError(t, err)

	ab, err := a.Writer.Bytes()
	require.NoError(t, err)
	bb, err := b.Writer.Bytes()
	require.NoError(t, err)
	assert.Equal(t, ab, bb)

	opts := DefaultOptions()
	opts.Seed = 99
	other, err := New(genre.NewCatalog(), opts).Compose(spec)
	require.NoError(t, err)
	ob, err := other.Writer.Bytes()
	require.NoError(t, err)
	assert.NotEqual(t, ab, ob, "a different seed humanizes differently")
}

func TestCompose_Channels(t *testing.T) {
	spec := testSpec(t, genre.EDMDrop, 0.9)
	res, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)

	file, notes := parse(t, res)
	for _, tr := range spec.Tracks {
		ons := notes[tr.Role.String()]
		require.NotEmpty(t, ons, tr.Role.String())
		for _, n := range ons {
			assert.Equal(t, uint8(tr.Channel), n.channel, tr.Role.String())
		}
	}

	// drum tracks carry no program change
	for i, track := range file.Tracks[1:] {
		var ch, prog uint8
		changes := 0
		for _, ev := range track {
			if ev.Message.GetProgramChange(&ch, &prog) {
				changes++
				assert.Equal(t, uint8(spec.Tracks[i].Program), prog)
			}
		}
		if spec.Tracks[i].Family == genre.FamilyDrums {
			assert.Zero(t, changes, spec.Tracks[i].Role.String())
		} else {
			assert.Equal(t, 1, changes, spec.Tracks[i].Role.String())
		}
	}
}

func TestCompose_FillBeforeSectionChange(t *testing.T) {
	spec := testSpec(t, genre.EDMDrop, 0.9)
	res, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)
	_, notes := parse(t, res)

	// the first build spans bars 4..11; its last beat is a snare roll
	build := spec.Sections[1]
	require.Equal(t, genre.Build, build.Name)
	from := uint32((build.StartBar+build.Bars-1)*1920 + 3*480)
	to := from + 480

	roll := 0
	for _, n := range notes["snare"] {
		if n.tick >= from && n.tick < to {
			assert.Equal(t, uint8(pattern.SnareNote), n.key)
			roll++
		}
	}
	assert.Equal(t, 4, roll)
}

func TestCompose_DropCrash(t *testing.T) {
	spec := testSpec(t, genre.EDMDrop, 0.9)
	res, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)
	_, notes := parse(t, res)

	var crashes []uint32
	for _, n := range notes["hihat"] {
		if n.key == pattern.CrashNote {
			crashes = append(crashes, n.tick)
		}
	}
	var want []uint32
	for _, s := range spec.Sections {
		if s.DramaticMoment {
			want = append(want, uint32(s.StartBar*1920))
		}
	}
	assert.Equal(t, want, crashes)
}

func TestCompose_QuietSectionsThinHats(t *testing.T) {
	spec := testSpec(t, genre.EDMChill, 0.3)
	intro := spec.Sections[0]
	require.Equal(t, genre.Intro, intro.Name)
	require.Less(t, intro.TargetEnergy, 0.3)

	res, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)
	_, notes := parse(t, res)

	end := uint32((intro.StartBar + intro.Bars) * 1920)
	var hats []uint32
	for _, n := range notes["hihat"] {
		if n.tick < end {
			hats = append(hats, n.tick)
		}
	}
	require.Len(t, hats, intro.Bars*4)
	for _, tick := range hats {
		assert.Zero(t, tick%480, "hat at %d", tick)
	}
}

func TestCompose_TicksPerQuarter(t *testing.T) {
	spec := testSpec(t, genre.EDMChill, 0.5)
	res, err := New(genre.NewCatalog(), Options{TicksPerQuarter: 96}).Compose(spec)
	require.NoError(t, err)
	assert.Equal(t, spec.TotalBars*4*96, res.TotalTicks)
	assert.Equal(t, 96, res.Writer.TicksPerQuarter())
}

func TestCompose_Automation(t *testing.T) {
	spec := testSpec(t, genre.EDMDrop, 0.5)
	res, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)

	require.NotEmpty(t, res.Automation)
	for _, lane := range res.Automation {
		s := spec.Sections[lane.Section]
		assert.Equal(t, genre.Build, lane.Kind)
		assert.Len(t, lane.FilterCutoff, s.Bars)
		assert.Len(t, lane.Volume, s.Bars)
		assert.Equal(t, 20, lane.FilterCutoff[0])
		assert.Equal(t, 127, lane.FilterCutoff[s.Bars-1])
	}
}

func TestCompose_InvalidSpec(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *planner.SongSpec)
	}{
		{"role outside the genre", func(s *planner.SongSpec) {
			s.Tracks = append(s.Tracks, planner.TrackSpec{Role: genre.Choir, Channel: 12, Program: 52})
		}},
		{"sections do not tile", func(s *planner.SongSpec) { s.Sections[1].StartBar++ }},
		{"unknown genre", func(s *planner.SongSpec) { s.Genre = genre.Genre(42) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec(t, genre.EDMDrop, 0.9)
			tt.mutate(&spec)
			_, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
			assert.ErrorIs(t, err, errs.ErrInvariantViolation)
		})
	}
}

func TestComposeToFile(t *testing.T) {
	dir := t.TempDir()
	c := New(genre.NewCatalog(), DefaultOptions())

	path := filepath.Join(dir, "song.mid")
	res, err := c.ComposeToFile(testSpec(t, genre.Cinematic, 0.7), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := res.Writer.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, data)

	bad := testSpec(t, genre.Cinematic, 0.7)
	bad.TotalBars++
	broken := filepath.Join(dir, "broken.mid")
	_, err = c.ComposeToFile(bad, broken)
	assert.ErrorIs(t, err, errs.ErrInvariantViolation)
	assert.NoFileExists(t, broken)
}

func TestComposeStems(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stems")
	spec := testSpec(t, genre.EDMChill, 0.9)

	paths, err := New(genre.NewCatalog(), DefaultOptions()).ComposeStems(spec, dir)
	require.NoError(t, err)
	assert.Len(t, paths, len(spec.Tracks))
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestCompose_CustomDrums(t *testing.T) {
	kit, err := groove.Parse(context.Background(), `pattern(drum=kick, grid="x-------x-------")`)
	require.NoError(t, err)

	spec := testSpec(t, genre.EDMDrop, 0.9)
	opts := tightOptions()
	opts.Drums = kit

	res, err := New(genre.NewCatalog(), opts).Compose(spec)
	require.NoError(t, err)
	_, notes := parse(t, res)

	kicks := notes[genre.Kick.String()]
	require.NotEmpty(t, kicks)
	for _, n := range kicks {
		assert.Equal(t, uint8(pattern.KickNote), n.key)
		assert.Zero(t, n.tick%(2*480), "kick at %d", n.tick)
	}

	// tracks the kit does not name keep their generated parts
	generated, err := New(genre.NewCatalog(), tightOptions()).Compose(spec)
	require.NoError(t, err)
	_, want := parse(t, generated)
	assert.Equal(t, want[genre.Bass.String()], notes[genre.Bass.String()])
	assert.Less(t, len(kicks), len(want[genre.Kick.String()]))
}

func TestCompose_ChordProgression(t *testing.T) {
	chords, err := theory.ParseProgression([]string{"Am", "F"})
	require.NoError(t, err)

	spec := testSpec(t, genre.Cinematic, 0.7)
	require.Equal(t, 60, spec.RootNote)
	opts := tightOptions()
	opts.Chords = chords

	res, err := New(genre.NewCatalog(), opts).Compose(spec)
	require.NoError(t, err)
	_, notes := parse(t, res)

	tests := []struct {
		role genre.Role
		keys []uint8
	}{
		// A4 C5 E5 and F4 A4 C5
		{genre.Pad, []uint8{65, 69, 72, 76}},
		// A3 and F3 with their octaves
		{genre.Bass, []uint8{53, 57, 65, 69}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			got := notes[tt.role.String()]
			require.NotEmpty(t, got)
			for _, n := range got {
				assert.Contains(t, tt.keys, n.key, "tick %d", n.tick)
			}
		})
	}
}
