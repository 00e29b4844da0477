package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
)

const fixedID = "6f1c2a8e-3b7d-4e52-9a0c-1d2e3f405162"

type fakeRecorder struct {
	durations []bool
	genres    []string
	notes     []int
}

func (r *fakeRecorder) RecordGenerationDuration(_ context.Context, _ time.Duration, success bool) {
	r.durations = append(r.durations, success)
}

func (r *fakeRecorder) RecordComposition(_ context.Context, genre string, _, _, notes int) {
	r.genres = append(r.genres, genre)
	r.notes = append(r.notes, notes)
}

func newTestService(t *testing.T) (*GenerationService, *fakeRecorder, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	cfg := &config.Config{
		OutputDir:       dir,
		DefaultMode:     "default",
		HumanizeSeed:    1,
		Humanize:        true,
		TicksPerQuarter: 480,
	}
	rec := &fakeRecorder{}
	svc := NewGenerationService(cfg, genre.NewCatalog(), rec)
	svc.newID = func() string { return fixedID }
	return svc, rec, dir
}

func testRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Features: models.ImageFeatures{
			AvgR: 0.4, AvgG: 0.5, AvgB: 0.7,
			Brightness: 0.6, Hue: 0.6, Saturation: 0.5, Colorfulness: 0.4, Contrast: 0.3,
		},
		Params: models.MusicParameters{
			TempoBPM:      120,
			BaseFrequency: 261.63,
			Energy:        0.8,
			Brightness:    0.6,
			Reverb:        0.3,
		},
	}
}

func TestGenerate(t *testing.T) {
	svc, rec, dir := newTestService(t)

	res, err := svc.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, fixedID, res.ID)
	assert.Equal(t, "default", res.Mode)
	assert.Equal(t, filepath.Join(dir, "composition_"+fixedID+".mid"), res.Path)
	assert.FileExists(t, res.Path)
	assert.Equal(t, uint64(1), res.Seed)
	assert.Equal(t, "C4", res.RootName)

	require.NotNil(t, res.Summary)
	assert.Positive(t, res.Summary.Notes)
	assert.Equal(t, res.TotalBars*4*480, int(res.Summary.TotalTicks))
	assert.Equal(t, len(res.Tracks)+1, len(res.Summary.Tracks))
	assert.InDelta(t, float64(res.TempoBPM), res.Summary.TempoBPM, 0.01)

	assert.Equal(t, []bool{true}, rec.durations)
	assert.Equal(t, []string{res.Genre.String()}, rec.genres)
	assert.Equal(t, []int{res.Summary.Notes}, rec.notes)
}

func TestGenerate_GenreOverrideAndMode(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := testRequest()
	req.Genre = "cinematic"
	req.Mode = "gallery"

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, genre.Cinematic, res.Genre)
	assert.Equal(t, "gallery", res.Mode)
	assert.GreaterOrEqual(t, res.TempoBPM, 70)
	assert.LessOrEqual(t, res.TempoBPM, 90)
}

func TestGenerate_InvalidInputWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.GenerationRequest)
	}{
		{"unknown genre", func(r *models.GenerationRequest) { r.Genre = "POLKA" }},
		{"energy out of range", func(r *models.GenerationRequest) { r.Params.Energy = 2 }},
		{"feature out of range", func(r *models.GenerationRequest) { r.Features.Contrast = -1 }},
		{"zero tempo", func(r *models.GenerationRequest) { r.Params.TempoBPM = 0 }},
		{"bad drum program", func(r *models.GenerationRequest) { r.Drums = `pattern(drum=kick, grid="x-?-")` }},
		{"bad key", func(r *models.GenerationRequest) { r.Key = "H2" }},
		{"bad chord", func(r *models.GenerationRequest) { r.Chords = []string{"Am", "Zm7"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec, dir := newTestService(t)
			req := testRequest()
			tt.mutate(&req)

			_, err := svc.Generate(context.Background(), req)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
			assert.NoDirExists(t, dir)
			assert.Equal(t, []bool{false}, rec.durations)
			assert.Empty(t, rec.genres)
		})
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	svc, _, _ := newTestService(t)
	dir := t.TempDir()
	seed := uint64(1234)

	read := func(name string) []byte {
		req := testRequest()
		req.Seed = &seed
		req.OutputPath = filepath.Join(dir, name)
		res, err := svc.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, seed, res.Seed)
		data, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, read("a.mid"), read("b.mid"))
}

func TestGenerate_Stems(t *testing.T) {
	svc, _, dir := newTestService(t)
	req := testRequest()
	req.Stems = true

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Stems)
	for _, name := range res.Stems {
		assert.FileExists(t, filepath.Join(dir, "composition_"+fixedID+"_stems", name))
	}
}

func TestGenerate_CustomDrums(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := testRequest()
	req.Genre = "EDM_DROP"
	req.Drums = `pattern(drum=kick, grid="x---------------"); pattern(drum=clap, grid="----x-------x---")`

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	plain := testRequest()
	plain.Genre = "EDM_DROP"
	plain.OutputPath = filepath.Join(t.TempDir(), "plain.mid")
	want, err := svc.Generate(context.Background(), plain)
	require.NoError(t, err)

	kick, ok := res.Summary.Track("kick")
	require.True(t, ok)
	wantKick, ok := want.Summary.Track("kick")
	require.True(t, ok)
	assert.Less(t, kick.Notes, wantKick.Notes)

	bass, _ := res.Summary.Track("bass")
	wantBass, _ := want.Summary.Track("bass")
	assert.Equal(t, wantBass.Notes, bass.Notes)
}

func TestGenerate_KeyAndChords(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := testRequest()
	req.Key = "A3"
	req.Chords = []string{"Am", "F", "C/E", "G"}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 57, res.RootNote)
	assert.Equal(t, "A3", res.RootName)
	assert.Positive(t, res.Summary.Notes)
}

func TestGenerate_StemFailureRemovesOutput(t *testing.T) {
	svc, rec, dir := newTestService(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	blocker := "composition_" + fixedID + "_stems"
	require.NoError(t, os.WriteFile(filepath.Join(dir, blocker), []byte("x"), 0o644))

	req := testRequest()
	req.Stems = true
	_, err := svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrSerialization)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{blocker}, names)
	assert.Equal(t, []bool{false}, rec.durations)
}

func TestGenerate_ExplicitStemsDirIsKept(t *testing.T) {
	svc, _, _ := newTestService(t)
	stemsDir := t.TempDir()
	req := testRequest()
	req.StemsDir = stemsDir

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	for _, name := range res.Stems {
		assert.FileExists(t, filepath.Join(stemsDir, name))
	}
}

func TestOutputsRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stems")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	file := filepath.Join(dir, "01_kick.mid")
	require.NoError(t, os.WriteFile(file, []byte("MThd"), 0o644))
	song := filepath.Join(filepath.Dir(dir), "song.mid")
	require.NoError(t, os.WriteFile(song, []byte("MThd"), 0o644))

	outputs{files: []string{song, file, filepath.Join(dir, "missing.mid")}, dir: dir}.remove()
	assert.NoFileExists(t, song)
	assert.NoDirExists(t, dir)
}

func TestGenerate_Cancelled(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, testRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, dir)
}

func TestGenerate_UnwritableOutputDir(t *testing.T) {
	svc, _, _ := newTestService(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc.outputDir = filepath.Join(blocker, "out")

	_, err := svc.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, errs.ErrSerialization)
	assert.True(t, errs.Retryable(err))
}

func TestPathAndInspect(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Path("not-a-uuid")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Inspect(fixedID)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := svc.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	path, err := svc.Path(fixedID)
	require.NoError(t, err)
	assert.Equal(t, res.Path, path)

	summary, err := svc.Inspect(fixedID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary.Notes, summary.Notes)
}
