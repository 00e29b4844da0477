package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/composer"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/groove"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/logger"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/midiinfo"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/planner"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/style"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

const (
	filePrefix = "composition_"
	fileExt    = ".mid"
	stemSuffix = "_stems"
)

// ErrNotFound is returned when no composition exists for an id.
var ErrNotFound = errors.New("composition not found")

// Recorder receives per-request metrics.
type Recorder interface {
	RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool)
	RecordComposition(ctx context.Context, genre string, bars, tracks, notes int)
}

// GenerationResult describes a written composition.
type GenerationResult struct {
	ID         string                    `json:"id"`
	Mode       string                    `json:"mode"`
	Genre      genre.Genre               `json:"genre"`
	TempoBPM   int                       `json:"tempo_bpm"`
	Scale      theory.Scale              `json:"scale"`
	RootNote   int                       `json:"root_note"`
	RootName   string                    `json:"root_name"`
	TotalBars  int                       `json:"total_bars"`
	Seed       uint64                    `json:"seed"`
	Style      style.Style               `json:"style"`
	Sections   []planner.SectionSpec     `json:"sections"`
	Tracks     []composer.TrackInfo      `json:"tracks"`
	Automation []composer.AutomationLane `json:"automation,omitempty"`
	Summary    *midiinfo.Summary         `json:"summary"`
	Stems      []string                  `json:"stems,omitempty"`
	Path       string                    `json:"-"`
}

// GenerationService runs the whole pipeline for one request and owns the
// output directory.
type GenerationService struct {
	catalog     *genre.Catalog
	outputDir   string
	defaultMode string
	writeStems  bool
	opts        composer.Options
	recorder    Recorder
	newID       func() string
}

// NewGenerationService builds the service from configuration.
func NewGenerationService(cfg *config.Config, catalog *genre.Catalog, recorder Recorder) *GenerationService {
	opts := composer.DefaultOptions()
	opts.Seed = cfg.HumanizeSeed
	opts.Humanize = cfg.Humanize
	opts.TicksPerQuarter = cfg.TicksPerQuarter
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &GenerationService{
		catalog:     catalog,
		outputDir:   cfg.OutputDir,
		defaultMode: cfg.DefaultMode,
		writeStems:  cfg.WriteStems,
		opts:        opts,
		recorder:    recorder,
		newID:       uuid.NewString,
	}
}

// Catalog returns the genre catalog the service composes from.
func (s *GenerationService) Catalog() *genre.Catalog {
	return s.catalog
}

// Generate composes one song and writes it to disk.
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest) (*GenerationResult, error) {
	start := time.Now()
	res, err := s.generate(ctx, req)
	duration := time.Since(start)
	s.recorder.RecordGenerationDuration(ctx, duration, err == nil)

	if err != nil {
		fields := logger.Fields{
			"kind":     errs.Kind(err),
			"genre":    req.Genre,
			"mode":     req.Mode,
			"duration": duration.Milliseconds(),
		}
		if errors.Is(err, errs.ErrInvalidInput) {
			logger.Warn("Composition rejected", fields)
		} else {
			logger.Error("Composition failed", err, fields)
		}
		return nil, err
	}

	s.recorder.RecordComposition(ctx, res.Genre.String(), res.TotalBars, len(res.Tracks), res.Summary.Notes)
	logger.LogCompositionRequest(ctx, res.Genre.String(), duration, logger.Fields{
		"id":     res.ID,
		"mode":   res.Mode,
		"bars":   res.TotalBars,
		"tracks": len(res.Tracks),
		"notes":  res.Summary.Notes,
	})
	return res, nil
}

func (s *GenerationService) generate(ctx context.Context, req models.GenerationRequest) (*GenerationResult, error) {
	if err := req.Features.Validate(); err != nil {
		return nil, err
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if req.Key != "" {
		root, err := theory.NoteNameToMIDI(req.Key)
		if err != nil {
			return nil, errs.InvalidInput("key %q: %v", req.Key, err)
		}
		req.Params.BaseFrequency = theory.MIDIToFreq(root)
	}
	chords, err := theory.ParseProgression(req.Chords)
	if err != nil {
		return nil, err
	}

	g, err := genre.Resolve(req.Genre, req.Features, req.Params.Energy)
	if err != nil {
		return nil, err
	}
	profile, err := s.catalog.Profile(g)
	if err != nil {
		return nil, err
	}
	plan, err := planner.Plan(req.Features, req.Params, profile)
	if err != nil {
		return nil, err
	}
	spec, err := planner.ToSpec(plan)
	if err != nil {
		return nil, err
	}
	logger.Debug("Song planned", logger.Fields{
		"genre":    g.String(),
		"tempo":    spec.TempoBPM,
		"bars":     spec.TotalBars,
		"sections": len(spec.Sections),
		"tracks":   len(spec.Tracks),
	})

	opts := s.opts
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	opts.Chords = chords
	if req.Drums != "" {
		kit, err := groove.Parse(ctx, req.Drums)
		if err != nil {
			return nil, err
		}
		opts.Drums = kit
	}

	// last point at which a cancelled request leaves nothing behind
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := s.newID()
	path := req.OutputPath
	if path == "" {
		if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
			return nil, errs.SerializationIO("create", s.outputDir, err)
		}
		path = filepath.Join(s.outputDir, filePrefix+id+fileExt)
	}

	out, err := composer.New(s.catalog, opts).ComposeToFile(spec, path)
	if err != nil {
		return nil, err
	}

	// a failed request leaves none of its files behind
	var cleanup outputs
	cleanup.files = append(cleanup.files, path)
	committed := false
	defer func() {
		if !committed {
			cleanup.remove()
		}
	}()

	var stems []string
	if req.Stems || req.StemsDir != "" || s.writeStems {
		dir := req.StemsDir
		if dir == "" {
			dir = strings.TrimSuffix(path, fileExt) + stemSuffix
		}
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			cleanup.dir = dir
		}
		paths, err := out.Writer.WriteStems(dir)
		for _, p := range paths {
			cleanup.files = append(cleanup.files, p)
			stems = append(stems, filepath.Base(p))
		}
		if err != nil {
			return nil, err
		}
	}

	summary, err := midiinfo.Inspect(path)
	if err != nil {
		return nil, err
	}
	if summary.Notes != out.NoteCount {
		return nil, errs.Invariant("file %s holds %d notes, composed %d", path, summary.Notes, out.NoteCount)
	}

	mode := req.Mode
	if mode == "" {
		mode = s.defaultMode
	}
	committed = true
	return &GenerationResult{
		ID:         id,
		Mode:       mode,
		Genre:      g,
		TempoBPM:   spec.TempoBPM,
		Scale:      spec.Scale,
		RootNote:   spec.RootNote,
		RootName:   theory.NoteName(spec.RootNote),
		TotalBars:  spec.TotalBars,
		Seed:       opts.Seed,
		Style:      plan.Style,
		Sections:   spec.Sections,
		Tracks:     out.Tracks,
		Automation: out.Automation,
		Summary:    summary,
		Stems:      sortedStrings(stems),
		Path:       path,
	}, nil
}

// Path returns the file for a composition id.
func (s *GenerationService) Path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", errs.InvalidInput("composition id %q is not a uuid", id)
	}
	path := filepath.Join(s.outputDir, filePrefix+parsed.String()+fileExt)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", errs.SerializationIO("stat", path, err)
	}
	return path, nil
}

// Inspect summarizes a previously written composition.
func (s *GenerationService) Inspect(id string) (*midiinfo.Summary, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	return midiinfo.Inspect(path)
}

// outputs are the files one request wrote, and the stem directory when the
// request created it.
type outputs struct {
	files []string
	dir   string
}

func (o outputs) remove() {
	for _, f := range o.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove partial output", logger.Fields{"path": f, "error": err.Error()})
		}
	}
	if o.dir != "" {
		// only succeeds once the directory is empty again
		_ = os.Remove(o.dir)
	}
}

func sortedStrings(in []string) []string {
	sort.Strings(in)
	return in
}

type nopRecorder struct{}

func (nopRecorder) RecordGenerationDuration(context.Context, time.Duration, bool) {}

func (nopRecorder) RecordComposition(context.Context, string, int, int, int) {}
