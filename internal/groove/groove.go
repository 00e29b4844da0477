// Package groove parses drum grid programs into per-track patterns that
// replace the generated kick, snare and hi-hat parts.
package groove

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/grammar-school-go/gs"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/pattern"
)

const defaultVelocity = 100

// drumKeys maps canonical drum names to a General MIDI key and the track
// that plays them.
var drumKeys = map[string]struct {
	key  int
	role genre.Role
}{
	"kick":         {pattern.KickNote, genre.Kick},
	"snare":        {pattern.SnareNote, genre.Snare},
	"snare_rim":    {37, genre.Snare},
	"snare_xstick": {37, genre.Snare},
	"clap":         {39, genre.Snare},
	"snap":         {39, genre.Snare},
	"tom_high":     {pattern.HighTomNote, genre.Snare},
	"tom_mid":      {pattern.HiMidTomNote, genre.Snare},
	"tom_low":      {pattern.LowTomNote, genre.Snare},
	"hat":          {pattern.ClosedHatNote, genre.HiHat},
	"hat_open":     {pattern.OpenHatNote, genre.HiHat},
	"hat_pedal":    {44, genre.HiHat},
	"crash":        {pattern.CrashNote, genre.HiHat},
	"ride":         {51, genre.HiHat},
	"ride_bell":    {53, genre.HiHat},
	"china":        {52, genre.HiHat},
	"splash":       {55, genre.HiHat},
	"cowbell":      {56, genre.HiHat},
	"tambourine":   {54, genre.HiHat},
	"shaker":       {70, genre.HiHat},
}

// Line is one parsed pattern() call.
type Line struct {
	Drum     string
	Key      int
	Role     genre.Role
	Grid     string
	Velocity int
}

// Kit is a parsed groove program. The zero value plays nothing and leaves the
// generated drums in place.
type Kit struct {
	Lines []Line
}

// Empty reports whether the kit overrides no track.
func (k Kit) Empty() bool {
	return len(k.Lines) == 0
}

// Roles returns the tracks the kit overrides.
func (k Kit) Roles() []genre.Role {
	seen := map[genre.Role]bool{}
	var out []genre.Role
	for _, l := range k.Lines {
		if !seen[l.Role] {
			seen[l.Role] = true
			out = append(out, l.Role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Overrides reports whether the kit has grid lines for role.
func (k Kit) Overrides(role genre.Role) bool {
	for _, l := range k.Lines {
		if l.Role == role {
			return true
		}
	}
	return false
}

// Render builds the pattern for role over bars. It returns nil when the kit
// has no line for role.
func (k Kit) Render(role genre.Role, bars, beatsPerBar int) (*pattern.Pattern, error) {
	var out *pattern.Pattern
	for _, l := range k.Lines {
		if l.Role != role {
			continue
		}
		p, err := pattern.Grid(bars, beatsPerBar, l.Grid, l.Key, l.Velocity)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = pattern.New(bars, beatsPerBar)
		}
		out.Append(p, 0)
	}
	if out != nil {
		out.Sort()
	}
	return out, nil
}

// Parser parses groove programs. A Parser is not safe for concurrent use;
// Parse builds a fresh one per call.
type Parser struct {
	engine *gs.Engine
	dsl    *grooveDSL
}

// grooveDSL receives the side-effect calls of the grammar engine.
type grooveDSL struct {
	lines []Line
}

// NewParser builds a parser for Grammar.
func NewParser() (*Parser, error) {
	p := &Parser{dsl: &grooveDSL{}}
	engine, err := gs.NewEngine(Grammar, p.dsl, gs.NewLarkParser())
	if err != nil {
		return nil, fmt.Errorf("failed to create groove engine: %w", err)
	}
	p.engine = engine
	return p, nil
}

// Parse parses one program. Any syntax or grid error is ErrInvalidInput.
func (p *Parser) Parse(ctx context.Context, code string) (Kit, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Kit{}, errs.InvalidInput("empty groove program")
	}

	p.dsl.lines = nil
	if err := p.engine.Execute(ctx, code); err != nil {
		return Kit{}, errs.InvalidInput("groove program: %v", err)
	}
	if len(p.dsl.lines) == 0 {
		return Kit{}, errs.InvalidInput("groove program has no pattern calls")
	}
	return Kit{Lines: append([]Line(nil), p.dsl.lines...)}, nil
}

// Parse parses code with a fresh parser.
func Parse(ctx context.Context, code string) (Kit, error) {
	p, err := NewParser()
	if err != nil {
		return Kit{}, err
	}
	return p.Parse(ctx, code)
}

// Pattern handles pattern() calls.
func (d *grooveDSL) Pattern(args gs.Args) error {
	drum := ""
	if v, ok := args["drum"]; ok && v.Kind == gs.ValueString {
		drum = v.Str
	}
	key, ok := drumKeys[drum]
	if !ok {
		return fmt.Errorf("pattern: unknown drum %q", drum)
	}

	grid := ""
	if v, ok := args["grid"]; ok && v.Kind == gs.ValueString {
		grid = strings.Trim(v.Str, "\"")
	}
	if _, err := pattern.GridSteps(grid); err != nil {
		return fmt.Errorf("pattern %s: %w", drum, err)
	}

	velocity := defaultVelocity
	if v, ok := args["velocity"]; ok && v.Kind == gs.ValueNumber {
		velocity = int(v.Num)
	}
	if velocity < 1 || velocity > 127 {
		return fmt.Errorf("pattern %s: velocity %d out of range", drum, velocity)
	}

	d.lines = append(d.lines, Line{
		Drum:     drum,
		Key:      key.key,
		Role:     key.role,
		Grid:     grid,
		Velocity: velocity,
	})
	return nil
}
