package pattern

import (
	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
)

// Grid step symbols. Every symbol is one 16th note; '|' is a visual bar
// separator and takes no time.
const (
	GridHit    = 'x'
	GridAccent = 'X'
	GridGhost  = 'o'
	GridRest   = '-'
	GridBar    = '|'
)

// GridSteps returns the step count of grid, or an error for unknown symbols.
func GridSteps(grid string) (int, error) {
	steps := 0
	for i, r := range grid {
		switch r {
		case GridHit, GridAccent, GridGhost, GridRest:
			steps++
		case GridBar, ' ':
		default:
			return 0, errs.InvalidInput("grid %q: unknown symbol %q at %d", grid, r, i)
		}
	}
	if steps == 0 {
		return 0, errs.InvalidInput("grid %q has no steps", grid)
	}
	return steps, nil
}

// Grid renders a drum grid over the given number of bars, repeating it as
// often as needed. Hits play at velocity, accents at velocity+27 and ghosts
// at 60% of velocity.
func Grid(bars, beatsPerBar int, grid string, pitch, velocity int) (*Pattern, error) {
	n, err := GridSteps(grid)
	if err != nil {
		return nil, err
	}
	p := New(bars, beatsPerBar)

	steps := make([]rune, 0, n)
	for _, r := range grid {
		if r != GridBar && r != ' ' {
			steps = append(steps, r)
		}
	}

	total := p.LengthTicks / sixteenth
	for i := 0; i < total; i++ {
		vel := 0
		switch steps[i%n] {
		case GridHit:
			vel = velocity
		case GridAccent:
			vel = velocity + 27
		case GridGhost:
			vel = velocity * 6 / 10
		}
		if vel == 0 {
			continue
		}
		p.Add(drumHit(clamp(pitch, 0, 127), clamp(vel, 1, 127), i*sixteenth, sixteenth))
	}
	return p, nil
}
