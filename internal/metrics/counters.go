package metrics

import (
	"context"
	"sync"
	"time"
)

// Counters keeps process-lifetime totals for the metrics endpoint.
type Counters struct {
	mu             sync.Mutex
	requests       int
	serverErrors   int
	generations    int
	failures       int
	generationTime time.Duration
	compositions   int
	bars           int
	notes          int
	byGenre        map[string]int
}

// Snapshot is a copy of the counters at one point in time.
type Snapshot struct {
	Requests        int            `json:"requests"`
	ServerErrors    int            `json:"server_errors"`
	Generations     int            `json:"generations"`
	Failures        int            `json:"failures"`
	AvgGenerationMS float64        `json:"avg_generation_ms"`
	Compositions    int            `json:"compositions"`
	Bars            int            `json:"bars"`
	Notes           int            `json:"notes"`
	ByGenre         map[string]int `json:"by_genre"`
}

func NewCounters() *Counters {
	return &Counters{byGenre: make(map[string]int)}
}

func (c *Counters) RecordAPIRequest(_ context.Context, _ string, statusCode int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	if statusCode >= 500 {
		c.serverErrors++
	}
}

func (c *Counters) RecordGenerationDuration(_ context.Context, duration time.Duration, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations++
	c.generationTime += duration
	if !success {
		c.failures++
	}
}

func (c *Counters) RecordComposition(_ context.Context, genre string, bars, _, notes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compositions++
	c.bars += bars
	c.notes += notes
	c.byGenre[genre]++
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Requests:     c.requests,
		ServerErrors: c.serverErrors,
		Generations:  c.generations,
		Failures:     c.failures,
		Compositions: c.compositions,
		Bars:         c.bars,
		Notes:        c.notes,
		ByGenre:      make(map[string]int, len(c.byGenre)),
	}
	if c.generations > 0 {
		s.AvgGenerationMS = float64(c.generationTime.Milliseconds()) / float64(c.generations)
	}
	for g, n := range c.byGenre {
		s.ByGenre[g] = n
	}
	return s
}

// CountersFrom returns the Counters inside r, looking through Multi.
func CountersFrom(r Recorder) *Counters {
	switch v := r.(type) {
	case *Counters:
		return v
	case Multi:
		for _, inner := range v {
			if c := CountersFrom(inner); c != nil {
				return c
			}
		}
	}
	return nil
}
