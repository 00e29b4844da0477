package metrics

import (
	"context"
	"time"
)

// Recorder is implemented by every metrics backend.
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool)
	RecordComposition(ctx context.Context, genre string, bars, tracks, notes int)
}

// Multi fans every call out to each recorder in order.
type Multi []Recorder

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
}

func (m Multi) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	for _, r := range m {
		r.RecordGenerationDuration(ctx, duration, success)
	}
}

func (m Multi) RecordComposition(ctx context.Context, genre string, bars, tracks, notes int) {
	for _, r := range m {
		r.RecordComposition(ctx, genre, bars, tracks, notes)
	}
}
