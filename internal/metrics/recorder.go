package metrics

import (
	"context"
	"time"
)

// Recorder receives composition-level measurements.
type Recorder interface {
	RecordComposition(ctx context.Context, mood string, duration time.Duration, success bool)
	RecordRender(ctx context.Context, audioSeconds float64, duration time.Duration)
	RecordRecommendation(ctx context.Context, query string, results int, success bool)
}

var (
	_ Recorder = (*SentryMetrics)(nil)
	_ Recorder = (*Client)(nil)
)

type multi []Recorder

// Multi fans measurements out to every non-nil recorder.
func Multi(recorders ...Recorder) Recorder {
	var out multi
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) RecordComposition(ctx context.Context, mood string, duration time.Duration, success bool) {
	for _, r := range m {
		r.RecordComposition(ctx, mood, duration, success)
	}
}

func (m multi) RecordRender(ctx context.Context, audioSeconds float64, duration time.Duration) {
	for _, r := range m {
		r.RecordRender(ctx, audioSeconds, duration)
	}
}

func (m multi) RecordRecommendation(ctx context.Context, query string, results int, success bool) {
	for _, r := range m {
		r.RecordRecommendation(ctx, query, results, success)
	}
}
