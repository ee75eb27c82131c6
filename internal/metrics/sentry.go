package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and composition spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Spans are dropped by the SDK when Sentry is not configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordComposition records how long one composition took to generate
func (m *SentryMetrics) RecordComposition(ctx context.Context, mood string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("composition.mood", mood)
	}

	span := sentry.StartSpan(ctx, "composition.request")
	defer span.Finish()

	span.SetTag("mood", mood)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Composition: %s", mood)
}

// RecordRender records an offline render of audioSeconds of audio
func (m *SentryMetrics) RecordRender(ctx context.Context, audioSeconds float64, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "composition.render")
	defer span.Finish()

	span.SetData("audio_seconds", audioSeconds)
	span.SetData("duration_ms", duration.Milliseconds())
	if duration > 0 {
		span.SetData("realtime_factor", audioSeconds/duration.Seconds())
	}
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Render: %.1fs", audioSeconds)
}

// RecordRecommendation records a track search and the number of results
func (m *SentryMetrics) RecordRecommendation(ctx context.Context, query string, results int, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "recommendation.search")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("query", query)
	span.SetData("results", results)
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusUnavailable
	}
	span.Description = fmt.Sprintf("Recommendation: %s", query)
}
