// Package metrics counts interview activity. Plain counters back the
// /api/stats snapshot; the same events are recorded as OpenTelemetry
// instruments for the Prometheus scrape.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "evalia"

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30,
}

// Metrics is safe for concurrent use.
type Metrics struct {
	mu                 sync.RWMutex
	SessionsStarted    int64
	RoundsCompleted    int64
	AnswersEvaluated   int64
	FallbacksUsed      int64
	AssistantMessages  int64
	APICallsTotal      int64
	APICallsSuccessful int64
	LastUpdateTime     time.Time

	llmDuration      metric.Float64Histogram
	sttDuration      metric.Float64Histogram
	httpDuration     metric.Float64Histogram
	providerRequests metric.Int64Counter
	providerErrors   metric.Int64Counter
	sessions         metric.Int64Counter
	rounds           metric.Int64Counter
	answers          metric.Int64Counter
	fallbacks        metric.Int64Counter
	activeSessions   metric.Int64UpDownCounter
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SessionsStarted    int64     `json:"sessions_started"`
	RoundsCompleted    int64     `json:"rounds_completed"`
	AnswersEvaluated   int64     `json:"answers_evaluated"`
	FallbacksUsed      int64     `json:"fallbacks_used"`
	AssistantMessages  int64     `json:"assistant_messages"`
	APICallsTotal      int64     `json:"api_calls_total"`
	APICallsSuccessful int64     `json:"api_calls_successful"`
	LastUpdateTime     time.Time `json:"last_update_time"`
}

// New creates the counters and registers the instruments on mp.
func New(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{LastUpdateTime: time.Now()}
	var err error

	if met.llmDuration, err = m.Float64Histogram("evalia.llm.duration",
		metric.WithDescription("Latency of text generation calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.sttDuration, err = m.Float64Histogram("evalia.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.httpDuration, err = m.Float64Histogram("evalia.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if met.providerRequests, err = m.Int64Counter("evalia.provider.requests",
		metric.WithDescription("Provider API requests by provider, kind and status."),
	); err != nil {
		return nil, err
	}
	if met.providerErrors, err = m.Int64Counter("evalia.provider.errors",
		metric.WithDescription("Provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.sessions, err = m.Int64Counter("evalia.sessions.started",
		metric.WithDescription("Interview sessions created."),
	); err != nil {
		return nil, err
	}
	if met.rounds, err = m.Int64Counter("evalia.rounds.completed",
		metric.WithDescription("Interview rounds completed by round."),
	); err != nil {
		return nil, err
	}
	if met.answers, err = m.Int64Counter("evalia.answers.evaluated",
		metric.WithDescription("Answers evaluated by round."),
	); err != nil {
		return nil, err
	}
	if met.fallbacks, err = m.Int64Counter("evalia.fallbacks",
		metric.WithDescription("Fallback values substituted for failed service calls, by kind."),
	); err != nil {
		return nil, err
	}
	if met.activeSessions, err = m.Int64UpDownCounter("evalia.active_sessions",
		metric.WithDescription("Sessions held in memory."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) touch() { m.LastUpdateTime = time.Now() }

func (m *Metrics) IncrementSessionsStarted(ctx context.Context) {
	m.mu.Lock()
	m.SessionsStarted++
	m.touch()
	m.mu.Unlock()
	m.sessions.Add(ctx, 1)
}

func (m *Metrics) IncrementRoundsCompleted(ctx context.Context, round string) {
	m.mu.Lock()
	m.RoundsCompleted++
	m.touch()
	m.mu.Unlock()
	m.rounds.Add(ctx, 1, metric.WithAttributes(attribute.String("round", round)))
}

func (m *Metrics) IncrementAnswersEvaluated(ctx context.Context, round string) {
	m.mu.Lock()
	m.AnswersEvaluated++
	m.touch()
	m.mu.Unlock()
	m.answers.Add(ctx, 1, metric.WithAttributes(attribute.String("round", round)))
}

// IncrementFallback records that kind (e.g. "hr_evaluation") fell back to its
// fixed value.
func (m *Metrics) IncrementFallback(ctx context.Context, kind string) {
	m.mu.Lock()
	m.FallbacksUsed++
	m.touch()
	m.mu.Unlock()
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) IncrementAssistantMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssistantMessages++
	m.touch()
}

// SessionOpened and SessionClosed track the in-memory session count.
func (m *Metrics) SessionOpened(ctx context.Context) { m.activeSessions.Add(ctx, 1) }

func (m *Metrics) SessionClosed(ctx context.Context) { m.activeSessions.Add(ctx, -1) }

// ObserveCall records one provider call. kind is "llm" or "stt".
func (m *Metrics) ObserveCall(ctx context.Context, provider, kind string, d time.Duration, err error) {
	m.mu.Lock()
	m.APICallsTotal++
	if err == nil {
		m.APICallsSuccessful++
	}
	m.touch()
	m.mu.Unlock()

	switch kind {
	case "stt":
		m.sttDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
	default:
		m.llmDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
	}

	status := "ok"
	if err != nil {
		status = "error"
		m.providerErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		))
	}
	m.providerRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordHTTPRequest records the duration of one served request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	m.httpDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:    m.SessionsStarted,
		RoundsCompleted:    m.RoundsCompleted,
		AnswersEvaluated:   m.AnswersEvaluated,
		FallbacksUsed:      m.FallbacksUsed,
		AssistantMessages:  m.AssistantMessages,
		APICallsTotal:      m.APICallsTotal,
		APICallsSuccessful: m.APICallsSuccessful,
		LastUpdateTime:     m.LastUpdateTime,
	}
}

// NewNoop returns counters whose instruments discard every measurement.
func NewNoop() *Metrics {
	m, err := New(noop.NewMeterProvider())
	if err != nil {
		panic("metrics: noop provider: " + err.Error())
	}
	return m
}
