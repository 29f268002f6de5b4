// Package notify publishes interview lifecycle events.
package notify

import (
	"context"
	"sync"
	"time"
)

const (
	RoutingRoundCompleted = "interview.round_completed"
	RoutingSessionReset   = "interview.session_reset"
)

// Event is the JSON body of every published message.
type Event struct {
	SessionID    string    `json:"session_id"`
	Round        string    `json:"round"`
	Domain       string    `json:"domain"`
	Answered     int       `json:"answered"`
	AverageScore float64   `json:"average_score"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, e Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, Event) error { return nil }

// Published is one event captured by a Recorder.
type Published struct {
	RoutingKey string
	Event      Event
}

// Recorder keeps events in memory. Tests inspect it through Events.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	err    error
}

// Fail makes subsequent publishes return err.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Publish(_ context.Context, routingKey string, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, Published{RoutingKey: routingKey, Event: e})
	return nil
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}
