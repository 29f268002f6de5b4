package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every entry of a group failed or was open.
var ErrAllFailed = errors.New("all providers failed")

type entry[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup tries providers of the same kind in registration order, each
// behind its own breaker.
type FallbackGroup[T any] struct {
	entries []entry[T]
	cfg     BreakerConfig
}

func NewFallbackGroup[T any](primaryName string, primary T, cfg BreakerConfig) *FallbackGroup[T] {
	g := &FallbackGroup[T]{cfg: cfg}
	g.Add(primaryName, primary)
	return g
}

// Add appends a fallback provider.
func (g *FallbackGroup[T]) Add(name string, value T) {
	cfg := g.cfg
	cfg.Name = name
	g.entries = append(g.entries, entry[T]{name: name, value: value, breaker: NewCircuitBreaker(cfg)})
}

// Names lists providers in the order they are tried.
func (g *FallbackGroup[T]) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.name
	}
	return names
}

// Available reports whether at least one breaker admits calls.
func (g *FallbackGroup[T]) Available() bool {
	for _, e := range g.entries {
		if e.breaker.State() != StateOpen {
			return true
		}
	}
	return false
}

// Do runs fn against the first provider that succeeds.
func Do[T any, R any](g *FallbackGroup[T], fn func(name string, value T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range g.entries {
		e := &g.entries[i]
		var result R
		err := e.breaker.Execute(func() error {
			var callErr error
			result, callErr = fn(e.name, e.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping provider, circuit open", "provider", e.name)
			continue
		}
		slog.Warn("provider failed, trying next", "provider", e.name, "err", err)
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
