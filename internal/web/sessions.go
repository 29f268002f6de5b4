package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"evalia/internal/interview"
)

// SessionTracker is told when sessions enter and leave the registry.
type SessionTracker interface {
	IncrementSessionsStarted(ctx context.Context)
	SessionOpened(ctx context.Context)
	SessionClosed(ctx context.Context)
}

// Registry holds live sessions by ID.
type Registry struct {
	sessions      map[string]*interview.Session
	sessionsMutex sync.RWMutex
	tracker       SessionTracker
}

func NewRegistry(tracker SessionTracker) *Registry {
	return &Registry{
		sessions: make(map[string]*interview.Session),
		tracker:  tracker,
	}
}

func (g *Registry) Add(ctx context.Context, s *interview.Session) {
	g.sessionsMutex.Lock()
	g.sessions[s.ID] = s
	g.sessionsMutex.Unlock()

	if g.tracker != nil {
		g.tracker.IncrementSessionsStarted(ctx)
		g.tracker.SessionOpened(ctx)
	}
}

func (g *Registry) Get(id string) (*interview.Session, bool) {
	g.sessionsMutex.RLock()
	defer g.sessionsMutex.RUnlock()
	s, ok := g.sessions[id]
	return s, ok
}

// Delete removes a session and reports whether it existed.
func (g *Registry) Delete(ctx context.Context, id string) bool {
	g.sessionsMutex.Lock()
	_, ok := g.sessions[id]
	delete(g.sessions, id)
	g.sessionsMutex.Unlock()

	if ok && g.tracker != nil {
		g.tracker.SessionClosed(ctx)
	}
	return ok
}

func (g *Registry) Len() int {
	g.sessionsMutex.RLock()
	defer g.sessionsMutex.RUnlock()
	return len(g.sessions)
}

// CleanupInactive evicts sessions idle since cutoff and returns how many
// were removed.
func (g *Registry) CleanupInactive(ctx context.Context, cutoff time.Time) int {
	g.sessionsMutex.Lock()
	removed := 0
	for id, s := range g.sessions {
		if s.IdleSince(cutoff) {
			delete(g.sessions, id)
			removed++
		}
	}
	g.sessionsMutex.Unlock()

	if g.tracker != nil {
		for range removed {
			g.tracker.SessionClosed(ctx)
		}
	}
	return removed
}

// RunCleanup sweeps idle sessions every interval until ctx is done. Each
// sweep also runs the extra funcs.
func (g *Registry) RunCleanup(ctx context.Context, interval, idle time.Duration, extra ...func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := g.CleanupInactive(ctx, now.Add(-idle)); n > 0 {
				slog.Info("evicted inactive sessions", "count", n, "remaining", g.Len())
			}
			for _, fn := range extra {
				fn()
			}
		}
	}
}
