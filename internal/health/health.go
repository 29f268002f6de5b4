// Package health answers the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

// Checker probes one dependency; nil means usable.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	TookMS int64             `json:"took_ms,omitempty"`
}

// Handler runs a fixed set of checkers.
type Handler struct {
	checkers []Checker
}

func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Mount registers GET /healthz and GET /readyz.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, report{Status: "ok"})
	})
	r.Get("/readyz", h.ready)
}

// ready probes every dependency in parallel and answers 503 if any fails.
func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.checkers))
		failed bool
	)
	var g errgroup.Group
	for _, c := range h.checkers {
		g.Go(func() error {
			state := "ok"
			if err := c.Check(ctx); err != nil {
				state = "fail: " + err.Error()
			}
			mu.Lock()
			checks[c.Name] = state
			failed = failed || state != "ok"
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	rep := report{Status: "ok", Checks: checks, TookMS: time.Since(start).Milliseconds()}
	code := http.StatusOK
	if failed {
		rep.Status = "fail"
		code = http.StatusServiceUnavailable
	}
	respond(w, code, rep)
}

func respond(w http.ResponseWriter, code int, rep report) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}
