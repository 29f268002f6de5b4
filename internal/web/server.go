// Package web serves the interview wizard over HTTP. Every request applies
// one event to one session.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evalia/internal/dashboard"
	"evalia/internal/health"
	"evalia/internal/interview"
	"evalia/internal/metrics"
	"evalia/internal/observe"
)

// Server holds the handlers' collaborators.
type Server struct {
	machine   *interview.Machine
	dashboard *dashboard.Service
	sessions  *Registry
	limiter   *RateLimiter
	metrics   *metrics.Metrics
	health    *health.Handler
}

func New(
	machine *interview.Machine,
	dash *dashboard.Service,
	sessions *Registry,
	limiter *RateLimiter,
	met *metrics.Metrics,
	hc *health.Handler,
) *Server {
	if hc == nil {
		hc = health.New()
	}
	if met == nil {
		met = metrics.NewNoop()
	}
	return &Server{
		machine:   machine,
		dashboard: dash,
		sessions:  sessions,
		limiter:   limiter,
		metrics:   met,
		health:    hc,
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe.Middleware(s.metrics))

	s.health.Mount(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/stats", s.handleStats)

	r.Route("/api/sessions", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Post("/", s.handleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/job-description", s.handleJobDescription)
			r.Post("/domain/confirm", s.handleConfirmDomain)
			r.Post("/domain/reject", s.handleRejectDomain)
			r.Post("/domain", s.handleEditDomain)

			r.Post("/answer/audio", s.handleCaptureAudio)
			r.Post("/answer/rerecord", s.handleRerecord)
			r.Post("/answer", s.handleSubmitAnswer)
			r.Post("/next", s.handleAdvance)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/jobs", s.handleJobs)
			r.Post("/restart", s.handleRestart)

			r.Post("/assistant", s.handleOpenAssistant)
			r.Post("/assistant/messages", s.handleAssistantMessage)
			r.Delete("/assistant", s.handleCloseAssistant)
		})
	})
	return r
}

type sessionKey struct{}

// withSession resolves {id} to a live session or answers 404.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, r, errSessionNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *interview.Session {
	return r.Context().Value(sessionKey{}).(*interview.Session)
}
