package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"evalia/internal/chatbot"
	"evalia/internal/dashboard"
	"evalia/internal/document"
	"evalia/internal/interview"
	"evalia/internal/observe"
	"evalia/internal/storage"
)

var (
	errSessionNotFound = errors.New("session not found")
	errRateLimited     = errors.New("too many requests, please wait a minute")
)

// badRequest marks malformed request bodies.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return "invalid request: " + e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var (
		verr *interview.ValidationError
		breq *badRequest
		mbe  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interview.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errSessionNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrInvalidResults),
		errors.Is(err, chatbot.ErrEmptyMessage),
		errors.Is(err, dashboard.ErrNoDomain):
		return http.StatusUnprocessableEntity
	case errors.As(err, &breq):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		observe.Logger(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
