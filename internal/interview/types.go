// Package interview holds the interview session and the state machine that
// moves it through domain discovery, the HR and technical rounds, the
// dashboard and the career assistant.
package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"evalia/internal/chatbot"
	"evalia/internal/speech"
	"evalia/internal/storage"
)

// Round is the state of a session.
type Round string

const (
	RoundNotStarted         Round = "not_started"
	RoundDomainConfirmation Round = "domain_confirmation"
	RoundDomainEdit         Round = "domain_edit"
	RoundHR                 Round = "hr_round"
	RoundTech               Round = "tech_round"
	RoundDashboard          Round = "dashboard"
	RoundChatbot            Round = "chatbot"
)

// IsQuestionRound reports whether answers are being collected.
func (r Round) IsQuestionRound() bool {
	return r == RoundHR || r == RoundTech
}

// Name is the short round name used in events and metrics.
func (r Round) Name() string {
	switch r {
	case RoundHR:
		return "hr"
	case RoundTech:
		return "technical"
	default:
		return string(r)
	}
}

// Session is one interview attempt. All fields are guarded by the session
// lock; the Machine takes it for every event.
type Session struct {
	mu sync.Mutex

	ID           string
	CreatedAt    time.Time
	LastActivity time.Time

	Round          Round
	JobDescription string
	Domain         string

	HRQuestions   []string
	TechQuestions []string
	HRResults     []storage.AnswerRecord
	TechResults   []storage.AnswerRecord

	CurrentQuestionIndex      int
	AwaitingEvaluationDisplay bool
	PendingAudio              *speech.Audio

	Assistant *chatbot.Conversation
}

// NewSession returns an empty session in RoundNotStarted.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Round:        RoundNotStarted,
	}
}

// Touch records activity for idle eviction.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = now
}

// IdleSince reports whether the session has been inactive since cutoff.
func (s *Session) IdleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastActivity.Before(cutoff)
}

func (s *Session) reset() {
	s.Round = RoundNotStarted
	s.JobDescription = ""
	s.Domain = ""
	s.HRQuestions = nil
	s.TechQuestions = nil
	s.HRResults = nil
	s.TechResults = nil
	s.CurrentQuestionIndex = 0
	s.AwaitingEvaluationDisplay = false
	s.PendingAudio = nil
	s.Assistant = nil
}

func (s *Session) questions() []string {
	if s.Round == RoundTech {
		return s.TechQuestions
	}
	return s.HRQuestions
}

func (s *Session) records() *[]storage.AnswerRecord {
	if s.Round == RoundTech {
		return &s.TechResults
	}
	return &s.HRResults
}

// results snapshots the session in its persisted form.
func (s *Session) results() *storage.Results {
	r := (&storage.Results{
		Domain:        s.Domain,
		HRQuestions:   s.HRQuestions,
		TechQuestions: s.TechQuestions,
		HRResults:     s.HRResults,
		TechResults:   s.TechResults,
	}).Clone()
	if r.HRQuestions == nil {
		r.HRQuestions = []string{}
	}
	if r.TechQuestions == nil {
		r.TechQuestions = []string{}
	}
	if r.HRResults == nil {
		r.HRResults = []storage.AnswerRecord{}
	}
	if r.TechResults == nil {
		r.TechResults = []storage.AnswerRecord{}
	}
	return r
}
