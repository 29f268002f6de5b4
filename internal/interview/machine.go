package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evalia/internal/chatbot"
	"evalia/internal/notify"
	"evalia/internal/observe"
	"evalia/internal/speech"
	"evalia/internal/storage"
)

// ErrInvalidTransition is returned for an event the current round does not
// accept. The session is left unchanged.
var ErrInvalidTransition = errors.New("interview: invalid transition")

// Interviewer generates questions and evaluations. Implementations absorb
// service failures and return their fallbacks.
type Interviewer interface {
	PredictDomain(ctx context.Context, jobDescription string) string
	GenerateHRQuestions(ctx context.Context, domain string) []string
	GenerateTechQuestions(ctx context.Context, domain string) []string
	EvaluateHR(ctx context.Context, question, answer string) storage.Evaluation
	EvaluateTech(ctx context.Context, domain, question, answer string) storage.Evaluation
}

// Recorder counts machine activity.
type Recorder interface {
	IncrementAnswersEvaluated(ctx context.Context, round string)
	IncrementRoundsCompleted(ctx context.Context, round string)
}

// Deps are the collaborators of a Machine. Publisher and Recorder are
// optional.
type Deps struct {
	Interviewer  Interviewer
	Transcriber  speech.Transcriber
	Store        storage.ResultStore
	Publisher    notify.Publisher
	Recorder     Recorder
	NewAssistant func() *chatbot.Conversation
	Now          func() time.Time
}

// Machine applies events to sessions. It holds no session state itself.
type Machine struct {
	deps Deps
}

func NewMachine(deps Deps) *Machine {
	if deps.Publisher == nil {
		deps.Publisher = notify.Noop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Machine{deps: deps}
}

// NewSession creates an empty session.
func (m *Machine) NewSession() *Session {
	return NewSession(m.deps.Now())
}

// RoundOutcome reports what happened when an advance completed a round.
// Persistence and publish failures never undo the transition.
type RoundOutcome struct {
	Completed    Round  `json:"completed,omitempty"`
	Next         Round  `json:"next"`
	Persisted    bool   `json:"persisted"`
	PersistError string `json:"persist_error,omitempty"`
	PublishError string `json:"publish_error,omitempty"`
}

func invalid(s *Session, event string) error {
	return fmt.Errorf("%w: %s not allowed in %s", ErrInvalidTransition, event, s.Round)
}

func (m *Machine) begin(s *Session) {
	s.mu.Lock()
	s.LastActivity = m.deps.Now()
}

// SubmitJobDescription validates the description and predicts its domain.
func (m *Machine) SubmitJobDescription(ctx context.Context, s *Session, text string) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundNotStarted {
		return invalid(s, "submit job description")
	}
	if err := ValidateJobDescription(text); err != nil {
		return err
	}

	domain := strings.TrimSpace(m.deps.Interviewer.PredictDomain(ctx, text))
	if domain == "" || strings.EqualFold(domain, "unknown") {
		return invalidInput(MsgDomainNotIdentified)
	}

	s.JobDescription = text
	s.Domain = domain
	s.Round = RoundDomainConfirmation
	return nil
}

// ConfirmDomain accepts the predicted domain and prepares both rounds.
func (m *Machine) ConfirmDomain(ctx context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundDomainConfirmation {
		return invalid(s, "confirm domain")
	}
	m.startInterview(ctx, s)
	return nil
}

// RejectDomain lets the user type the domain instead.
func (m *Machine) RejectDomain(_ context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundDomainConfirmation {
		return invalid(s, "reject domain")
	}
	s.Round = RoundDomainEdit
	return nil
}

// EditDomain sets a user-supplied domain and prepares both rounds.
func (m *Machine) EditDomain(ctx context.Context, s *Session, domain string) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundDomainEdit {
		return invalid(s, "edit domain")
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return invalidInput(MsgEmptyDomain)
	}
	s.Domain = domain
	m.startInterview(ctx, s)
	return nil
}

func (m *Machine) startInterview(ctx context.Context, s *Session) {
	s.HRQuestions = m.deps.Interviewer.GenerateHRQuestions(ctx, s.Domain)
	s.TechQuestions = m.deps.Interviewer.GenerateTechQuestions(ctx, s.Domain)
	s.HRResults = nil
	s.TechResults = nil
	m.enterRound(s, RoundHR)
}

func (m *Machine) enterRound(s *Session, r Round) {
	s.Round = r
	s.CurrentQuestionIndex = 0
	s.AwaitingEvaluationDisplay = false
	s.PendingAudio = nil
}

func (m *Machine) recording(s *Session, event string) error {
	if !s.Round.IsQuestionRound() || s.AwaitingEvaluationDisplay ||
		s.CurrentQuestionIndex >= len(s.questions()) {
		return invalid(s, event)
	}
	return nil
}

// CaptureAudio stores the recorded answer for the current question.
func (m *Machine) CaptureAudio(_ context.Context, s *Session, audio speech.Audio) error {
	m.begin(s)
	defer s.mu.Unlock()

	if err := m.recording(s, "capture audio"); err != nil {
		return err
	}
	if audio.Empty() {
		return invalidInput(MsgNoAudio)
	}
	a := speech.DetectSampleRate(audio)
	s.PendingAudio = &a
	return nil
}

// Rerecord discards the captured audio. Nothing else changes.
func (m *Machine) Rerecord(_ context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if err := m.recording(s, "re-record"); err != nil {
		return err
	}
	s.PendingAudio = nil
	return nil
}

// SubmitAnswer transcribes the captured audio, records the answer and
// evaluates it. The record is appended before the evaluation is requested
// and filled in place afterwards.
func (m *Machine) SubmitAnswer(ctx context.Context, s *Session) (*storage.AnswerRecord, error) {
	m.begin(s)
	defer s.mu.Unlock()

	if err := m.recording(s, "submit answer"); err != nil {
		return nil, err
	}
	if s.PendingAudio == nil {
		return nil, fmt.Errorf("%w: no recorded answer to submit", ErrInvalidTransition)
	}

	question := s.questions()[s.CurrentQuestionIndex]
	answer := speech.TranscribeOrEmpty(ctx, m.deps.Transcriber, *s.PendingAudio)

	records := s.records()
	*records = append(*records, storage.AnswerRecord{Question: question, Answer: answer})
	idx := len(*records) - 1

	var ev storage.Evaluation
	if s.Round == RoundTech {
		ev = m.deps.Interviewer.EvaluateTech(ctx, s.Domain, question, answer)
	} else {
		ev = m.deps.Interviewer.EvaluateHR(ctx, question, answer)
	}
	(*records)[idx].Evaluation = &ev
	s.AwaitingEvaluationDisplay = true

	if m.deps.Recorder != nil {
		m.deps.Recorder.IncrementAnswersEvaluated(ctx, s.Round.Name())
	}
	rec := (*records)[idx]
	return &rec, nil
}

// Advance moves past a displayed evaluation. When the last question of a
// round has been answered the results are persisted, a round_completed
// event is published and the session moves on.
func (m *Machine) Advance(ctx context.Context, s *Session) (RoundOutcome, error) {
	m.begin(s)
	defer s.mu.Unlock()

	if !s.Round.IsQuestionRound() || !s.AwaitingEvaluationDisplay {
		return RoundOutcome{}, invalid(s, "advance")
	}

	s.CurrentQuestionIndex++
	s.AwaitingEvaluationDisplay = false
	s.PendingAudio = nil

	if s.CurrentQuestionIndex < len(s.questions()) {
		return RoundOutcome{Next: s.Round}, nil
	}
	return m.completeRound(ctx, s), nil
}

func (m *Machine) completeRound(ctx context.Context, s *Session) RoundOutcome {
	done := s.Round
	out := RoundOutcome{Completed: done}
	log := observe.Logger(ctx).With("session_id", s.ID, "round", done.Name())

	if err := m.deps.Store.Save(ctx, s.results()); err != nil {
		log.Error("failed to persist results", "err", err)
		out.PersistError = err.Error()
	} else {
		out.Persisted = true
	}

	answered, avg := roundStats(*s.records())
	ev := notify.Event{
		SessionID:    s.ID,
		Round:        done.Name(),
		Domain:       s.Domain,
		Answered:     answered,
		AverageScore: avg,
		OccurredAt:   m.deps.Now().UTC(),
	}
	if err := m.deps.Publisher.Publish(ctx, notify.RoutingRoundCompleted, ev); err != nil {
		log.Warn("failed to publish round completion", "err", err)
		out.PublishError = err.Error()
	}
	if m.deps.Recorder != nil {
		m.deps.Recorder.IncrementRoundsCompleted(ctx, done.Name())
	}

	if done == RoundHR {
		m.enterRound(s, RoundTech)
	} else {
		s.Round = RoundDashboard
		s.CurrentQuestionIndex = 0
		s.AwaitingEvaluationDisplay = false
		s.PendingAudio = nil
	}
	out.Next = s.Round
	log.Info("round completed", "next", s.Round, "answered", answered)
	return out
}

func roundStats(records []storage.AnswerRecord) (answered int, avg float64) {
	total, scored := 0, 0
	for _, r := range records {
		answered++
		if r.Evaluation != nil {
			total += r.Evaluation.Score
			scored++
		}
	}
	if scored > 0 {
		avg = float64(total) / float64(scored)
	}
	return answered, avg
}

// Restart discards everything but the session identity.
func (m *Machine) Restart(ctx context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundDashboard && s.Round != RoundChatbot {
		return invalid(s, "restart")
	}
	domain := s.Domain
	s.reset()

	err := m.deps.Publisher.Publish(ctx, notify.RoutingSessionReset, notify.Event{
		SessionID:  s.ID,
		Round:      string(RoundNotStarted),
		Domain:     domain,
		OccurredAt: m.deps.Now().UTC(),
	})
	if err != nil {
		observe.Logger(ctx).Warn("failed to publish session reset", "session_id", s.ID, "err", err)
	}
	return nil
}

// OpenAssistant switches to the career assistant. The conversation survives
// returning to the dashboard.
func (m *Machine) OpenAssistant(_ context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundDashboard {
		return invalid(s, "open assistant")
	}
	if s.Assistant == nil && m.deps.NewAssistant != nil {
		s.Assistant = m.deps.NewAssistant()
	}
	s.Round = RoundChatbot
	return nil
}

// ReturnFromAssistant goes back to the dashboard.
func (m *Machine) ReturnFromAssistant(_ context.Context, s *Session) error {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundChatbot {
		return invalid(s, "return from assistant")
	}
	s.Round = RoundDashboard
	return nil
}

// Assistant returns the session's conversation while the assistant is open.
// The conversation has its own lock, so chat turns do not hold the session.
func (m *Machine) Assistant(s *Session) (*chatbot.Conversation, error) {
	m.begin(s)
	defer s.mu.Unlock()

	if s.Round != RoundChatbot || s.Assistant == nil {
		return nil, invalid(s, "assistant message")
	}
	return s.Assistant, nil
}
