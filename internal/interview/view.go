package interview

import (
	"time"

	"evalia/internal/storage"
)

// View is a read-only snapshot of a session for clients.
type View struct {
	ID                        string                `json:"id"`
	Round                     Round                 `json:"round"`
	Domain                    string                `json:"domain,omitempty"`
	QuestionNumber            int                   `json:"question_number,omitempty"`
	TotalQuestions            int                   `json:"total_questions,omitempty"`
	CurrentQuestion           string                `json:"current_question,omitempty"`
	AwaitingEvaluationDisplay bool                  `json:"awaiting_evaluation_display"`
	HasPendingAudio           bool                  `json:"has_pending_audio"`
	LastAnswer                *storage.AnswerRecord `json:"last_answer,omitempty"`
	HRAnswered                int                   `json:"hr_answered"`
	TechAnswered              int                   `json:"tech_answered"`
	CreatedAt                 time.Time             `json:"created_at"`
	LastActivity              time.Time             `json:"last_activity"`
}

// Snapshot returns the client view of s.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:                        s.ID,
		Round:                     s.Round,
		Domain:                    s.Domain,
		AwaitingEvaluationDisplay: s.AwaitingEvaluationDisplay,
		HasPendingAudio:           s.PendingAudio != nil,
		HRAnswered:                len(s.HRResults),
		TechAnswered:              len(s.TechResults),
		CreatedAt:                 s.CreatedAt,
		LastActivity:              s.LastActivity,
	}
	if !s.Round.IsQuestionRound() {
		return v
	}

	qs := s.questions()
	v.TotalQuestions = len(qs)
	if s.CurrentQuestionIndex < len(qs) {
		v.QuestionNumber = s.CurrentQuestionIndex + 1
		v.CurrentQuestion = qs[s.CurrentQuestionIndex]
	}
	if s.AwaitingEvaluationDisplay {
		if recs := *s.records(); len(recs) > 0 {
			last := recs[len(recs)-1]
			v.LastAnswer = &last
		}
	}
	return v
}

// Results returns the session's answers in their persisted form.
func (s *Session) Results() *storage.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results()
}
