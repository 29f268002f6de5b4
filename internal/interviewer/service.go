// Package interviewer turns interview steps into Generative Text Service
// calls: domain prediction, question generation and answer evaluation. Every
// call has a fixed fallback so a failing provider never stalls an interview.
package interviewer

import (
	"context"
	"strings"

	"evalia/internal/api"
	"evalia/internal/observe"
	"evalia/internal/parser"
	"evalia/internal/prompts"
	"evalia/internal/storage"
)

// UnknownDomain is returned when the domain cannot be predicted.
const UnknownDomain = "Unknown"

const (
	DefaultQuestionCount  = 5
	DefaultTechDifficulty = "mid"
)

// HRFallbackQuestions is used when HR question generation fails.
var HRFallbackQuestions = []string{
	"Tell me about a time you resolved a conflict in your team",
	"Describe a situation where you had to adapt to major changes",
	"Give an example of how you handled a difficult coworker",
	"Share an experience where you demonstrated leadership",
	"How do you prioritize when working on multiple projects?",
}

// TechFallbackQuestions is used when technical question generation fails.
var TechFallbackQuestions = []string{
	"Explain the time complexity of quicksort and when you'd use it",
	"Design a URL shortening service like bit.ly",
	"Write a function to detect cycles in a linked list",
	"How would you optimize database queries for a high-traffic app?",
	"Explain the CAP theorem with examples",
}

// HRFallbackEvaluation is stored when the HR evaluator cannot be reached.
func HRFallbackEvaluation() storage.Evaluation {
	return storage.Evaluation{
		Score:    parser.DefaultScore,
		Feedback: "Unable to process evaluation at this time",
		ImprovementTips: []string{
			"Provide more specific examples",
			"Structure your answer using STAR method",
			"Focus on measurable outcomes",
		},
	}
}

// TechFallbackEvaluation is stored when the technical evaluator cannot be
// reached.
func TechFallbackEvaluation() storage.Evaluation {
	return storage.Evaluation{
		Score:    parser.DefaultScore,
		Feedback: "Evaluation system unavailable",
		ImprovementTips: []string{
			"Provide more technical specifics",
			"Include code examples where possible",
		},
		KnowledgeGaps: []string{"Unable to assess gaps"},
	}
}

// FallbackRecorder is told every time a fallback value replaces a reply.
type FallbackRecorder interface {
	IncrementFallback(ctx context.Context, kind string)
}

// Service is safe for concurrent use when its Client is.
type Service struct {
	client         api.Client
	recorder       FallbackRecorder
	questionCount  int
	techDifficulty string
}

type Option func(*Service)

func WithRecorder(r FallbackRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithQuestionCount sets how many questions each round asks.
func WithQuestionCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

func WithTechDifficulty(level string) Option {
	return func(s *Service) {
		if level != "" {
			s.techDifficulty = level
		}
	}
}

// New creates the interviewer over client.
func New(client api.Client, opts ...Option) *Service {
	s := &Service{
		client:         client,
		questionCount:  DefaultQuestionCount,
		techDifficulty: DefaultTechDifficulty,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PredictDomain returns the job title for the description, or UnknownDomain
// when the service fails.
func (s *Service) PredictDomain(ctx context.Context, jobDescription string) string {
	reply, err := s.client.Complete(ctx, api.Request{
		User:        prompts.DomainPrediction(jobDescription),
		Temperature: 0.3,
		MaxTokens:   50,
	})
	if err != nil {
		s.fallback(ctx, "domain", err)
		return UnknownDomain
	}
	return strings.Trim(strings.TrimSpace(reply), `"`)
}

// GenerateHRQuestions returns the HR round questions. The first asks for a
// self-introduction.
func (s *Service) GenerateHRQuestions(ctx context.Context, domain string) []string {
	reply, err := s.client.Complete(ctx, api.Request{
		System:      prompts.HRQuestionSystem,
		User:        prompts.HRQuestions(domain, s.questionCount),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		s.fallback(ctx, "hr_questions", err)
		return clone(HRFallbackQuestions)
	}
	return parser.ParseQuestions(reply, s.questionCount, HRFallbackQuestions)
}

// GenerateTechQuestions returns the technical round questions.
func (s *Service) GenerateTechQuestions(ctx context.Context, domain string) []string {
	reply, err := s.client.Complete(ctx, api.Request{
		System:      prompts.TechQuestionSystem,
		User:        prompts.TechQuestions(domain, s.techDifficulty, s.questionCount),
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		s.fallback(ctx, "tech_questions", err)
		return clone(TechFallbackQuestions)
	}
	return parser.ParseQuestions(reply, s.questionCount, TechFallbackQuestions)
}

// EvaluateHR scores one HR answer.
func (s *Service) EvaluateHR(ctx context.Context, question, answer string) storage.Evaluation {
	reply, err := s.client.Complete(ctx, api.Request{
		System:      prompts.HREvaluatorSystem,
		User:        prompts.HREvaluation(question, answer),
		Temperature: 0.5,
		MaxTokens:   1000,
	})
	if err != nil {
		s.fallback(ctx, "hr_evaluation", err)
		return HRFallbackEvaluation()
	}
	return parser.ParseEvaluation(reply, parser.HR)
}

// EvaluateTech scores one technical answer in the context of domain.
func (s *Service) EvaluateTech(ctx context.Context, domain, question, answer string) storage.Evaluation {
	reply, err := s.client.Complete(ctx, api.Request{
		System:      prompts.TechEvaluatorSystem,
		User:        prompts.TechEvaluation(domain, question, answer),
		Temperature: 0.3,
		MaxTokens:   1200,
	})
	if err != nil {
		s.fallback(ctx, "tech_evaluation", err)
		return TechFallbackEvaluation()
	}
	return parser.ParseEvaluation(reply, parser.Technical)
}

func (s *Service) fallback(ctx context.Context, kind string, err error) {
	observe.Logger(ctx).Warn("generation failed, using fallback", "kind", kind, "err", err)
	if s.recorder != nil {
		s.recorder.IncrementFallback(ctx, kind)
	}
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
