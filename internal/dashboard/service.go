package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"evalia/internal/api"
	"evalia/internal/storage"
)

const (
	CourseCacheTTL     = 24 * time.Hour
	SuggestionCacheTTL = time.Hour
)

// FallbackRecorder is told when a generated section falls back.
type FallbackRecorder interface {
	IncrementFallback(ctx context.Context, kind string)
}

// Service builds reports. It only reads persisted results, never live
// sessions.
type Service struct {
	client      api.Client
	store       storage.ResultStore
	recorder    FallbackRecorder
	courses     *ttlCache[[]Course]
	suggestions *ttlCache[Suggestions]
}

func New(client api.Client, store storage.ResultStore, recorder FallbackRecorder) *Service {
	return &Service{
		client:      client,
		store:       store,
		recorder:    recorder,
		courses:     newTTLCache[[]Course](CourseCacheTTL),
		suggestions: newTTLCache[Suggestions](SuggestionCacheTTL),
	}
}

// Averages are the one-decimal renderings shown on the dashboard.
type Averages struct {
	HR      string `json:"hr"`
	Tech    string `json:"tech"`
	Overall string `json:"overall"`
}

// Report is everything the dashboard shows.
type Report struct {
	Scores         Scores          `json:"scores"`
	Averages       Averages        `json:"averages"`
	QuestionScores []QuestionScore `json:"question_scores"`
	Feedback       []FeedbackRow   `json:"feedback"`
	Suggestions    Suggestions     `json:"suggestions"`
	Courses        []Course        `json:"courses"`
}

// Load reads the latest persisted results.
func (s *Service) Load(ctx context.Context) (*storage.Results, error) {
	r, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return r, nil
}

// Current loads the persisted results and builds the report from them.
func (s *Service) Current(ctx context.Context) (*Report, error) {
	r, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, r)
}

// Build computes the report. The two generated sections run concurrently;
// both absorb their own failures.
func (s *Service) Build(ctx context.Context, r *storage.Results) (*Report, error) {
	scores := CalculateScores(r)
	rep := &Report{
		Scores: scores,
		Averages: Averages{
			HR:      FormatAverage(scores.HRAvg),
			Tech:    FormatAverage(scores.TechAvg),
			Overall: FormatAverage(scores.OverallAvg),
		},
		QuestionScores: QuestionScores(r),
		Feedback:       Feedback(r),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep.Suggestions = s.ImprovementSuggestions(gctx, r)
		return nil
	})
	g.Go(func() error {
		rep.Courses = s.CourseRecommendations(gctx, scores.Domain)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rep, nil
}
