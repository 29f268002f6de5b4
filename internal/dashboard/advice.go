package dashboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"evalia/internal/api"
	"evalia/internal/observe"
	"evalia/internal/prompts"
	"evalia/internal/storage"
)

const maxCourses = 5

// Suggestions is the improvement plan.
type Suggestions struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	ActionItems  []string `json:"action_items"`
}

func failedSuggestions() Suggestions {
	return Suggestions{
		Strengths:    []string{},
		Improvements: []string{"Failed to generate improvement suggestions"},
		ActionItems:  []string{"Check your API connection", "Verify your results data"},
	}
}

// Course is one recommended online course.
type Course struct {
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Level       string `json:"level,omitempty"`
}

type performanceItem struct {
	Type       string              `json:"type"`
	Question   string              `json:"question"`
	Answer     string              `json:"answer"`
	Evaluation *storage.Evaluation `json:"evaluation"`
}

func performance(r *storage.Results) []performanceItem {
	items := make([]performanceItem, 0, len(r.HRResults)+len(r.TechResults))
	for _, rec := range r.HRResults {
		items = append(items, performanceItem{"HR", rec.Question, rec.Answer, rec.Evaluation})
	}
	for _, rec := range r.TechResults {
		items = append(items, performanceItem{"Technical", rec.Question, rec.Answer, rec.Evaluation})
	}
	return items
}

// ImprovementSuggestions asks for strengths, improvements and action items.
// Results with identical content share a cached answer.
func (s *Service) ImprovementSuggestions(ctx context.Context, r *storage.Results) Suggestions {
	items := performance(r)
	if len(items) == 0 {
		return Suggestions{
			Strengths:    []string{"No interview data available for analysis"},
			Improvements: []string{},
			ActionItems:  []string{},
		}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return failedSuggestions()
	}
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := s.suggestions.Get(key); ok {
		return cached
	}

	reply, err := s.client.Complete(ctx, api.Request{
		User:        prompts.ImprovementSuggestions(string(data)),
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		s.fallback(ctx, "suggestions", err)
		return failedSuggestions()
	}

	var out Suggestions
	if err := json.Unmarshal([]byte(api.CleanJSONResponse(reply)), &out); err != nil {
		s.fallback(ctx, "suggestions", fmt.Errorf("decode suggestions: %w", err))
		return failedSuggestions()
	}
	out = Suggestions{
		Strengths:    nonNil(out.Strengths),
		Improvements: nonNil(out.Improvements),
		ActionItems:  nonNil(out.ActionItems),
	}
	s.suggestions.Set(key, out)
	return out
}

// CourseRecommendations returns at most five courses for domain. Any failure
// yields an empty list.
func (s *Service) CourseRecommendations(ctx context.Context, domain string) []Course {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return []Course{}
	}
	key := strings.ToLower(domain)
	if cached, ok := s.courses.Get(key); ok {
		return cached
	}

	reply, err := s.client.Complete(ctx, api.Request{
		User:        prompts.CourseRecommendations(domain),
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		s.fallback(ctx, "courses", err)
		return []Course{}
	}

	var payload struct {
		Courses []Course `json:"courses"`
	}
	if err := json.Unmarshal([]byte(api.CleanJSONResponse(reply)), &payload); err != nil {
		s.fallback(ctx, "courses", fmt.Errorf("decode courses: %w", err))
		return []Course{}
	}
	courses := payload.Courses
	if len(courses) > maxCourses {
		courses = courses[:maxCourses]
	}
	if courses == nil {
		courses = []Course{}
	}
	s.courses.Set(key, courses)
	return courses
}

func (s *Service) fallback(ctx context.Context, kind string, err error) {
	observe.Logger(ctx).Warn("dashboard generation failed", "kind", kind, "err", err)
	if s.recorder != nil {
		s.recorder.IncrementFallback(ctx, kind)
	}
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
