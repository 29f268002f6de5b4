// Package dashboard computes the results report from a persisted interview:
// scores, per-question feedback, an improvement plan, course
// recommendations and job portal links.
package dashboard

import (
	"fmt"

	"evalia/internal/storage"
)

const maxScorePerQuestion = 10

// Scores summarises both rounds.
type Scores struct {
	Domain     string  `json:"domain"`
	HRTotal    int     `json:"hr_total"`
	TechTotal  int     `json:"tech_total"`
	HRMax      int     `json:"hr_max"`
	TechMax    int     `json:"tech_max"`
	HRAvg      float64 `json:"hr_avg"`
	TechAvg    float64 `json:"tech_avg"`
	OverallAvg float64 `json:"overall_avg"`
}

// CalculateScores sums the scores of evaluated records. Averages are 0 for a
// round without evaluations.
func CalculateScores(r *storage.Results) Scores {
	hr := evaluatedScores(r.HRResults)
	tech := evaluatedScores(r.TechResults)

	domain := r.Domain
	if domain == "" {
		domain = "Unknown"
	}
	return Scores{
		Domain:     domain,
		HRTotal:    sum(hr),
		TechTotal:  sum(tech),
		HRMax:      maxScorePerQuestion * len(r.HRResults),
		TechMax:    maxScorePerQuestion * len(r.TechResults),
		HRAvg:      average(hr),
		TechAvg:    average(tech),
		OverallAvg: average(append(append([]int(nil), hr...), tech...)),
	}
}

// FormatAverage renders an average the way the dashboard shows it: one
// decimal place.
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.1f", avg)
}

func evaluatedScores(records []storage.AnswerRecord) []int {
	var out []int
	for _, rec := range records {
		if rec.Evaluation != nil {
			out = append(out, rec.Evaluation.Score)
		}
	}
	return out
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func average(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(sum(xs)) / float64(len(xs))
}

// QuestionScore is one bar of the per-question chart.
type QuestionScore struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Score    int    `json:"score"`
	Question string `json:"question"`
}

// QuestionScores lists evaluated questions, HR first. Labels keep the
// original question position.
func QuestionScores(r *storage.Results) []QuestionScore {
	var out []QuestionScore
	add := func(kind string, records []storage.AnswerRecord) {
		for i, rec := range records {
			if rec.Evaluation == nil {
				continue
			}
			out = append(out, QuestionScore{
				Type:     kind,
				Label:    fmt.Sprintf("Q%d", i+1),
				Score:    rec.Evaluation.Score,
				Question: rec.Question,
			})
		}
	}
	add("HR", r.HRResults)
	add("Technical", r.TechResults)
	return out
}

// FeedbackRow is the detailed view of one answer.
type FeedbackRow struct {
	Type            string   `json:"type"`
	Number          int      `json:"number"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	ImprovementTips []string `json:"improvement_tips"`
	KnowledgeGaps   []string `json:"knowledge_gaps,omitempty"`
}

// Feedback combines HR then technical details. Unevaluated records are
// skipped.
func Feedback(r *storage.Results) []FeedbackRow {
	var rows []FeedbackRow
	add := func(kind string, records []storage.AnswerRecord) {
		for i, rec := range records {
			if rec.Evaluation == nil {
				continue
			}
			rows = append(rows, FeedbackRow{
				Type:            kind,
				Number:          i + 1,
				Question:        rec.Question,
				Answer:          rec.Answer,
				Score:           rec.Evaluation.Score,
				Feedback:        rec.Evaluation.Feedback,
				ImprovementTips: rec.Evaluation.ImprovementTips,
				KnowledgeGaps:   rec.Evaluation.KnowledgeGaps,
			})
		}
	}
	add("HR", r.HRResults)
	add("Technical", r.TechResults)
	return rows
}
