// Package parser turns free-form model output into the fixed shapes the
// interview flow stores. Every function here is total: malformed input
// yields defaults, never an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"evalia/internal/storage"
)

// Kind selects which evaluation template is being parsed.
type Kind int

const (
	HR Kind = iota
	Technical
)

func (k Kind) String() string {
	if k == Technical {
		return "technical"
	}
	return "hr"
}

const (
	DefaultScore    = 5
	DefaultFeedback = "No feedback available"

	maxTips = 3
	maxGaps = 2
)

const (
	labelScore    = "Score"
	labelFeedback = "Feedback"
	labelTips     = "Improvement Tips"
	labelGaps     = "Knowledge Gaps"
)

var (
	scorePattern = regexp.MustCompile(`Score:\s*(\d+)/10`)
	labelPattern = regexp.MustCompile(`(?m)^[ \t]*(Score|Feedback|Improvement Tips|Knowledge Gaps):`)
)

// ParseEvaluation extracts score, feedback, tips and (for Technical) knowledge
// gaps. The score is taken verbatim and not clamped to 1-10.
func ParseEvaluation(text string, kind Kind) storage.Evaluation {
	ev := storage.Evaluation{
		Score:           DefaultScore,
		Feedback:        DefaultFeedback,
		ImprovementTips: []string{},
	}
	if kind == Technical {
		ev.KnowledgeGaps = []string{}
	}

	if m := scorePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			ev.Score = n
		}
	}

	secs := splitSections(text)
	if fb := strings.TrimSpace(secs[labelFeedback]); fb != "" {
		ev.Feedback = fb
	}
	if body, ok := secs[labelTips]; ok {
		ev.ImprovementTips = bulletLines(body, maxTips)
	}
	if kind == Technical {
		if body, ok := secs[labelGaps]; ok {
			ev.KnowledgeGaps = bulletLines(body, maxGaps)
		}
	}
	return ev
}

// splitSections maps each label to the text between it and the next label.
// Labels count only at the start of a line. Only the first occurrence of a label opens a section, so a missing later
// label never swallows an earlier one.
func splitSections(text string) map[string]string {
	locs := labelPattern.FindAllStringSubmatchIndex(text, -1)
	out := make(map[string]string, len(locs))
	for i, loc := range locs {
		label := text[loc[2]:loc[3]]
		if _, seen := out[label]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[label] = text[loc[1]:end]
	}
	return out
}

// bulletLines returns up to limit non-blank lines with bullet marks removed.
func bulletLines(body string, limit int) []string {
	items := []string{}
	for _, line := range strings.Split(body, "\n") {
		item := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-•* "))
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items
}
