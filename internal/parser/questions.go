package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseQuestions keeps numbered lines, strips their "N. " marker and returns
// at most n questions. When nothing usable is found a copy of fallback is
// returned.
func ParseQuestions(text string, n int, fallback []string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(line); !unicode.IsDigit(r) {
			continue
		}
		if _, rest, ok := strings.Cut(line, ". "); ok {
			line = rest
		}
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
		if n > 0 && len(questions) == n {
			break
		}
	}

	if len(questions) == 0 {
		return append([]string(nil), fallback...)
	}
	return questions
}
