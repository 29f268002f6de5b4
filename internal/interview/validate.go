package interview

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// User-facing validation messages.
const (
	MsgEmptyJobDescription = "Please enter a job description"
	MsgTooFewWords         = "Please enter a proper job description (at least 5 words)"
	MsgNoLetters           = "Please enter meaningful text, not just numbers/symbols"
	MsgTooShort            = "Description too short - please provide more details"
	MsgDomainNotIdentified = "Couldn't identify a valid domain - please provide a clearer job description"
	MsgEmptyDomain         = "Please enter a domain/title"
	MsgNoAudio             = "No audio received - please record your answer"
)

const (
	minJobDescriptionWords  = 5
	minJobDescriptionLength = 30
)

// ValidationError is returned for bad user input. The session is left
// unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidInput(msg string) error { return &ValidationError{Message: msg} }

// ValidateJobDescription applies the checks in order and returns the first
// failure.
func ValidateJobDescription(text string) error {
	if strings.TrimSpace(text) == "" {
		return invalidInput(MsgEmptyJobDescription)
	}
	if len(strings.Fields(text)) < minJobDescriptionWords {
		return invalidInput(MsgTooFewWords)
	}
	if strings.IndexFunc(text, unicode.IsLetter) < 0 {
		return invalidInput(MsgNoLetters)
	}
	if utf8.RuneCountInString(text) < minJobDescriptionLength {
		return invalidInput(MsgTooShort)
	}
	return nil
}
