package chat

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultMaxQuestionLength is the edge bound on question length.
const DefaultMaxQuestionLength = 500

var (
	ErrEmptyQuestion   = errors.New("question must be a non-empty string")
	ErrQuestionTooLong = errors.New("question exceeds the maximum length")
)

// ValidateQuestion trims the question and enforces the length bound.
// maxLen <= 0 falls back to DefaultMaxQuestionLength. Returns the trimmed
// question; validation happens before any network call.
func ValidateQuestion(question string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxQuestionLength
	}
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "", ErrEmptyQuestion
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", ErrQuestionTooLong
	}
	return trimmed, nil
}
