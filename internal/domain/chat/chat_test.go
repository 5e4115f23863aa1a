package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestion(t *testing.T) {
	got, err := ValidateQuestion("  What is the PTO policy?  ", 500)
	require.NoError(t, err)
	assert.Equal(t, "What is the PTO policy?", got)

	_, err = ValidateQuestion("", 500)
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = ValidateQuestion("   \n\t ", 500)
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = ValidateQuestion(strings.Repeat("a", 501), 500)
	assert.ErrorIs(t, err, ErrQuestionTooLong)

	// Bound counts runes, not bytes.
	_, err = ValidateQuestion(strings.Repeat("ü", 500), 500)
	assert.NoError(t, err)

	// Zero max falls back to the default bound.
	_, err = ValidateQuestion(strings.Repeat("a", DefaultMaxQuestionLength+1), 0)
	assert.ErrorIs(t, err, ErrQuestionTooLong)
}

func TestBuildPromptWithDocuments(t *testing.T) {
	docs := []Document{
		{DocumentID: "d1", Title: "PTO Policy", Content: "30 days."},
		{DocumentID: "d2", Title: "Remote Work", Content: "Allowed."},
	}

	prompt := BuildPrompt("How much PTO do I get?", docs)

	assert.Contains(t, prompt, "Document 1: PTO Policy\n30 days.\n\n")
	assert.Contains(t, prompt, "Document 2: Remote Work\nAllowed.\n\n")
	assert.Contains(t, prompt, "Question: How much PTO do I get?")
	// Context comes before the question.
	assert.Less(t, strings.Index(prompt, "Document 1"), strings.Index(prompt, "Question:"))
}

func TestBuildPromptWithoutDocumentsOmitsContext(t *testing.T) {
	prompt := BuildPrompt("How much PTO do I get?", nil)

	assert.NotContains(t, prompt, "Document")
	assert.Contains(t, prompt, "Question: How much PTO do I get?")
	assert.Contains(t, prompt, "not based on the knowledge base")
}

func TestSourcesFor(t *testing.T) {
	sources := SourcesFor(nil)
	require.NotNil(t, sources)
	assert.Empty(t, sources)

	sources = SourcesFor([]Document{{DocumentID: "d1", Title: "PTO Policy"}})
	require.Len(t, sources, 1)
	assert.Equal(t, Source{DocumentName: "PTO Policy", DocumentID: "d1"}, sources[0])
}

func TestTimestampIsRFC3339UTC(t *testing.T) {
	ts := Timestamp(time.Date(2025, 6, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, "2025-06-01T11:30:00Z", ts)
}
