package chat

// Package chat contains domain types for the retrieval-augmented answer
// pipeline. It is pure; storage and model access live in adapters.

import "time"

// DocumentMetadata carries optional descriptive fields on a knowledge document.
type DocumentMetadata struct {
	Category    string   `json:"category,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Document is one knowledge-base entry as stored in the object store.
// Read-only from this system's perspective.
type Document struct {
	DocumentID string           `json:"documentId"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Metadata   DocumentMetadata `json:"metadata"`
}

// Source identifies a document that contributed to an answer.
type Source struct {
	DocumentName string `json:"documentName"`
	DocumentID   string `json:"documentId"`
}

// Answer is one completed conversation turn.
type Answer struct {
	Answer         string   `json:"answer"`
	ConversationID string   `json:"conversationId"`
	Sources        []Source `json:"sources"`
	Timestamp      string   `json:"timestamp"`
}

// Timestamp formats an instant the way the API promises it: RFC 3339 UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SourcesFor maps retrieved documents to answer sources. Always returns a
// non-nil slice so the JSON encodes as [] rather than null.
func SourcesFor(docs []Document) []Source {
	sources := make([]Source, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, Source{DocumentName: d.Title, DocumentID: d.DocumentID})
	}
	return sources
}
