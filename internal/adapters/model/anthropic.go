package model

// Package model wraps the generative-model endpoint behind the
// AnswerGenerator port. One synchronous call per question, fixed output
// bound and temperature, no internal retries.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
)

// Generator calls the Anthropic Messages API.
type Generator struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

// Options configures a Generator.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // per-call bound, default 20s
}

// New constructs a Generator. Transient failures are surfaced to the
// caller, not retried here: retrying is a client decision, and 4xx-class
// failures must never be retried at all.
func New(opts Options) *Generator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{
		client: anthropic.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithMaxRetries(0),
		),
		model:       anthropic.Model(opts.Model),
		maxTokens:   maxTokens,
		temperature: opts.Temperature,
		timeout:     timeout,
	}
}

// Generate sends the assembled prompt and returns the model's text.
// Failures — including timeouts, non-2xx responses, and responses with no
// text content — map to SERVICE_UNAVAILABLE; an empty string is never
// silently returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", apperr.Unavailable("the answer service is temporarily unavailable").
			WithCause(fmt.Errorf("model call: %w", err))
	}

	text := ExtractText(msg)
	if text == "" {
		return "", apperr.Unavailable("the answer service returned no content").
			WithCause(fmt.Errorf("model response %s had no text blocks", msg.ID))
	}
	return text, nil
}

// ExtractText concatenates the text blocks of a model response.
func ExtractText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
