package upstream

// Package upstream forwards validated questions to a backend chat endpoint
// and normalizes whatever comes back into the uniform answer/error envelope.
// It is used in gateway deployments where answering happens in a separate
// backend function; the handler has already re-validated session and
// question before anything is sent.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
)

const askPath = "/chatbot/ask"

// maxErrorBody bounds how much of an upstream error response is read.
const maxErrorBody = 64 << 10

// Client forwards questions to the configured upstream.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. timeout bounds the whole forwarded call; zero means
// the chat handler budget of 30s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Forward posts the question with the ID token as bearer credential and
// classifies the response: a 200 JSON body is the answer; a JSON error
// envelope is passed through as-is; anything else (an HTML error page from a
// misconfigured gateway, say) becomes a generic GATEWAY_ERROR rather than
// leaking upstream internals.
func (c *Client) Forward(ctx context.Context, question, conversationID, idToken string) (*chat.Answer, error) {
	body, err := json.Marshal(askRequest{Question: question, ConversationID: conversationID})
	if err != nil {
		return nil, apperr.Internal("failed to encode question").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("failed to build upstream request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Unavailable("the answer service is temporarily unavailable").
			WithCause(fmt.Errorf("forward question: %w", err))
	}
	defer resp.Body.Close()

	if !isJSON(resp.Header.Get("Content-Type")) {
		// Drain a bounded amount for the log cause; the raw body is never
		// returned to the caller.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apperr.GatewayMalformed("the answer service returned an unexpected response").
			WithCause(fmt.Errorf("upstream status %d with content-type %q: %.200s",
				resp.StatusCode, resp.Header.Get("Content-Type"), snippet))
	}

	if resp.StatusCode == http.StatusOK {
		var answer chat.Answer
		if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
			return nil, apperr.GatewayMalformed("the answer service returned an unexpected response").
				WithCause(fmt.Errorf("decode upstream answer: %w", err))
		}
		return &answer, nil
	}

	var envelope errorEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&envelope); err != nil ||
		envelope.Error.Code == "" {
		return nil, apperr.GatewayMalformed("the answer service returned an unexpected response").
			WithCause(fmt.Errorf("upstream status %d with undecodable error body", resp.StatusCode))
	}

	// Structured upstream errors pass through unchanged.
	return nil, &apperr.Error{
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
		Status:  resp.StatusCode,
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
