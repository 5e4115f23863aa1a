package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
	"github.com/beaconworks/kb-chat-api/internal/service"
)

// ChatAsker answers validated questions locally.
type ChatAsker interface {
	Ask(ctx context.Context, in service.AskInput) (*chat.Answer, error)
}

// AnswerForwarder forwards questions to an upstream answering service.
type AnswerForwarder interface {
	Forward(ctx context.Context, question, conversationID, idToken string) (*chat.Answer, error)
}

// ChatHandlers provides HTTP handlers for the question endpoint. When
// Upstream is set the handler runs in proxy mode and never touches the local
// pipeline; session and question checks still happen here first.
type ChatHandlers struct {
	Svc               ChatAsker
	Upstream          AnswerForwarder // optional
	MaxQuestionLength int
	Logger            *slog.Logger
}

func (h *ChatHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *ChatHandlers) maxLen() int {
	if h.MaxQuestionLength > 0 {
		return h.MaxQuestionLength
	}
	return chat.DefaultMaxQuestionLength
}

type askRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId"`
}

// Ask handles the question endpoint.
// POST /chatbot/ask.
func (h *ChatHandlers) Ask(w http.ResponseWriter, r *http.Request) {
	principal, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		// The gatekeeper guards this route; reaching here without a
		// principal means a wiring mistake, not a caller mistake.
		WriteAppError(w, apperr.Internal("an unexpected error occurred"))
		return
	}

	var req askRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	// Validate before any network call so proxy and direct mode reject the
	// same inputs with the same envelope.
	question, err := chat.ValidateQuestion(req.Question, h.maxLen())
	if err != nil {
		WriteAppError(w, apperr.InvalidQuestion(err.Error()))
		return
	}

	var answer *chat.Answer
	switch {
	case h.Upstream != nil:
		answer, err = h.Upstream.Forward(r.Context(), question, req.ConversationID, principal.IDToken)
	case h.Svc != nil:
		answer, err = h.Svc.Ask(r.Context(), service.AskInput{
			Question:       question,
			ConversationID: req.ConversationID,
		})
	default:
		WriteAppError(w, apperr.Misconfigured("question answering is not configured"))
		return
	}
	if err != nil {
		h.logger().Error("question failed",
			slog.String("user", principal.Username),
			slog.Any("error", err))
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}
