package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Store             ports.KnowledgeStore
	Generator         ports.AnswerGenerator
	MaxQuestionLength int
	Logger            *slog.Logger
	Now               func() time.Time // test seam, defaults to time.Now
}

// ChatService orchestrates the question pipeline: validate, retrieve context
// documents, assemble the prompt, call the model once, shape the answer.
type ChatService struct {
	store     ports.KnowledgeStore
	generator ports.AnswerGenerator
	maxLen    int
	logger    *slog.Logger
	now       func() time.Time
}

// NewChatService constructs a new ChatService.
func NewChatService(opts ChatServiceOptions) *ChatService {
	if opts.MaxQuestionLength <= 0 {
		opts.MaxQuestionLength = chat.DefaultMaxQuestionLength
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ChatService{
		store:     opts.Store,
		generator: opts.Generator,
		maxLen:    opts.MaxQuestionLength,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// AskInput groups parameters for answering a question.
type AskInput struct {
	Question       string
	ConversationID string
}

// Ask answers a single question. Document retrieval is best-effort: when the
// store cannot be listed at all the model is still called, with an empty
// context, rather than failing the request. Model failures do fail the
// request since there is no answer without one.
func (s *ChatService) Ask(ctx context.Context, in AskInput) (*chat.Answer, error) {
	question, err := chat.ValidateQuestion(in.Question, s.maxLen)
	if err != nil {
		return nil, apperr.InvalidQuestion(err.Error())
	}
	if s.generator == nil {
		return nil, apperr.Misconfigured("answer generation is not configured")
	}

	var docs []chat.Document
	if s.store != nil {
		docs, err = s.store.Retrieve(ctx)
		if err != nil {
			s.logger.Warn("knowledge retrieval failed, answering without context", "error", err)
			docs = nil
		}
	}

	prompt := chat.BuildPrompt(question, docs)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	conversationID := in.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	return &chat.Answer{
		Answer:         text,
		ConversationID: conversationID,
		Sources:        chat.SourcesFor(docs),
		Timestamp:      chat.Timestamp(s.now()),
	}, nil
}
