package ports

// Package ports defines interfaces (hexagonal ports) for the chat pipeline
// and auth flow. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
)

// ErrCacheMiss is returned by StatsCache.Get when no aggregate is cached.
var ErrCacheMiss = errors.New("cache miss")

// KnowledgeStore retrieves knowledge documents from the object store.
// Retrieval is best-effort: a single document's fetch or parse failure is
// logged and skipped, never failing the batch. An empty store yields an
// empty slice and no error.
type KnowledgeStore interface {
	Retrieve(ctx context.Context) ([]chat.Document, error)
}

// AnswerGenerator wraps a single synchronous call to the generative model.
// A non-2xx response, a malformed body, or missing content surfaces as an
// error, never as an empty string.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UserStats is the admin stats aggregate computed from the identity directory.
// Timestamp records when the aggregate was computed; a cached aggregate keeps
// its original computation time.
type UserStats struct {
	TotalUsers  int            `json:"totalUsers"`
	UsersByRole map[string]int `json:"usersByRole"`
	Timestamp   string         `json:"timestamp"`
}

// Directory reads from the managed identity directory and performs the one
// administrative write this system makes: assigning the default role after
// signup confirmation.
type Directory interface {
	CountUsersByRole(ctx context.Context) (UserStats, error)
	AssignDefaultRole(ctx context.Context, username string) error
}

// StatsCache caches the admin stats aggregate. Authorization decisions are
// never cached; implementations hold only this aggregate.
type StatsCache interface {
	Get(ctx context.Context) (UserStats, error) // ErrCacheMiss when absent
	Save(ctx context.Context, stats UserStats, ttl time.Duration) error
}

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// TokenSet is the outcome of a completed login: the provider tokens that get
// written to cookies, plus the principal they belong to.
type TokenSet struct {
	Session  domainauth.Session
	Username string
}

// AuthProvider initiates and completes an authentication flow against the IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and
	// returns the issued tokens.
	Exchange(ctx context.Context, in ExchangeInput) (TokenSet, error)
}

// RoleExtractor locates the raw role claim value inside a decoded token
// payload. Providers differ on where custom attributes live, so the lookup
// is pluggable.
type RoleExtractor interface {
	Extract(claims domainauth.Claims) string
}
