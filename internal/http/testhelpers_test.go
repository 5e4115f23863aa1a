package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beaconworks/kb-chat-api/internal/adapters/roleclaim"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
	"github.com/beaconworks/kb-chat-api/internal/ports"
	"github.com/beaconworks/kb-chat-api/internal/service"
	"github.com/beaconworks/kb-chat-api/internal/testutil"
)

const testCookiePrefix = "IdentityServiceProvider"

// stubChat is a ChatAsker with a programmable response.
type stubChat struct {
	answer *chat.Answer
	err    error
	lastIn service.AskInput
	called bool
}

func (s *stubChat) Ask(_ context.Context, in service.AskInput) (*chat.Answer, error) {
	s.called = true
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	if s.answer != nil {
		return s.answer, nil
	}
	return &chat.Answer{
		Answer:         "stub answer",
		ConversationID: "conv-stub",
		Sources:        []chat.Source{},
		Timestamp:      "2026-03-01T12:00:00Z",
	}, nil
}

// stubStats is a StatsProvider with a programmable response.
type stubStats struct {
	stats ports.UserStats
	err   error
}

func (s *stubStats) UserStats(_ context.Context) (ports.UserStats, error) {
	if s.err != nil {
		return ports.UserStats{}, s.err
	}
	return s.stats, nil
}

// newTestRouter wires a router around the given stubs with the real role
// extractor and cookie conventions.
func newTestRouter(t *testing.T, services RouterServices) http.Handler {
	t.Helper()

	if services.RoleExtractor == nil {
		extractor, err := roleclaim.New(`"custom:role"`)
		require.NoError(t, err)
		services.RoleExtractor = extractor
	}
	if services.CookiePrefix == "" {
		services.CookiePrefix = testCookiePrefix
	}
	return NewRouter(services)
}

// withBearer sets the Authorization header for a role-carrying test token.
func withBearer(r *http.Request, role string) *http.Request {
	token := testutil.NewToken().WithRole(role).Build()
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withSessionCookies attaches the provider-convention cookies for a
// role-carrying test token.
func withSessionCookies(r *http.Request, username, role string) *http.Request {
	token := testutil.NewToken().WithSubject(username).WithRole(role).Build()
	for _, c := range testutil.SessionCookies(testCookiePrefix, username, token) {
		r.AddCookie(c)
	}
	return r
}
