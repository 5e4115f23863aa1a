package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconworks/kb-chat-api/internal/adapters/cookiesession"
	"github.com/beaconworks/kb-chat-api/internal/adapters/roleclaim"
	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/testutil"
)

func newTestGatekeeper(t *testing.T) *Gatekeeper {
	t.Helper()
	extractor, err := roleclaim.New(`"custom:role"`)
	require.NoError(t, err)
	return &Gatekeeper{
		Resolver:  cookiesession.Resolver{Prefix: testCookiePrefix},
		Extractor: extractor,
	}
}

// okHandler records whether the guarded handler ran and echoes the principal.
func okHandler(t *testing.T, ran *bool, wantRole domainauth.Role) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*ran = true
		principal, ok := GetPrincipalFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantRole, principal.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code, body.Error.Message
}

func TestGatekeeper_BearerHeader(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	req := withBearer(httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil), "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatekeeper_CookieFallback(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	req := withSessionCookies(httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil), "alice", "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatekeeper_HeaderWinsOverCookies(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	// Header carries admin, cookies carry user; the header credential decides.
	h := gate.RequireTier(domainauth.ResourceAdminTier)(okHandler(t, &ran, domainauth.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = withSessionCookies(req, "alice", "user")
	req = withBearer(req, "admin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatekeeper_NoCredential(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil))

	assert.False(t, ran)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestGatekeeper_MalformedToken(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	req := httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGatekeeper_ExpiredToken(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	token := testutil.NewToken().WithRole("user").Expired().Build()
	req := httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Contains(t, message, "expired")
}

func TestGatekeeper_MissingExpiryIsExpired(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	token := testutil.NewToken().WithRole("user").WithoutClaim("exp").Build()
	req := httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGatekeeper_NoRole(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	token := testutil.NewToken().Build() // no role claim
	req := httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "FORBIDDEN", code)
}

func TestGatekeeper_UnknownRoleValue(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	req := withBearer(httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil), "superuser")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGatekeeper_UserOnAdminTier(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceAdminTier)(okHandler(t, &ran, domainauth.RoleAdmin))

	req := withBearer(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGatekeeper_AdminOnUserTier(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleAdmin))

	req := withBearer(httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil), "admin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatekeeper_NoDecisionCaching(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceAdminTier)(okHandler(t, &ran, domainauth.RoleAdmin))

	// First request: user role, denied.
	req := withBearer(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Second request with a newly issued admin token: allowed immediately.
	req = withBearer(httptest.NewRequest(http.MethodGet, "/admin/stats", nil), "admin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
}

func TestGatekeeperBrowser_RedirectsToLogin(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTierBrowser(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, ran)
	assert.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/", loc.Query().Get("redirect"))
	assert.Empty(t, loc.Query().Get("error"))
}

func TestGatekeeperBrowser_ExpiredSessionMarksRedirect(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTierBrowser(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	token := testutil.NewToken().WithRole("user").Expired().Build()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range testutil.SessionCookies(testCookiePrefix, "alice", token) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "session_expired", loc.Query().Get("error"))
}

func TestGatekeeperBrowser_InsufficientRoleRedirectsUnauthorized(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTierBrowser(domainauth.ResourceAdminTier)(okHandler(t, &ran, domainauth.RoleAdmin))

	req := withSessionCookies(httptest.NewRequest(http.MethodGet, "/admin", nil), "alice", "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestGatekeeperBrowser_PreservesQueryInRedirect(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTierBrowser(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin?tab=users", nil))

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/admin?tab=users", loc.Query().Get("redirect"))
}

func TestGatekeeper_TokenRoleChangeTakesEffect(t *testing.T) {
	// A token that expires mid-session stops working without any server
	// state to invalidate.
	extractor, err := roleclaim.New(`"custom:role"`)
	require.NoError(t, err)

	current := time.Now()
	gate := &Gatekeeper{
		Resolver:  cookiesession.Resolver{Prefix: testCookiePrefix},
		Extractor: extractor,
		Now:       func() time.Time { return current },
	}
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	token := testutil.NewToken().WithRole("user").ExpiresAt(time.Now().Add(30 * time.Minute)).Build()
	req := httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	current = current.Add(time.Hour)
	req = httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGatekeeper_MalformedAuthorizationHeaderIgnoresCookies(t *testing.T) {
	gate := newTestGatekeeper(t)
	ran := false
	h := gate.RequireTier(domainauth.ResourceUserTier)(okHandler(t, &ran, domainauth.RoleUser))

	req := withSessionCookies(httptest.NewRequest(http.MethodPost, "/chatbot/ask", nil), "alice", "user")
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, ran)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "UNAUTHORIZED"))
}
