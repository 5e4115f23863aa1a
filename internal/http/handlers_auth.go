package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beaconworks/kb-chat-api/internal/adapters/cookiesession"
	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/ports"
	"github.com/beaconworks/kb-chat-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*ports.TokenSet, error)
	ConfirmSignup(ctx context.Context, username string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Resolver     cookiesession.Resolver
	CookieDomain string
	Secure       bool
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

const (
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	oauthRedirectCookie = "oauth_redirect"
	oauthCookieTTL      = 10 * time.Minute
)

// Login handles the login initiation endpoint.
// GET /auth/login?redirect=<optional_path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectPath := r.URL.Query().Get("redirect")
	if redirectPath == "" {
		redirectPath = "/"
	}

	// Allow only relative paths (no scheme/host), must start with "/"
	u, err := url.Parse(redirectPath)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		redirectPath = "/"
	}

	result, err := h.Svc.BeginLogin(r.Context(), redirectPath)
	if err != nil {
		h.logger().Error("begin login failed", slog.Any("error", err))
		WriteAppError(w, apperr.Unavailable("login is temporarily unavailable"))
		return
	}

	h.setTempCookie(w, oauthStateCookie, result.State)
	h.setTempCookie(w, oauthNonceCookie, result.Nonce)
	h.setTempCookie(w, oauthRedirectCookie, redirectPath)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteAppError(w, apperr.InvalidRequest("authorization code is required"))
		return
	}
	if state == "" {
		WriteAppError(w, apperr.InvalidRequest("state parameter is required"))
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteAppError(w, apperr.InvalidRequest("invalid or missing state parameter"))
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteAppError(w, apperr.InvalidRequest("missing nonce parameter"))
		return
	}

	tokens, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().Error("complete login failed", slog.Any("error", err))
		WriteAppError(w, apperr.Unauthorized("login could not be completed"))
		return
	}

	h.setSessionCookies(w, tokens)
	h.clearCookie(w, oauthStateCookie)
	h.clearCookie(w, oauthNonceCookie)

	redirectPath := "/"
	if c, cErr := r.Cookie(oauthRedirectCookie); cErr == nil && strings.HasPrefix(c.Value, "/") {
		redirectPath = c.Value
	}
	h.clearCookie(w, oauthRedirectCookie)

	http.Redirect(w, r, redirectPath, http.StatusFound)
}

// Logout handles the logout endpoint. It clears the token cookies for the
// current principal; there is no server-side session to destroy.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	base := h.Resolver.Prefix + "."
	user := ""
	if c, err := r.Cookie(base + "LastAuthUser"); err == nil {
		user = c.Value
	}
	if user != "" {
		for _, name := range h.Resolver.CookieNames(user) {
			h.clearCookie(w, name)
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

type confirmRequest struct {
	Username string `json:"username"`
}

// Confirm handles post-signup confirmation, assigning the default role.
// POST /auth/confirm.
func (h *AuthHandlers) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		WriteAppError(w, apperr.InvalidRequest("username is required"))
		return
	}

	if err := h.Svc.ConfirmSignup(r.Context(), req.Username); err != nil {
		h.logger().Error("signup confirmation failed",
			slog.String("username", req.Username),
			slog.Any("error", err))
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// setSessionCookies writes the provider token cookies under the shared
// naming convention so the gatekeeper's resolver finds them.
func (h *AuthHandlers) setSessionCookies(w http.ResponseWriter, tokens *ports.TokenSet) {
	names := h.Resolver.CookieNames(tokens.Username)
	values := []string{
		tokens.Session.IDToken,
		tokens.Session.AccessToken,
		tokens.Session.RefreshToken,
		tokens.Username,
	}
	for i, name := range names {
		if values[i] == "" {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    values[i],
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   h.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *AuthHandlers) setTempCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  time.Now().Add(oauthCookieTTL),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
