package devauth

// Package devauth provides a config-driven AuthProvider for local development.
// It mints an unsigned token carrying the configured identity and role, which
// works because claims are decoded without signature verification everywhere
// downstream. Never enable it outside a developer machine.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	Username        string
	Email           string
	Role            string
	RoleClaim       string        // claim name the role is minted under, default "custom:role"
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce. Exchange ignores the code and
// mints a fresh token for the configured identity.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Username == "" {
		return nil, errors.New("dev auth: Username is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Role == "" {
		cfg.Role = string(domainauth.RoleUser)
	}
	if cfg.RoleClaim == "" {
		cfg.RoleClaim = "custom:role"
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	return &Provider{cfg: cfg}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler)
// and returns a freshly minted token set for the configured identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (ports.TokenSet, error) {
	token, err := p.mintToken()
	if err != nil {
		return ports.TokenSet{}, fmt.Errorf("mint dev token: %w", err)
	}
	return ports.TokenSet{
		Session:  domainauth.Session{IDToken: token, AccessToken: token},
		Username: p.cfg.Username,
	}, nil
}

// mintToken builds a compact unsigned token. The signature segment is a
// fixed placeholder since nothing verifies it.
func (p *Provider) mintToken() (string, error) {
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(map[string]any{
		"sub":              p.cfg.Username,
		"cognito:username": p.cfg.Username,
		"email":            p.cfg.Email,
		p.cfg.RoleClaim:    p.cfg.Role,
		"exp":              time.Now().Add(p.cfg.SessionDuration).Unix(),
	})
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".devsignature", nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
