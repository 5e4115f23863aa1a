package oidc

// Package oidc drives the hosted login flow against the identity provider.
// The exchange returns the raw token set; claims used for authorization are
// decoded from the ID token at request time, not here.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs one discovery fetch
// against the issuer to resolve the authorization and token endpoints.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if config.Scope == "" {
		config.Scope = "openid email profile"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	// Generate cryptographically secure state and nonce
	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	return authURL, state, nonce, nil
}

// Exchange trades the authorization code for the provider's token set. The
// ID token is verified here, at the one point where we talk to the issuer
// directly; afterwards the application only decodes it.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.TokenSet, error) {
	if in.Code == "" {
		return ports.TokenSet{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return ports.TokenSet{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return ports.TokenSet{}, errors.New("nonce is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return ports.TokenSet{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := getIDTokenFromToken(token)
	if err != nil {
		return ports.TokenSet{}, err
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.TokenSet{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Nonce    string `json:"nonce"`
		Username string `json:"cognito:username"`
		Sub      string `json:"sub"`
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return ports.TokenSet{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claims.Nonce != in.Nonce {
		return ports.TokenSet{}, errors.New("invalid nonce")
	}

	username := claims.Username
	if username == "" {
		username = claims.Sub
	}
	if username == "" {
		return ports.TokenSet{}, errors.New("id_token carries no subject")
	}

	return ports.TokenSet{
		Session: domainauth.Session{
			IDToken:      rawID,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		},
		Username: username,
	}, nil
}

// LogoutURL returns the provider's hosted logout endpoint, or empty when the
// provider has none configured.
func (p *Provider) LogoutURL() string {
	return p.logoutURL
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
