package testutil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
)

// TokenBuilder provides a fluent interface for minting unsigned test tokens.
// The signature segment is a placeholder; the application decodes claims
// without verifying signatures.
type TokenBuilder struct {
	claims map[string]any
}

// NewToken creates a TokenBuilder with sensible defaults.
func NewToken() *TokenBuilder {
	return &TokenBuilder{
		claims: map[string]any{
			"sub":              "test-user",
			"email":            "test-user@example.com",
			"cognito:username": "test-user",
			"exp":              time.Now().Add(time.Hour).Unix(),
		},
	}
}

// WithSubject sets the sub claim.
func (b *TokenBuilder) WithSubject(sub string) *TokenBuilder {
	b.claims["sub"] = sub
	return b
}

// WithRole sets the role claim under the default claim name.
func (b *TokenBuilder) WithRole(role string) *TokenBuilder {
	b.claims["custom:role"] = role
	return b
}

// WithClaim sets an arbitrary claim.
func (b *TokenBuilder) WithClaim(name string, value any) *TokenBuilder {
	b.claims[name] = value
	return b
}

// WithoutClaim removes a claim.
func (b *TokenBuilder) WithoutClaim(name string) *TokenBuilder {
	delete(b.claims, name)
	return b
}

// ExpiresAt sets the exp claim.
func (b *TokenBuilder) ExpiresAt(t time.Time) *TokenBuilder {
	b.claims["exp"] = t.Unix()
	return b
}

// Expired sets the exp claim in the past.
func (b *TokenBuilder) Expired() *TokenBuilder {
	return b.ExpiresAt(time.Now().Add(-time.Hour))
}

// Build returns the compact token string.
func (b *TokenBuilder) Build() string {
	header, _ := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	payload, _ := json.Marshal(b.claims)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("testsignature"))
}

// Session returns a session carrying the built token as the ID token.
func (b *TokenBuilder) Session() domainauth.Session {
	return domainauth.Session{IDToken: b.Build()}
}

// SessionCookies returns the cookies a browser would carry after login,
// following the hosted-login naming convention.
func SessionCookies(prefix, username, idToken string) []*http.Cookie {
	return []*http.Cookie{
		{Name: prefix + ".LastAuthUser", Value: username},
		{Name: prefix + "." + username + ".idToken", Value: idToken},
		{Name: prefix + "." + username + ".accessToken", Value: "test-access-token"},
	}
}
