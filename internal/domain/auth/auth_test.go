package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".sig"
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		class ResourceClass
		allow bool
	}{
		{"admin user tier", RoleAdmin, ResourceUserTier, true},
		{"admin admin tier", RoleAdmin, ResourceAdminTier, true},
		{"user user tier", RoleUser, ResourceUserTier, true},
		{"user admin tier", RoleUser, ResourceAdminTier, false},
		{"none user tier", RoleNone, ResourceUserTier, false},
		{"none admin tier", RoleNone, ResourceAdminTier, false},
		{"unknown class", RoleAdmin, ResourceClass("billing"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allow, Authorize(tt.role, tt.class))
		})
	}
}

func TestRoleFromClaim(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleFromClaim("admin"))
	assert.Equal(t, RoleUser, RoleFromClaim("user"))
	// Unrecognized non-empty values resolve to none, not an error.
	assert.Equal(t, RoleNone, RoleFromClaim("superuser"))
	assert.Equal(t, RoleNone, RoleFromClaim("Admin"))
	assert.Equal(t, RoleNone, RoleFromClaim(""))
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := mintToken(t, map[string]any{
		"sub":         "user-1",
		"email":       "a@example.com",
		"username":    "alice",
		"custom:role": "user",
		"exp":         exp,
	})

	claims := DecodeClaims(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.Subject())
	assert.Equal(t, "a@example.com", claims.Email())
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, time.Unix(exp, 0), claims.ExpiresAt())
	assert.False(t, claims.ExpiredAt(time.Now()))
}

func TestDecodeClaimsIdempotent(t *testing.T) {
	token := mintToken(t, map[string]any{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	first := DecodeClaims(token)
	second := DecodeClaims(token)
	assert.Equal(t, first, second)
}

func TestDecodeClaimsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"bad base64 payload", "e30.!!!.sig"},
		{"non-json payload", "e30." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, DecodeClaims(tt.token))
		})
	}
}

func TestClaimsUsernameFallsBackToSubject(t *testing.T) {
	claims := DecodeClaims(mintToken(t, map[string]any{"sub": "user-9"}))
	require.NotNil(t, claims)
	assert.Equal(t, "user-9", claims.Username())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	fresh := &Session{IDToken: mintToken(t, map[string]any{"exp": now.Add(time.Hour).Unix()})}
	assert.False(t, fresh.Expired(now))

	stale := &Session{IDToken: mintToken(t, map[string]any{"exp": now.Add(-time.Minute).Unix()})}
	assert.True(t, stale.Expired(now))

	// Missing exp fails closed.
	noExp := &Session{IDToken: mintToken(t, map[string]any{"sub": "u"})}
	assert.True(t, noExp.Expired(now))

	garbage := &Session{IDToken: "not-a-token"}
	assert.True(t, garbage.Expired(now))

	var nilSession *Session
	assert.False(t, nilSession.Valid())
}
