package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload segment of a signed token. Values are
// advisory: no signature verification happens here or anywhere downstream of
// the identity provider. The provider signed the token when it issued it;
// re-verifying would mean shipping its public keys and duplicating provider
// logic, so callers treat the claims as authenticated-elsewhere input.
type Claims map[string]any

// DecodeClaims parses a compact signed token (three dot-separated base64url
// segments) and returns its payload claims. Returns nil if the token does not
// have exactly three segments or if base64url/JSON decoding fails. Decoding
// the same token twice yields identical claims.
func DecodeClaims(token string) Claims {
	parser := jwt.NewParser()
	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		return nil
	}
	return Claims(mc)
}

// Subject returns the sub claim, or "" when absent.
func (c Claims) Subject() string { return c.str("sub") }

// Email returns the email claim, or "" when absent.
func (c Claims) Email() string { return c.str("email") }

// Username returns the provider username claim, falling back to sub.
func (c Claims) Username() string {
	if u := c.str("username"); u != "" {
		return u
	}
	return c.Subject()
}

// ExpiresAt returns the exp claim as a time, or the zero time when absent
// or malformed. Tokens without exp are treated as already expired by
// ExpiredAt, keeping the gate fail-closed.
func (c Claims) ExpiresAt() time.Time {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// ExpiredAt reports whether the token is expired at the given instant.
func (c Claims) ExpiredAt(now time.Time) bool {
	exp := c.ExpiresAt()
	return exp.IsZero() || !now.Before(exp)
}

func (c Claims) str(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}
