package auth

import "time"

// Session is the per-request pairing of provider tokens resolved from
// cookies or the Authorization header. It is ephemeral: reconstructed on
// every request and never stored server-side beyond that request.
type Session struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
}

// Valid reports whether the session carries an ID token. The role claim
// lives in the ID token payload, so an access token alone is insufficient.
func (s *Session) Valid() bool { return s != nil && s.IDToken != "" }

// Claims decodes the ID token payload. Nil when the session is invalid or
// the token is malformed.
func (s *Session) Claims() Claims {
	if !s.Valid() {
		return nil
	}
	return DecodeClaims(s.IDToken)
}

// Expired reports whether the session's ID token is expired at now.
// Malformed tokens count as expired.
func (s *Session) Expired(now time.Time) bool {
	claims := s.Claims()
	if claims == nil {
		return true
	}
	return claims.ExpiredAt(now)
}
