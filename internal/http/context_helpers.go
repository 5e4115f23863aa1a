package httpx

import (
	"context"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
)

// Principal is the authenticated caller attached to the request context by
// the gatekeeper. It carries the decoded claims and the raw ID token so
// downstream handlers (the proxy in particular) can forward the credential.
type Principal struct {
	Username string
	Role     domainauth.Role
	Claims   domainauth.Claims
	IDToken  string
}

// principalKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type principalKey struct{}

// SetPrincipalInContext returns a child context that carries the given principal.
// If principal is nil, the original ctx is returned unchanged.
func SetPrincipalInContext(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipalFromContext returns the principal from context and a boolean indicating presence.
func GetPrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok && p != nil {
		return p, true
	}
	return nil, false
}
