package auth

// Package auth contains domain-level types for authentication and
// authorization. It is pure and free of framework/adapter concerns.

// Role represents an application authorization role derived from the role
// claim in the ID token. Keep string form for easy logging and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	// RoleNone marks a principal with a missing or unrecognized role claim.
	// It is never written to a token; it exists so the policy can fail closed.
	RoleNone Role = ""
)

// ResourceClass is the access tier a route or endpoint requires.
type ResourceClass string

const (
	// ResourceUserTier is reachable by users and admins.
	ResourceUserTier ResourceClass = "user_tier"
	// ResourceAdminTier is reachable by admins only.
	ResourceAdminTier ResourceClass = "admin_tier"
)

// RoleFromClaim maps a raw role claim value to a Role. Anything that is not
// exactly "user" or "admin" resolves to RoleNone, which denies every gated
// resource. Unrecognized values are not an error.
func RoleFromClaim(raw string) Role {
	switch raw {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleUser):
		return RoleUser
	default:
		return RoleNone
	}
}

// Authorize decides whether a role may access a resource class. It is the
// single policy function every enforcement point calls: edge middleware,
// page loaders, and the function handlers. Total and side-effect free.
func Authorize(role Role, class ResourceClass) bool {
	switch class {
	case ResourceUserTier:
		return role == RoleUser || role == RoleAdmin
	case ResourceAdminTier:
		return role == RoleAdmin
	default:
		return false
	}
}
