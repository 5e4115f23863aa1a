package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the managed identity provider's OIDC flow.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeDev uses a local token-minting provider (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, dev)", v)
	}
}

// OAuthConfig contains OIDC configuration for the managed identity provider.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls the dev auth provider identity.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	Sub   string `env:"SUB"   envDefault:"dev-user"`
	Email string `env:"EMAIL" envDefault:"dev@example.com"`
	Role  string `env:"ROLE"  envDefault:"admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// CookiePrefix is the identity provider's cookie naming prefix. Token
	// cookies follow "<prefix>.<user>.idToken" and friends, with
	// "<prefix>.LastAuthUser" pointing at the current principal.
	CookiePrefix string `env:"AUTH_COOKIE_PREFIX" envDefault:"IdentityServiceProvider"`

	// RoleClaim is a JMESPath expression that locates the role claim in the
	// decoded ID token payload. Providers differ on where they park custom
	// attributes, so this stays configurable.
	RoleClaim string `env:"AUTH_ROLE_CLAIM" envDefault:"\"custom:role\""`

	// MaxQuestionLength bounds the question accepted at the edge.
	MaxQuestionLength int `env:"AUTH_MAX_QUESTION_LENGTH" envDefault:"500"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.CookiePrefix == "" {
		a.CookiePrefix = "IdentityServiceProvider"
	}
	if a.RoleClaim == "" {
		a.RoleClaim = `"custom:role"`
	}
	if a.MaxQuestionLength <= 0 {
		a.MaxQuestionLength = 500
	}
}
