package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://chat.example.com").
	// Used for generating absolute URLs in the login flow.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for auth cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// ChatTimeoutSeconds is the overall budget for the ask path.
	ChatTimeoutSeconds int `env:"HTTP_CHAT_TIMEOUT_SECONDS" envDefault:"30"`

	// AdminTimeoutSeconds is the overall budget for the admin path.
	AdminTimeoutSeconds int `env:"HTTP_ADMIN_TIMEOUT_SECONDS" envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.ChatTimeoutSeconds <= 0 {
		h.ChatTimeoutSeconds = 30
	}
	if h.AdminTimeoutSeconds <= 0 {
		h.AdminTimeoutSeconds = 10
	}
}
