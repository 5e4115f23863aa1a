package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and gatekeeping configuration
//   - http.go: HTTP server configuration
//   - knowledge.go: Knowledge-base object store configuration
//   - model.go: Generative model configuration
//   - cache.go: Redis stats cache configuration
type AppConfig struct {
	// IsDev controls development mode behavior (dev auth provider, text logs).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Knowledge base configuration
	Knowledge KnowledgeConfig

	// Generative model configuration
	Model ModelConfig

	// Stats cache configuration
	Cache CacheConfig

	// Upstream chat endpoint. When set the ask handler forwards questions
	// instead of answering in process (gateway deployment).
	ChatUpstreamURL string `env:"CHAT_UPSTREAM_URL" envDefault:""`

	// Identity directory configuration (admin stats, role assignment)
	Directory DirectoryConfig `envPrefix:"DIRECTORY_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Knowledge.Sanitize()
	c.Model.Sanitize()
	c.Cache.Sanitize()
}

// DirectoryConfig configures the identity directory used for admin stats
// and default-role assignment. The directory is the managed user pool the
// identity provider maintains; we only read from it (plus the one
// post-confirmation attribute write).
type DirectoryConfig struct {
	// UserPoolID identifies the managed user pool.
	UserPoolID string `env:"USER_POOL_ID" envDefault:""`

	// Region for the directory API. Empty falls back to ambient config.
	Region string `env:"REGION" envDefault:""`

	// Timeout bounds a single directory call. Must stay under the admin
	// handler budget.
	TimeoutSeconds int `env:"TIMEOUT_SECONDS" envDefault:"8"`
}

// Enabled reports whether the directory integration is configured.
func (d DirectoryConfig) Enabled() bool { return d.UserPoolID != "" }
