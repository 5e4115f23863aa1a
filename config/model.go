package config

// ModelConfig contains generative model configuration.
type ModelConfig struct {
	// APIKey authenticates against the model endpoint.
	APIKey string `env:"MODEL_API_KEY" envDefault:""`

	// Name is the model identifier passed on every call.
	Name string `env:"MODEL_NAME" envDefault:"claude-3-5-sonnet-latest"`

	// MaxTokens is the fixed output length bound.
	MaxTokens int `env:"MODEL_MAX_TOKENS" envDefault:"1024"`

	// Temperature is the fixed sampling temperature.
	Temperature float64 `env:"MODEL_TEMPERATURE" envDefault:"0.5"`

	// TimeoutSeconds bounds a single model call. Must stay under the chat
	// handler budget.
	TimeoutSeconds int `env:"MODEL_TIMEOUT_SECONDS" envDefault:"20"`
}

// Sanitize applies guardrails to model configuration values.
func (m *ModelConfig) Sanitize() {
	if m.Name == "" {
		m.Name = "claude-3-5-sonnet-latest"
	}
	if m.MaxTokens <= 0 {
		m.MaxTokens = 1024
	}
	if m.Temperature < 0 {
		m.Temperature = 0
	}
	if m.Temperature > 1 {
		m.Temperature = 1
	}
	if m.TimeoutSeconds <= 0 {
		m.TimeoutSeconds = 20
	}
}
