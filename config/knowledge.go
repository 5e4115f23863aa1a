package config

import "strings"

// KnowledgeConfig contains knowledge-base object store configuration.
type KnowledgeConfig struct {
	// BucketURL is a gocloud.dev blob URL, e.g. "s3://kb-docs?region=us-east-1"
	// or "file:///var/lib/kbchat/docs" for local development.
	BucketURL string `env:"KB_BUCKET_URL" envDefault:""`

	// Prefix is the logical key prefix documents live under.
	Prefix string `env:"KB_PREFIX" envDefault:"knowledge-base/"`

	// MaxDocs caps how many documents are fed into the prompt.
	// Zero means no cap, matching the original behavior.
	MaxDocs int `env:"KB_MAX_DOCS" envDefault:"0"`

	// FetchConcurrency bounds the parallel document fetch fan-out.
	FetchConcurrency int `env:"KB_FETCH_CONCURRENCY" envDefault:"4"`

	// TimeoutSeconds bounds the whole retrieval (list + fetches).
	TimeoutSeconds int `env:"KB_TIMEOUT_SECONDS" envDefault:"10"`
}

// Sanitize applies guardrails to knowledge configuration values.
func (k *KnowledgeConfig) Sanitize() {
	if k.Prefix != "" && !strings.HasSuffix(k.Prefix, "/") {
		k.Prefix += "/"
	}
	if k.MaxDocs < 0 {
		k.MaxDocs = 0
	}
	if k.FetchConcurrency <= 0 {
		k.FetchConcurrency = 4
	}
	if k.TimeoutSeconds <= 0 {
		k.TimeoutSeconds = 10
	}
}
