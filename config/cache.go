package config

import "time"

// CacheConfig contains the Redis-based stats cache configuration.
// Authorization decisions are never cached; this cache only holds the
// admin stats aggregate, which is expensive to recompute from the
// directory on every request.
type CacheConfig struct {
	// RedisAddr enables the cache when non-empty.
	RedisAddr     string `env:"CACHE_REDIS_ADDR"     envDefault:""`
	RedisPassword string `env:"CACHE_REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"CACHE_REDIS_DB"       envDefault:"0"`

	// StatsTTL is the TTL for the cached admin stats aggregate.
	StatsTTL time.Duration `env:"CACHE_STATS_TTL" envDefault:"60s"`
}

// Enabled reports whether the stats cache is configured.
func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.StatsTTL <= 0 {
		c.StatsTTL = 60 * time.Second
	}
}
