// Package config loads runtime configuration for the matcher and backlog
// services from config.yaml with environment variable overrides.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the matcher core.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, DB password) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Backlog  BacklogConfig  `yaml:"backlog"`

	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"matcher"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"matcher_core"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds optional Redis configuration used for the embedding cache.
// Host empty means Redis is not used; with LLM.EmbeddingCacheEnabled set, an
// in-process LRU cache is used instead.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// TTLSeconds controls how long cached embeddings survive. 0 means no expiry.
	TTLSeconds int `yaml:"ttl_seconds" env:"REDIS_TTL_SECONDS" env-default:"86400"`
}

// LLMConfig holds configuration for the chat and embedding model gateway.
type LLMConfig struct {
	// ChatProvider selects the chat completion backend: "openai" or "anthropic".
	ChatProvider string `yaml:"chat_provider" env:"LLM_CHAT_PROVIDER" env-default:"openai"`
	ChatEndpoint string `yaml:"chat_endpoint" env:"LLM_CHAT_ENDPOINT" env-default:"https://api.openai.com/v1"`
	ChatModel    string `yaml:"chat_model" env:"LLM_CHAT_MODEL" env-default:"gpt-4o-mini"`
	ChatAPIKey   string `yaml:"-" env:"LLM_CHAT_API_KEY"`

	EmbeddingEndpoint string `yaml:"embedding_endpoint" env:"LLM_EMBEDDING_ENDPOINT" env-default:"https://api.openai.com/v1"`
	EmbeddingModel    string `yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	EmbeddingAPIKey   string `yaml:"-" env:"LLM_EMBEDDING_API_KEY"`

	// RequestTimeoutSeconds is loaded but not applied by the gateway; outbound
	// calls are bounded only by the deadline of the caller's context.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"LLM_REQUEST_TIMEOUT_SECONDS" env-default:"20"`

	// RequestsPerSecond throttles outbound calls to the chat/embedding endpoints.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"LLM_REQUESTS_PER_SECOND" env-default:"5"`
	// Burst is the token bucket burst size for the rate limiter above.
	Burst int `yaml:"burst" env:"LLM_BURST" env-default:"10"`

	// CircuitBreakerThreshold is the number of consecutive failures before the
	// gateway stops sending requests to the provider (see pkg/llm.CircuitBreaker).
	CircuitBreakerThreshold int `yaml:"circuit_breaker_threshold" env:"LLM_CIRCUIT_BREAKER_THRESHOLD" env-default:"5"`

	// EmbeddingCacheEnabled turns on the embedding cache: Redis when
	// Redis.Host is set, otherwise an in-process LRU cache.
	EmbeddingCacheEnabled bool `yaml:"embedding_cache_enabled" env:"LLM_EMBEDDING_CACHE_ENABLED" env-default:"false"`
}

// MatcherConfig holds the interactive matcher's thresholds.
type MatcherConfig struct {
	MinLabelsRequired       int `yaml:"min_labels_required" env:"MATCHER_MIN_LABELS_REQUIRED" env-default:"2"`
	MinTagsRequired         int `yaml:"min_tags_required" env:"MATCHER_MIN_TAGS_REQUIRED" env-default:"1"`
	MinIntegrationsRequired int `yaml:"min_integrations_required" env:"MATCHER_MIN_INTEGRATIONS_REQUIRED" env-default:"1"`

	DefaultTopK int `yaml:"default_top_k" env:"MATCHER_DEFAULT_TOP_K" env-default:"30"`
	DefaultTopN int `yaml:"default_top_n" env:"MATCHER_DEFAULT_TOP_N" env-default:"10"`
}

// BacklogConfig holds the backlog deduplicator's tuning parameters.
type BacklogConfig struct {
	// MatchThresholdPercent is the minimum similarity percentage required to
	// attach an incoming prompt to an existing card instead of creating one.
	MatchThresholdPercent int `yaml:"match_threshold_percent" env:"BACKLOG_MATCH_THRESHOLD_PERCENT" env-default:"50"`
	// SampleSeed, when non-zero, seeds the per-card prompt sampler so sampling
	// is deterministic; zero seeds it from the current time.
	SampleSeed int64 `yaml:"sample_seed" env:"BACKLOG_SAMPLE_SEED" env-default:"0"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Secrets (PGPASSWORD, LLM_CHAT_API_KEY, LLM_EMBEDDING_API_KEY, REDIS_PASSWORD)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)
	cfg.Redis.Host = ResolveHostForDocker(cfg.Redis.Host)

	return cfg, nil
}
