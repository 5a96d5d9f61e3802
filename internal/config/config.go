package config

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	DatabaseURL string // empty disables persistence

	// LLM Configuration
	Provider            string
	Model               string
	AnthropicAPIKey     string
	OpenAIAPIKey        string
	OpenRouterAPIKey    string
	BaseURL             string // overrides the provider's default endpoint
	MaxTokens           int
	MaxRounds           int
	RequestTimeout      time.Duration
	RequestsPerSecond   float64
	ModelCatalogTTL     time.Duration
	SessionRetention    time.Duration
	MaxProgressionWeeks int

	// Observability
	SentryDSN   string
	LogDir      string // empty disables the log file
	LogMaxFiles int

	// Debug flags
	Debug bool // Enables debug logging and SSE event IDs
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		// LLM Configuration
		Provider:            getEnv("LLM_PROVIDER", ProviderAnthropic),
		Model:               getEnv("LLM_MODEL", "claude-haiku-4-5-20251001"),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenRouterAPIKey:    getEnv("OPENROUTER_API_KEY", ""),
		BaseURL:             getEnv("LLM_BASE_URL", ""),
		MaxTokens:           getEnvInt("LLM_MAX_TOKENS", DefaultMaxTokens),
		MaxRounds:           getEnvInt("AGENT_MAX_ROUNDS", DefaultMaxRounds),
		RequestTimeout:      getEnvDuration("LLM_TIMEOUT", DefaultRequestTimeout),
		RequestsPerSecond:   getEnvFloat("LLM_REQUESTS_PER_SECOND", 0),
		ModelCatalogTTL:     getEnvDuration("MODEL_CATALOG_TTL", DefaultModelCatalogTTL),
		SessionRetention:    getEnvDuration("SESSION_RETENTION", DefaultSessionRetention),
		MaxProgressionWeeks: getEnvInt("MAX_PROGRESSION_WEEKS", DefaultMaxProgressionWeeks),
		// Observability
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks the loaded values before any component is wired.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Provider,
			validation.Required,
			validation.In(ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderOllama),
		),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.AnthropicAPIKey,
			validation.When(c.Provider == ProviderAnthropic, validation.Required.Error("is required for the anthropic provider")),
		),
		validation.Field(&c.OpenAIAPIKey,
			validation.When(c.Provider == ProviderOpenAI, validation.Required.Error("is required for the openai provider")),
		),
		validation.Field(&c.OpenRouterAPIKey,
			validation.When(c.Provider == ProviderOpenRouter, validation.Required.Error("is required for the openrouter provider")),
		),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxRounds, validation.Required, validation.Min(1), validation.Max(MaxAgentRounds)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.MaxProgressionWeeks, validation.Required, validation.Min(2)),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset or not an integer.
func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "2m") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
