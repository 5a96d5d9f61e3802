package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("AGENT_MAX_ROUNDS", "")
	t.Setenv("DEBUG", "")

	cfg := Load()
	if cfg.Environment != "dev" {
		t.Errorf("Environment = %s, want dev", cfg.Environment)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %s, want dev_", cfg.TablePrefix)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("Provider = %s", cfg.Provider)
	}
	if cfg.MaxRounds != DefaultMaxRounds {
		t.Errorf("MaxRounds = %d, want %d", cfg.MaxRounds, DefaultMaxRounds)
	}
	if !cfg.Debug {
		t.Error("Debug should default to true outside prod")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("AGENT_MAX_ROUNDS", "4")
	t.Setenv("LLM_TIMEOUT", "90")
	t.Setenv("MODEL_CATALOG_TTL", "15m")
	t.Setenv("LLM_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("DEBUG", "")

	cfg := Load()
	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %s, want prod_", cfg.TablePrefix)
	}
	if cfg.Debug {
		t.Error("Debug should default to false in prod")
	}
	if cfg.MaxRounds != 4 {
		t.Errorf("MaxRounds = %d, want 4", cfg.MaxRounds)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v, want 90s", cfg.RequestTimeout)
	}
	if cfg.ModelCatalogTTL != 15*time.Minute {
		t.Errorf("ModelCatalogTTL = %v, want 15m", cfg.ModelCatalogTTL)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RequestsPerSecond)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("STRIDE_TEST_INT", "abc")
	if got := getEnvInt("STRIDE_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                "8080",
			Provider:            ProviderAnthropic,
			Model:               "claude-haiku-4-5",
			AnthropicAPIKey:     "sk-ant",
			MaxTokens:           1024,
			MaxRounds:           10,
			MaxProgressionWeeks: 104,
			LogMaxFiles:         5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "gemini" }, wantErr: true},
		{name: "missing anthropic key", mutate: func(c *Config) { c.AnthropicAPIKey = "" }, wantErr: true},
		{name: "openai needs its key", mutate: func(c *Config) { c.Provider = ProviderOpenAI }, wantErr: true},
		{name: "ollama needs no key", mutate: func(c *Config) { c.Provider = ProviderOllama; c.AnthropicAPIKey = "" }},
		{name: "zero rounds", mutate: func(c *Config) { c.MaxRounds = 0 }, wantErr: true},
		{name: "too many rounds", mutate: func(c *Config) { c.MaxRounds = MaxAgentRounds + 1 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.RequestsPerSecond = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := &Config{AnthropicAPIKey: "a", OpenAIAPIKey: "o", OpenRouterAPIKey: "r"}
	for provider, want := range map[string]string{
		ProviderAnthropic:  "a",
		ProviderOpenAI:     "o",
		ProviderOpenRouter: "r",
		ProviderOllama:     "",
	} {
		cfg.Provider = provider
		if got := cfg.APIKey(); got != want {
			t.Errorf("APIKey() for %s = %q, want %q", provider, got, want)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2026-01-01T00-00-00.log",
		"server-2026-01-02T00-00-00.log",
		"server-2026-01-03T00-00-00.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, "server", 2); err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest log should have been removed")
	}
	for _, n := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should remain: %v", n, err)
		}
	}
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Environment: "test", LogDir: dir, LogMaxFiles: 3, Debug: true}

	logger, closeFn, err := NewLogger(cfg, "cli")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hello", "k", "v")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "cli-*.log"))
	if len(files) != 1 {
		t.Fatalf("expected one log file, got %v", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected debug line in log file")
	}
}
