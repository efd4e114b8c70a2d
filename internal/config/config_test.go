package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.Server.Port)
	}
	if cfg.Providers.NewsAPI.PageSize != 5 || cfg.Providers.GitHub.Limit != 10 {
		t.Fatalf("provider limits wrong: %+v", cfg.Providers)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.AuxModel != "gpt-3.5-turbo" {
		t.Fatalf("openai defaults wrong: %+v", cfg.OpenAI)
	}
	if cfg.Email.BatchSize != 10 {
		t.Fatalf("batch size wrong: %d", cfg.Email.BatchSize)
	}
	if got := cfg.Email.BatchDelay(); got != time.Second {
		t.Fatalf("batch delay wrong: %v", got)
	}
	if got := cfg.Redis.TTL(); got != time.Hour {
		t.Fatalf("cache ttl wrong: %v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(portEnv, "9999")
	t.Setenv(openAIAPIKeyEnv, "sk-env")
	t.Setenv(cronSecretEnv, "cron-env")
	t.Setenv(configPathEnv, "")

	cfg := Load()
	if cfg.Server.Port != "9999" {
		t.Fatalf("port override not applied: %q", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("openai key override not applied")
	}
	if cfg.Cron.Secret != "cron-env" {
		t.Fatalf("cron secret override not applied")
	}
}

func TestFileMergeAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
server:
  port: "7000"
redis:
  addr: "localhost:6379"
  ttlMinutes: 5
cron:
  enabled: true
  spec: "30 * * * *"
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(portEnv, "7001")

	cfg := Load()
	if cfg.Server.Port != "7001" {
		t.Fatalf("env must beat file, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("file redis addr not merged: %q", cfg.Redis.Addr)
	}
	if got := cfg.Redis.TTL(); got != 5*time.Minute {
		t.Fatalf("file ttl not merged: %v", got)
	}
	if !cfg.Cron.Enabled || cfg.Cron.Spec != "30 * * * *" {
		t.Fatalf("cron settings not merged: %+v", cfg.Cron)
	}
	// Untouched settings keep defaults.
	if cfg.Email.BatchSize != 10 {
		t.Fatalf("defaults lost in merge: %+v", cfg.Email)
	}
}

func TestMissingConfigFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("missing file should keep defaults, got %q", cfg.Server.Port)
	}
}
