// Package config_test tests configuration loading and validation.
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/telegembot/telegem/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "token-from-env")
	t.Setenv("BOT_GEMINI_API_KEY", "key-from-env")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loading with defaults and env credentials failed: %v", err)
	}

	if cfg.Telegram.Token != "token-from-env" {
		t.Errorf("telegram token = %q", cfg.Telegram.Token)
	}
	if cfg.Gemini.APIKey != "key-from-env" {
		t.Errorf("gemini api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Logger.Level != "info" || !cfg.Logger.JSON {
		t.Errorf("unexpected logger defaults: %+v", cfg.Logger)
	}
	if cfg.Search.MaxResults != 5 || cfg.Search.FetchCount != 3 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.FetchTimeout != 5*time.Second {
		t.Errorf("fetch timeout = %v, want 5s", cfg.Search.FetchTimeout)
	}
	if cfg.Analyzer.DocumentTextLimit != 2000 || cfg.Analyzer.DescriptionLimit != 100 {
		t.Errorf("unexpected analyzer defaults: %+v", cfg.Analyzer)
	}

	task, ok := cfg.Scheduler.Tasks["sql_maintenance"]
	if !ok || !task.Enabled || task.Schedule == "" {
		t.Errorf("sql_maintenance task not configured by default: %+v", cfg.Scheduler.Tasks)
	}

	if cfg.Messages.NothingFound != "I couldn't find any relevant information." {
		t.Errorf("nothing-found message = %q", cfg.Messages.NothingFound)
	}
	if cfg.Messages.ErrorChat == "" || cfg.Messages.Welcome == "" {
		t.Error("default message strings must not be empty")
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "")
	t.Setenv("BOT_GEMINI_API_KEY", "")

	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected validation error without credentials")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "token")
	t.Setenv("BOT_GEMINI_API_KEY", "key")

	yaml := `
logger:
  level: debug
  json: false
search:
  max_results: 10
  fetch_count: 2
messages:
  welcome: "Custom welcome"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config file: %v", err)
	}

	if cfg.Logger.Level != "debug" || cfg.Logger.JSON {
		t.Errorf("file values not applied: %+v", cfg.Logger)
	}
	if cfg.Search.MaxResults != 10 || cfg.Search.FetchCount != 2 {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.Messages.Welcome != "Custom welcome" {
		t.Errorf("welcome = %q", cfg.Messages.Welcome)
	}
	// Untouched keys keep their defaults.
	if cfg.Search.PageContentLimit != 1000 {
		t.Errorf("page content limit = %d, want default 1000", cfg.Search.PageContentLimit)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "token")
	t.Setenv("BOT_GEMINI_API_KEY", "key")

	yaml := `
logger:
  level: loud
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Error("expected validation error for invalid log level")
	}
}
