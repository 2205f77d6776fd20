package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TrendBot/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Windows != model.DefaultWindows {
		t.Errorf("expected default windows, got %+v", cfg.Analysis.Windows)
	}
	if cfg.Anchor() != model.AnchorLatest {
		t.Errorf("expected latest anchor, got %s", cfg.Anchor())
	}
	if cfg.MarketData.Provider != "yahoo" || cfg.MarketData.LookbackDays != 365 {
		t.Errorf("unexpected market data defaults: %+v", cfg.MarketData)
	}
	if cfg.HTTP.Retries != 1 || cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
slack:
  bot_token: file-token
  webhook_url: https://hooks.example/file
analysis:
  windows: {short: 5, medium: 20, long: 50}
  anchor: oldest
http:
  timeout: 5s
  retries: 3
`)
	t.Setenv("TRENDBOT_SLACK_BOT_TOKEN", "env-token")
	t.Setenv("TRENDBOT_MARKET_DATA_PROVIDER", "mock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Slack.BotToken != "env-token" {
		t.Errorf("expected env override for bot token, got %q", cfg.Slack.BotToken)
	}
	if cfg.Slack.WebhookURL != "https://hooks.example/file" {
		t.Errorf("expected webhook from file, got %q", cfg.Slack.WebhookURL)
	}
	if cfg.MarketData.Provider != "mock" {
		t.Errorf("expected provider override, got %q", cfg.MarketData.Provider)
	}
	if cfg.Analysis.Windows != (model.Windows{Short: 5, Medium: 20, Long: 50}) {
		t.Errorf("unexpected windows: %+v", cfg.Analysis.Windows)
	}
	if cfg.Anchor() != model.AnchorOldest {
		t.Errorf("expected oldest anchor, got %s", cfg.Anchor())
	}
	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.Retries != 3 {
		t.Errorf("unexpected http config: %+v", cfg.HTTP)
	}
	if err := cfg.ValidateDelivery(); err != nil {
		t.Errorf("ValidateDelivery: %v", err)
	}
}

func TestLoad_ZeroRetries(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  retries: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Retries != 0 {
		t.Errorf("expected retries disabled, got %d", cfg.HTTP.Retries)
	}

	t.Setenv("TRENDBOT_HTTP_RETRIES", "0")
	cfg, err = Load(writeConfig(t, "http:\n  retries: 2\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Retries != 0 {
		t.Errorf("expected env to disable retries, got %d", cfg.HTTP.Retries)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "slack: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"windows not increasing", func(c *Config) { c.Analysis.Windows = model.Windows{Short: 30, Medium: 12, Long: 60} }, "analysis.windows"},
		{"negative window", func(c *Config) { c.Analysis.Windows.Short = -1 }, "analysis.windows"},
		{"bad anchor", func(c *Config) { c.Analysis.Anchor = "middle" }, "analysis.anchor"},
		{"bad provider", func(c *Config) { c.MarketData.Provider = "bloomberg" }, "market_data.provider"},
		{"window longer than lookback", func(c *Config) { c.MarketData.LookbackDays = 30 }, "lookback_days"},
		{"schedule without ticker", func(c *Config) { c.Schedule.Cron = "0 0 22 * * 1-5" }, "schedule.ticker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateDelivery_MissingWebhook(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Slack.BotToken = "x"
	if err := cfg.ValidateDelivery(); err == nil {
		t.Fatal("expected missing webhook error")
	}
}
