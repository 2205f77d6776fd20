package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"TrendBot/internal/model"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// HTTP configures outbound HTTP clients.
type HTTP struct {
	Timeout   time.Duration `yaml:"timeout" split_words:"true"`
	Retries   int           `yaml:"retries" split_words:"true"`
	RetryWait time.Duration `yaml:"retry_wait" split_words:"true"`
	Proxy     string        `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Config holds all application configuration.
type Config struct {
	Slack struct {
		BotToken      string `yaml:"bot_token" split_words:"true"`
		WebhookURL    string `yaml:"webhook_url" split_words:"true"`
		APIURL        string `yaml:"api_url" split_words:"true"`
		SigningSecret string `yaml:"signing_secret" split_words:"true"`
	} `yaml:"slack"`
	MarketData struct {
		Provider     string `yaml:"provider" split_words:"true"`
		BaseURL      string `yaml:"base_url" split_words:"true"`
		LookbackDays int    `yaml:"lookback_days" split_words:"true"`
	} `yaml:"market_data" split_words:"true"`
	Analysis struct {
		Windows model.Windows `yaml:"windows"`
		Anchor  string        `yaml:"anchor" split_words:"true"`
	} `yaml:"analysis"`
	HTTP   HTTP `yaml:"http"`
	Server struct {
		Addr           string        `yaml:"addr" split_words:"true"`
		Path           string        `yaml:"path" split_words:"true"`
		RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
	} `yaml:"server"`
	Schedule struct {
		Cron    string `yaml:"cron" split_words:"true"`
		Ticker  string `yaml:"ticker" split_words:"true"`
		Channel string `yaml:"channel" split_words:"true"`
		User    string `yaml:"user" split_words:"true"`

		// RunOnStart runs the scheduled report once when serve starts.
		RunOnStart bool `yaml:"run_on_start" split_words:"true"`
	} `yaml:"schedule"`
	Chart struct {
		ScratchDir string `yaml:"scratch_dir" split_words:"true"`
		Width      int    `yaml:"width"`
		Height     int    `yaml:"height"`
	} `yaml:"chart"`
	Log struct {
		Level  string `yaml:"level" split_words:"true"`
		Format string `yaml:"format" split_words:"true"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled" split_words:"true"`
	} `yaml:"tracing"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRENDBOT"

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Preset so that an explicit retries: 0 disables retries.
	cfg.HTTP.Retries = 1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	// Only variables that are set override the file, e.g. TRENDBOT_SLACK_BOT_TOKEN.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = "yahoo"
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.LookbackDays == 0 {
		c.MarketData.LookbackDays = 365
	}
	if c.Analysis.Windows == (model.Windows{}) {
		c.Analysis.Windows = model.DefaultWindows
	}
	if c.Analysis.Anchor == "" {
		c.Analysis.Anchor = string(model.AnchorLatest)
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.HTTP.RetryWait == 0 {
		c.HTTP.RetryWait = time.Second
	}
	if c.Slack.APIURL == "" {
		c.Slack.APIURL = "https://slack.com/api/"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Path == "" {
		c.Server.Path = "/slack/trend"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}
	if c.Chart.ScratchDir == "" {
		c.Chart.ScratchDir = os.TempDir()
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 800
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Anchor returns the parsed moving-average anchor.
func (c *Config) Anchor() model.Anchor {
	a, err := model.ParseAnchor(c.Analysis.Anchor)
	if err != nil {
		return model.AnchorLatest
	}
	return a
}

// Validate checks that the analysis and client settings are usable.
func (c *Config) Validate() error {
	if err := c.Analysis.Windows.Validate(); err != nil {
		return fmt.Errorf("analysis.windows: %w", err)
	}
	if _, err := model.ParseAnchor(c.Analysis.Anchor); err != nil {
		return fmt.Errorf("analysis.anchor: %w", err)
	}
	switch c.MarketData.Provider {
	case "yahoo", "financego", "mock":
	default:
		return fmt.Errorf("market_data.provider must be yahoo, financego or mock, got %q", c.MarketData.Provider)
	}
	if c.MarketData.LookbackDays <= 0 {
		return errors.New("market_data.lookback_days must be positive")
	}
	// Long window is in trading days, lookback in calendar days.
	if c.Analysis.Windows.Long > c.MarketData.LookbackDays {
		return fmt.Errorf("analysis.windows.long (%d) exceeds market_data.lookback_days (%d)", c.Analysis.Windows.Long, c.MarketData.LookbackDays)
	}
	if c.HTTP.Retries < 0 {
		return errors.New("http.retries must not be negative")
	}
	if c.Schedule.Cron != "" && (c.Schedule.Ticker == "" || c.Schedule.Channel == "") {
		return errors.New("schedule.ticker and schedule.channel are required when schedule.cron is set")
	}
	return nil
}

// ValidateDelivery checks the Slack credentials needed to post reports.
func (c *Config) ValidateDelivery() error {
	if c.Slack.WebhookURL == "" {
		return errors.New("slack.webhook_url is required")
	}
	if c.Slack.BotToken == "" {
		return errors.New("slack.bot_token is required")
	}
	return nil
}
