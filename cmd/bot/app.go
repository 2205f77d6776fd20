package main

import (
	"fmt"

	"TrendBot/internal/chart"
	"TrendBot/internal/collector"
	"TrendBot/internal/config"
	"TrendBot/internal/logger"
	"TrendBot/internal/notifier"
	"TrendBot/internal/reporter"
	"TrendBot/internal/retry"

	"go.uber.org/zap"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	collector *collector.Collector
	notifier  *notifier.SlackNotifier
	reporter  *reporter.Reporter
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	fetcher := newFetcher(cfg)
	log.Infow("data source", "provider", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Analysis.Windows, cfg.Anchor(), log)
	sn := notifier.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.BotToken, cfg.Slack.APIURL, cfg.HTTP, log)
	rep := reporter.New(col, sn, chartOptions(cfg), log)

	return &app{cfg: cfg, log: log, collector: col, notifier: sn, reporter: rep}, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.MarketData.Provider {
	case "financego":
		return collector.NewFinanceGoFetcher(cfg.MarketData.LookbackDays, retry.Policy{
			Retries:  cfg.HTTP.Retries,
			BaseWait: cfg.HTTP.RetryWait,
			MaxWait:  4 * cfg.HTTP.RetryWait,
		})
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.MarketData.BaseURL, cfg.MarketData.LookbackDays, cfg.HTTP)
	}
}

func chartOptions(cfg *config.Config) chart.Options {
	return chart.Options{Dir: cfg.Chart.ScratchDir, Width: cfg.Chart.Width, Height: cfg.Chart.Height}
}
