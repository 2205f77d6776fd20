package reporter

import (
	"context"
	"fmt"
	"os"

	"TrendBot/internal/chart"
	"TrendBot/internal/model"
	"TrendBot/internal/notifier"
	"TrendBot/internal/trace"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Analyzer produces a trend report for a ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*model.TrendReport, error)
}

// Delivery posts text and shares files in a chat channel.
type Delivery interface {
	Post(ctx context.Context, text string) error
	Upload(ctx context.Context, channel, title, path string) error
}

// Reporter runs one trigger end to end: analyze, compose, render, deliver.
type Reporter struct {
	analyzer Analyzer
	delivery Delivery
	chart    chart.Options
	log      *zap.SugaredLogger
}

// New creates a Reporter.
func New(analyzer Analyzer, delivery Delivery, chartOpts chart.Options, log *zap.SugaredLogger) *Reporter {
	return &Reporter{analyzer: analyzer, delivery: delivery, chart: chartOpts, log: log}
}

// Result describes a delivered report.
type Result struct {
	RequestID string
	Report    *model.TrendReport
	Message   string
}

// Run delivers the message and chart for req. Analysis and rendering finish before
// anything is sent, so a failure there delivers nothing.
func (r *Reporter) Run(ctx context.Context, req model.Request) (*Result, error) {
	id := uuid.NewString()
	log := r.log.With("request_id", id, "ticker", req.Ticker, "user", req.User, "channel", req.Channel)
	ctx, span := trace.StartSpan(ctx, "report.run",
		attribute.String("request_id", id), attribute.String("ticker", req.Ticker))
	var err error
	defer func() { trace.End(span, err) }()

	log.Info("trend report requested")

	report, message, err := r.Prepare(ctx, req)
	if err != nil {
		log.Warnw("trend report failed", "error", err)
		return nil, err
	}

	path, err := r.render(ctx, report)
	if err != nil {
		log.Errorw("chart render failed", "error", err)
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warnw("remove chart file", "path", path, "error", rmErr)
		}
	}()

	if err = r.deliver(ctx, req.Channel, report.Symbol, message, path); err != nil {
		log.Errorw("delivery failed", "error", err)
		return nil, err
	}

	log.Infow("trend report delivered", "symbol", report.Symbol)
	return &Result{RequestID: id, Report: report, Message: message}, nil
}

// Prepare analyzes the ticker and composes the message without delivering anything.
func (r *Reporter) Prepare(ctx context.Context, req model.Request) (*model.TrendReport, string, error) {
	ctx, span := trace.StartSpan(ctx, "report.analyze")
	report, err := r.analyzer.Analyze(ctx, req.Ticker)
	trace.End(span, err)
	if err != nil {
		return nil, "", err
	}
	return report, notifier.FormatTrendReport(report, req.User), nil
}

func (r *Reporter) render(ctx context.Context, report *model.TrendReport) (string, error) {
	_, span := trace.StartSpan(ctx, "report.render")
	path, err := chart.RenderFile(report, r.chart)
	trace.End(span, err)
	return path, err
}

func (r *Reporter) deliver(ctx context.Context, channel, symbol, message, path string) error {
	ctx, span := trace.StartSpan(ctx, "report.deliver", attribute.String("channel", channel))
	var err error
	defer func() { trace.End(span, err) }()

	if err = r.delivery.Post(ctx, message); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	if err = r.delivery.Upload(ctx, channel, notifier.ChartTitle(symbol), path); err != nil {
		return fmt.Errorf("upload chart: %w", err)
	}
	return nil
}

// Fail posts the single user-visible failure message for err through the webhook.
func (r *Reporter) Fail(ctx context.Context, req model.Request, err error) {
	if postErr := r.delivery.Post(ctx, notifier.FormatFailure(req.User, req.Ticker, err)); postErr != nil {
		r.log.Errorw("post failure message", "ticker", req.Ticker, "error", postErr)
	}
}
