package collector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"TrendBot/internal/calculator"
	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  decimal.Decimal
	Series *model.PriceSeries
	Err    error // returned by every call when set
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailySeries(_ context.Context, symbol string) (*model.PriceSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		s := *m.Series
		s.Symbol = symbol
		return &s, nil
	}
	return generateMockSeries(symbol, m.price(), 250), nil
}

func (m *MockFetcher) FetchLatestPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	return m.price(), nil
}

func (m *MockFetcher) price() decimal.Decimal {
	if m.Price.IsZero() {
		return decimal.NewFromInt(100)
	}
	return m.Price
}

func generateMockSeries(symbol string, basePrice decimal.Decimal, count int) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	today := time.Now().Truncate(24 * time.Hour)
	step := basePrice.Div(decimal.NewFromInt(1000))
	for i := 0; i < count; i++ {
		s.Points = append(s.Points, model.PricePoint{
			Date:  today.AddDate(0, 0, -(count - i)),
			Close: basePrice.Add(step.Mul(decimal.NewFromInt(int64(i - count/2)))),
		})
	}
	return s
}

// buildSeries de-duplicates dates (last wins), sorts ascending and keeps the trailing
// lookbackDays calendar days before now.
func buildSeries(symbol string, points []model.PricePoint, now time.Time, lookbackDays int) (*model.PriceSeries, error) {
	cutoff := now.AddDate(0, 0, -lookbackDays)
	byDay := make(map[string]model.PricePoint, len(points))
	for _, p := range points {
		if p.Date.Before(cutoff) {
			continue
		}
		byDay[p.Date.Format("2006-01-02")] = p
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("%w: no closes for %s in the last %d days", model.ErrInvalidTicker, symbol, lookbackDays)
	}
	out := make([]model.PricePoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return &model.PriceSeries{Symbol: symbol, Points: out, FetchedAt: now}, nil
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// NormalizeTicker trims, strips a leading '$' and upper-cases a user supplied symbol.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if t == "" || !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidTicker, raw)
	}
	return t, nil
}

// Collector orchestrates data fetching and trend computation.
type Collector struct {
	Fetcher Fetcher
	Windows model.Windows
	Anchor  model.Anchor
	log     *zap.SugaredLogger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, windows model.Windows, anchor model.Anchor, log *zap.SugaredLogger) *Collector {
	return &Collector{Fetcher: fetcher, Windows: windows, Anchor: anchor, log: log}
}

// Analyze fetches a fresh price series and the latest price, then computes the trend report.
func (c *Collector) Analyze(ctx context.Context, ticker string) (*model.TrendReport, error) {
	symbol, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	series, err := c.Fetcher.FetchDailySeries(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch daily series: %w", err)
	}
	price, err := c.Fetcher.FetchLatestPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch latest price: %w", err)
	}
	c.log.Debugw("market data fetched", "symbol", symbol, "source", c.Fetcher.Name(),
		"points", series.Len(), "price", price.String())

	report, err := calculator.Analyze(series, price, c.Windows, c.Anchor)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	return report, nil
}
