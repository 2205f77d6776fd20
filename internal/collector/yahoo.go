package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"TrendBot/internal/config"
	"TrendBot/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	client       *resty.Client
	lookbackDays int
	now          func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. Transport failures, 429 and 5xx
// responses are retried by the client.
func NewYahooFetcher(baseURL string, lookbackDays int, opts config.HTTP) *YahooFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4*opts.RetryWait).
		SetHeader("User-Agent", "Mozilla/5.0").
		AddRetryCondition(retryOnServerError)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	return &YahooFetcher{client: client, lookbackDays: lookbackDays, now: time.Now}
}

func retryOnServerError(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, rng string) (*yahooChart, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"interval": "1d", "range": rng}).
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: yahoo fetch %s: %w", model.ErrUpstream, symbol, ctxErr)
		}
		return nil, fmt.Errorf("%w: yahoo fetch %s: %v", model.ErrUpstream, symbol, err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(resp.Body(), &chart)

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s (%s)", model.ErrInvalidTicker, symbol, chartError(&chart))
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500:
		return nil, fmt.Errorf("%w: yahoo status %d for %s", model.ErrUpstream, resp.StatusCode(), symbol)
	case resp.StatusCode() != http.StatusOK:
		if decodeErr == nil && chart.Chart.Error != nil {
			return nil, fmt.Errorf("%w: %s (%s)", model.ErrInvalidTicker, symbol, chartError(&chart))
		}
		return nil, fmt.Errorf("%w: yahoo status %d, body: %s", model.ErrUpstream, resp.StatusCode(), resp.String())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", model.ErrUpstream, decodeErr)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", model.ErrInvalidTicker, symbol, chartError(&chart))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no result for %s", model.ErrInvalidTicker, symbol)
	}
	return &chart, nil
}

func chartError(c *yahooChart) string {
	if c.Chart.Error == nil {
		return "not found"
	}
	return c.Chart.Error.Description
}

func (f *YahooFetcher) FetchDailySeries(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	chart, err := f.fetchChart(ctx, symbol, lookbackRange(f.lookbackDays))
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays, halts)
		}
		points = append(points, model.PricePoint{
			Date:  time.Unix(ts, 0).In(loc),
			Close: decimal.NewFromFloat(*closes[i]).Round(4),
		})
	}
	return buildSeries(symbol, points, f.now(), f.lookbackDays)
}

func (f *YahooFetcher) FetchLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	chart, err := f.fetchChart(ctx, symbol, "1d")
	if err != nil {
		return decimal.Zero, err
	}
	result := chart.Chart.Result[0]
	if p := result.Meta.RegularMarketPrice; p > 0 {
		return decimal.NewFromFloat(p).Round(4), nil
	}
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				return decimal.NewFromFloat(*closes[i]).Round(4), nil
			}
		}
	}
	return decimal.Zero, fmt.Errorf("%w: yahoo returned no price for %s", model.ErrInvalidTicker, symbol)
}

// lookbackRange maps a calendar-day lookback to the smallest Yahoo range covering it.
func lookbackRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}
