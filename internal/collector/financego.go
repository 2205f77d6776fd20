package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TrendBot/internal/model"
	"TrendBot/internal/retry"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// FinanceGoFetcher implements Fetcher on top of the piquette/finance-go Yahoo client.
// The library has no context support, so cancellation is only checked between attempts.
type FinanceGoFetcher struct {
	lookbackDays int
	policy       retry.Policy
	now          func() time.Time
}

// NewFinanceGoFetcher creates a fetcher that retries transient failures with policy.
func NewFinanceGoFetcher(lookbackDays int, policy retry.Policy) *FinanceGoFetcher {
	return &FinanceGoFetcher{lookbackDays: lookbackDays, policy: policy, now: time.Now}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

func (f *FinanceGoFetcher) FetchDailySeries(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	end := f.now()
	start := end.AddDate(0, 0, -f.lookbackDays)

	var points []model.PricePoint
	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})
		points = points[:0]
		for iter.Next() {
			bar := iter.Bar()
			points = append(points, model.PricePoint{
				Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
				Close: bar.Close,
			})
		}
		if err := iter.Err(); err != nil {
			return classifyFinanceErr(symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildSeries(symbol, points, end, f.lookbackDays)
}

func (f *FinanceGoFetcher) FetchLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := quote.Get(symbol)
		if err != nil {
			return classifyFinanceErr(symbol, err)
		}
		if q == nil || q.RegularMarketPrice <= 0 {
			return fmt.Errorf("%w: no quote for %s", model.ErrInvalidTicker, symbol)
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice).Round(4)
		return nil
	})
	return price, err
}

// classifyFinanceErr maps finance-go errors, which carry no status code, onto the taxonomy.
func classifyFinanceErr(symbol string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no data") || strings.Contains(msg, "delisted") {
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidTicker, symbol, err)
	}
	return fmt.Errorf("%w: finance-go %s: %v", model.ErrUpstream, symbol, err)
}
