package collector

import (
	"context"

	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailySeries returns the trailing year of daily closes, ascending by date.
	FetchDailySeries(ctx context.Context, symbol string) (*model.PriceSeries, error)
	// FetchLatestPrice returns the latest traded price.
	FetchLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	Name() string
}
