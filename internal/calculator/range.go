package calculator

import (
	"errors"

	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

// SeriesRange scans every close in the series and returns the high and low.
func SeriesRange(series *model.PriceSeries) (high, low decimal.Decimal, err error) {
	if series.Len() == 0 {
		return decimal.Zero, decimal.Zero, errors.New("no closes provided")
	}
	closes := series.Closes()
	return decimal.Max(closes[0], closes[1:]...), decimal.Min(closes[0], closes[1:]...), nil
}

// RangePosition returns where the current price sits within [low, high], clamped to 0..1.
func RangePosition(current, high, low decimal.Decimal) (decimal.Decimal, error) {
	if high.Equal(low) {
		return decimal.NewFromFloat(0.5), nil
	}
	if high.LessThan(low) {
		return decimal.Zero, errors.New("high must be >= low")
	}
	pos := current.Sub(low).Div(high.Sub(low))
	if pos.IsNegative() {
		pos = decimal.Zero
	}
	if pos.GreaterThan(decimal.NewFromInt(1)) {
		pos = decimal.NewFromInt(1)
	}
	return pos, nil
}
