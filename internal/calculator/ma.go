package calculator

import (
	"errors"
	"fmt"

	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

// CalculateSMA computes the simple moving average of the most recent `period` prices.
func CalculateSMA(prices []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(prices) < period {
		return decimal.Zero, fmt.Errorf("%w: window %d exceeds %d closes", model.ErrInsufficientData, period, len(prices))
	}
	return mean(prices[len(prices)-period:]), nil
}

// MovingAverage averages `window` closes of the series. AnchorLatest uses the most
// recent closes; AnchorOldest uses the first closes counted from the oldest date.
func MovingAverage(series *model.PriceSeries, window int, anchor model.Anchor) (decimal.Decimal, error) {
	closes := series.Closes()
	if anchor != model.AnchorOldest {
		return CalculateSMA(closes, window)
	}
	if window <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(closes) < window {
		return decimal.Zero, fmt.Errorf("%w: window %d exceeds %d closes", model.ErrInsufficientData, window, len(closes))
	}
	return mean(closes[:window]), nil
}

// RollingPoint is one value of a rolling mean, dated at the last close it covers.
type RollingPoint struct {
	Index int
	Mean  decimal.Decimal
}

// RollingMeans returns the trailing mean at every index where a full window is available.
func RollingMeans(series *model.PriceSeries, window int) ([]RollingPoint, error) {
	if window <= 0 {
		return nil, errors.New("period must be positive")
	}
	closes := series.Closes()
	if len(closes) < window {
		return nil, fmt.Errorf("%w: window %d exceeds %d closes", model.ErrInsufficientData, window, len(closes))
	}
	n := decimal.NewFromInt(int64(window))
	out := make([]RollingPoint, 0, len(closes)-window+1)
	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(c)
		if i >= window {
			sum = sum.Sub(closes[i-window])
		}
		if i >= window-1 {
			out = append(out, RollingPoint{Index: i, Mean: sum.Div(n)})
		}
	}
	return out, nil
}

func mean(prices []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, prices...).Div(decimal.NewFromInt(int64(len(prices))))
}
