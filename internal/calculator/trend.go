package calculator

import (
	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

// ClassifyTrend compares the current price against a moving average.
// Prices are decimals, so FLAT means exact equality rather than a float coincidence.
func ClassifyTrend(price, average decimal.Decimal) model.TrendResult {
	switch price.Cmp(average) {
	case 1:
		return model.Uptrend
	case -1:
		return model.Downtrend
	default:
		return model.Flat
	}
}

// ClassifyCrossover compares a short-window average against a longer-window one.
func ClassifyCrossover(shortAvg, longAvg decimal.Decimal) model.CrossoverResult {
	switch shortAvg.Cmp(longAvg) {
	case 1:
		return model.Bullish
	case -1:
		return model.Bearish
	default:
		return model.Neutral
	}
}

// Analyze computes the averages, trends and crossovers for a series and current price.
// Crossovers are short/medium and medium/long.
func Analyze(series *model.PriceSeries, price decimal.Decimal, windows model.Windows, anchor model.Anchor) (*model.TrendReport, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	avgs := make(map[int]decimal.Decimal, 3)
	report := &model.TrendReport{
		Symbol:       series.Symbol,
		CurrentPrice: price,
		Windows:      windows,
		Anchor:       anchor,
		Series:       series,
	}
	for _, w := range windows.All() {
		avg, err := MovingAverage(series, w, anchor)
		if err != nil {
			return nil, err
		}
		avgs[w] = avg
		report.Trends = append(report.Trends, model.Trend{Window: w, Average: avg, Result: ClassifyTrend(price, avg)})
	}

	for _, pair := range [][2]int{{windows.Short, windows.Medium}, {windows.Medium, windows.Long}} {
		s, l := avgs[pair[0]], avgs[pair[1]]
		report.Crossovers = append(report.Crossovers, model.Crossover{
			ShortWindow: pair[0],
			LongWindow:  pair[1],
			ShortAvg:    s,
			LongAvg:     l,
			Result:      ClassifyCrossover(s, l),
		})
	}

	high, low, err := SeriesRange(series)
	if err != nil {
		return nil, err
	}
	report.High, report.Low = high, low
	return report, nil
}
