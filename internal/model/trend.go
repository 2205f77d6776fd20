package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TrendResult relates the current price to one moving average.
type TrendResult string

const (
	Uptrend   TrendResult = "UPTREND"
	Downtrend TrendResult = "DOWNTREND"
	Flat      TrendResult = "FLAT"
)

// CrossoverResult relates a short-window average to a longer one.
type CrossoverResult string

const (
	Bullish CrossoverResult = "BULLISH"
	Bearish CrossoverResult = "BEARISH"
	Neutral CrossoverResult = "NEUTRAL" // averages are equal
)

// Anchor selects which end of the series a moving average is taken from.
type Anchor string

const (
	// AnchorLatest averages the most recent N closes.
	AnchorLatest Anchor = "latest"
	// AnchorOldest averages the first N closes counted from the oldest date.
	AnchorOldest Anchor = "oldest"
)

// ParseAnchor accepts "latest" or "oldest" in any case; empty means latest.
func ParseAnchor(s string) (Anchor, error) {
	switch Anchor(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnchorLatest:
		return AnchorLatest, nil
	case AnchorOldest:
		return AnchorOldest, nil
	default:
		return "", fmt.Errorf("unknown moving average anchor %q", s)
	}
}

// Windows are the short, medium and long moving-average windows in trading days.
type Windows struct {
	Short  int `yaml:"short"`
	Medium int `yaml:"medium"`
	Long   int `yaml:"long"`
}

// DefaultWindows are the 12/30/60 day windows.
var DefaultWindows = Windows{Short: 12, Medium: 30, Long: 60}

// All returns the windows from shortest to longest.
func (w Windows) All() []int { return []int{w.Short, w.Medium, w.Long} }

// Validate checks the windows are positive and strictly increasing.
func (w Windows) Validate() error {
	if w.Short <= 0 || w.Medium <= 0 || w.Long <= 0 {
		return fmt.Errorf("moving average windows must be positive, got %d/%d/%d", w.Short, w.Medium, w.Long)
	}
	if !(w.Short < w.Medium && w.Medium < w.Long) {
		return fmt.Errorf("moving average windows must increase, got %d/%d/%d", w.Short, w.Medium, w.Long)
	}
	return nil
}

// Trend is the trend of the current price against one window's average.
type Trend struct {
	Window  int
	Average decimal.Decimal
	Result  TrendResult
}

// Crossover compares two windows' averages.
type Crossover struct {
	ShortWindow int
	LongWindow  int
	ShortAvg    decimal.Decimal
	LongAvg     decimal.Decimal
	Result      CrossoverResult
}

// TrendReport is the analyzer output for one symbol.
type TrendReport struct {
	Symbol       string
	CurrentPrice decimal.Decimal
	Windows      Windows
	Anchor       Anchor
	Trends       []Trend
	Crossovers   []Crossover
	High         decimal.Decimal
	Low          decimal.Decimal
	Series       *PriceSeries
}

// Request is one inbound trigger.
type Request struct {
	Ticker  string
	User    string
	Channel string
}
