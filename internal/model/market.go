package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// PriceSeries holds the trailing daily closes for one symbol, ascending by date.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes returns the closing prices in series order.
func (s *PriceSeries) Closes() []decimal.Decimal {
	if s == nil {
		return nil
	}
	closes := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Dates returns the point dates in series order.
func (s *PriceSeries) Dates() []time.Time {
	if s == nil {
		return nil
	}
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

// First returns the oldest point. The series must not be empty.
func (s *PriceSeries) First() PricePoint { return s.Points[0] }

// Last returns the most recent point. The series must not be empty.
func (s *PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Validate checks the series is non-empty and strictly ascending by calendar date.
func (s *PriceSeries) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: empty price series for %q", ErrInvalidTicker, s.symbol())
	}
	for i := 1; i < len(s.Points); i++ {
		prev, cur := dayKey(s.Points[i-1].Date), dayKey(s.Points[i].Date)
		if cur <= prev {
			return fmt.Errorf("price series for %q not ascending at %s", s.symbol(), s.Points[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

func (s *PriceSeries) symbol() string {
	if s == nil {
		return ""
	}
	return s.Symbol
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
