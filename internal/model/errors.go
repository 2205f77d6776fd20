package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidTicker means the symbol is unknown or delisted at the provider.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrInsufficientData means a window is longer than the available history.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUpstream means the market-data or messaging provider is unavailable.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrMalformedRequest means the trigger payload is missing expected fields.
	ErrMalformedRequest = errors.New("malformed request")
)

// UserMessage turns a pipeline error into the single line shown to the requester.
func UserMessage(ticker string, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedRequest):
		return "Usage: /trend TICKER (e.g. /trend AAPL)"
	case errors.Is(err, ErrInvalidTicker):
		return fmt.Sprintf("Could not find ticker %q. Check the symbol and try again.", ticker)
	case errors.Is(err, ErrInsufficientData):
		return fmt.Sprintf("Not enough price history for %s to compute the moving averages.", ticker)
	case errors.Is(err, ErrUpstream), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Market data or Slack is unavailable right now, please retry %s later.", ticker)
	default:
		return fmt.Sprintf("Failed to build the trend report for %s.", ticker)
	}
}
