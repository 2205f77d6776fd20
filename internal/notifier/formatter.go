package notifier

import (
	"fmt"
	"strings"

	"TrendBot/internal/calculator"
	"TrendBot/internal/model"
)

// FormatTrendReport formats a trend report into a Slack message for user.
func FormatTrendReport(r *model.TrendReport, user string) string {
	var b strings.Builder

	if user != "" {
		b.WriteString(fmt.Sprintf("<@%s>\n", user))
	}

	for _, t := range r.Trends {
		switch t.Result {
		case model.Flat:
			b.WriteString(fmt.Sprintf("%s is FLAT, trading exactly at the %d day moving average (%s).\n",
				r.Symbol, t.Window, t.Average.StringFixed(2)))
		case model.Uptrend:
			b.WriteString(fmt.Sprintf("%s is on an UPTREND relative to the %d day moving average (%s).\n",
				r.Symbol, t.Window, t.Average.StringFixed(2)))
		default:
			b.WriteString(fmt.Sprintf("%s is on a %s relative to the %d day moving average (%s).\n",
				r.Symbol, t.Result, t.Window, t.Average.StringFixed(2)))
		}
	}

	for _, c := range r.Crossovers {
		switch c.Result {
		case model.Bullish:
			b.WriteString(fmt.Sprintf("%s is BULLISH because the %d day moving average is HIGHER than the %d day moving average.\n",
				r.Symbol, c.ShortWindow, c.LongWindow))
		case model.Bearish:
			b.WriteString(fmt.Sprintf("%s is BEARISH because the %d day moving average is LOWER than the %d day moving average.\n",
				r.Symbol, c.ShortWindow, c.LongWindow))
		default:
			b.WriteString(fmt.Sprintf("%s is NEUTRAL because the %d day moving average is EQUAL to the %d day moving average.\n",
				r.Symbol, c.ShortWindow, c.LongWindow))
		}
	}

	if pos, err := calculator.RangePosition(r.CurrentPrice, r.High, r.Low); err == nil {
		b.WriteString(fmt.Sprintf("Current price %s, 1-year closing range %s - %s (%s%% of range).\n",
			r.CurrentPrice.StringFixed(2), r.Low.StringFixed(2), r.High.StringFixed(2),
			pos.Shift(2).StringFixed(0)))
	}

	b.WriteString(fmt.Sprintf("These are the graphs for %s over the last year.", r.Symbol))
	return b.String()
}

// FormatFailure formats the single failure line shown to the requester.
func FormatFailure(user, ticker string, err error) string {
	msg := "❌ " + model.UserMessage(ticker, err)
	if user != "" {
		return fmt.Sprintf("<@%s> %s", user, msg)
	}
	return msg
}

// ChartTitle is the upload title for a ticker's chart.
func ChartTitle(symbol string) string { return symbol + " Graphs" }
