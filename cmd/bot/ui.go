package main

import (
	"fmt"
	"io"
	"strings"

	"TrendBot/internal/model"
	"TrendBot/internal/notifier"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	reportStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2)

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	downStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	flatStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func printReport(w io.Writer, r *model.TrendReport, message string) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s", r.Symbol, r.CurrentPrice.StringFixed(2))))
	b.WriteString("\n\n")
	for _, t := range r.Trends {
		b.WriteString(fmt.Sprintf("%3d day avg %10s  %s\n", t.Window, t.Average.StringFixed(2), styleFor(string(t.Result))))
	}
	for _, c := range r.Crossovers {
		b.WriteString(fmt.Sprintf("%d/%d crossover       %s\n", c.ShortWindow, c.LongWindow, styleFor(string(c.Result))))
	}
	b.WriteString(fmt.Sprintf("range %s - %s (%s anchor)", r.Low.StringFixed(2), r.High.StringFixed(2), r.Anchor))

	fmt.Fprintln(w, reportStyle.Render(b.String()))
	fmt.Fprintln(w, message)
}

func styleFor(result string) string {
	switch result {
	case string(model.Uptrend), string(model.Bullish):
		return upStyle.Render(result)
	case string(model.Downtrend), string(model.Bearish):
		return downStyle.Render(result)
	default:
		return flatStyle.Render(result)
	}
}

func printFailure(w io.Writer, ticker string, err error) {
	fmt.Fprintln(w, errorStyle.Render(notifier.FormatFailure("", ticker, err)))
}
