package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"TrendBot/internal/calculator"
	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Options controls chart output.
type Options struct {
	Dir    string // scratch directory for rendered files
	Width  int
	Height int
}

var overlayColors = []drawing.Color{
	drawing.ColorRed,
	drawing.ColorFromHex("FFA500"),
	drawing.ColorFromHex("008000"),
}

// Render draws the closing price and the rolling moving averages to w as PNG.
func Render(w io.Writer, r *model.TrendReport, opts Options) error {
	if r == nil || r.Series.Len() == 0 {
		return errors.New("no series to chart")
	}
	series := r.Series
	dates := series.Dates()

	price := gochart.TimeSeries{
		Name:    r.Symbol + " Current Price",
		Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("008080"), StrokeWidth: 2},
		XValues: dates,
		YValues: toFloats(series.Closes()),
	}
	all := []gochart.Series{price}

	for i, window := range r.Windows.All() {
		points, err := calculator.RollingMeans(series, window)
		if err != nil {
			return fmt.Errorf("rolling %d day mean: %w", window, err)
		}
		ts := gochart.TimeSeries{
			Name:  fmt.Sprintf("%d Day Mov Avg.", window),
			Style: gochart.Style{StrokeColor: overlayColors[i%len(overlayColors)], StrokeWidth: 1.5},
		}
		for _, p := range points {
			f, _ := p.Mean.Float64()
			ts.XValues = append(ts.XValues, dates[p.Index])
			ts.YValues = append(ts.YValues, f)
		}
		all = append(all, ts)
	}

	graph := gochart.Chart{
		Title:  r.Symbol + " Stock Price",
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
			GridMajorStyle: gochart.Style{StrokeColor: drawing.ColorFromHex("DDDDDD"), StrokeWidth: 1},
		},
		YAxis: gochart.YAxis{
			Name:           "Price ($)",
			GridMajorStyle: gochart.Style{StrokeColor: drawing.ColorFromHex("DDDDDD"), StrokeWidth: 1},
		},
		Series: all,
	}
	if r.High.Equal(r.Low) {
		// A flat series has a zero-height range, which the renderer rejects.
		mid, _ := r.High.Float64()
		graph.YAxis.Range = &gochart.ContinuousRange{Min: mid - 1, Max: mid + 1}
	}
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph)}

	return graph.Render(gochart.PNG, w)
}

// RenderFile renders the chart into a new scratch file named after the symbol and
// returns its path. The caller removes the file once it has been delivered.
func RenderFile(r *model.TrendReport, opts Options) (string, error) {
	f, err := os.CreateTemp(opts.Dir, sanitize(r.Symbol)+"_Graph_*.png")
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	if err := Render(f, r, opts); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close chart file: %w", err)
	}
	return f.Name(), nil
}

func sanitize(symbol string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, symbol)
}

func toFloats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i], _ = d.Float64()
	}
	return out
}
