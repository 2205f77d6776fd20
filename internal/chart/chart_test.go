package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TrendBot/internal/calculator"
	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

func testReport(t *testing.T, n int, flat bool) *model.TrendReport {
	t.Helper()
	s := &model.PriceSeries{Symbol: "BRK-B"}
	day := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := decimal.NewFromInt(int64(100 + i%17))
		if flat {
			c = decimal.NewFromInt(100)
		}
		s.Points = append(s.Points, model.PricePoint{Date: day.AddDate(0, 0, i), Close: c})
	}
	r, err := calculator.Analyze(s, decimal.NewFromInt(110), model.DefaultWindows, model.AnchorLatest)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return r
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testReport(t, 120, false), Options{Width: 600, Height: 400}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestRender_FlatSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testReport(t, 60, true), Options{Width: 600, Height: 400}); err != nil {
		t.Fatalf("Render flat series: %v", err)
	}
}

func TestRender_NoSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, &model.TrendReport{}, Options{}); err == nil {
		t.Fatal("expected error for empty report")
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderFile(testReport(t, 80, false), Options{Dir: dir, Width: 600, Height: 400})
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected file in %s, got %s", dir, path)
	}
	if !strings.HasPrefix(filepath.Base(path), "BRK-B_Graph_") || filepath.Ext(path) != ".png" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("expected PNG on disk: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("^GSPC"); got != "_GSPC" {
		t.Errorf("sanitize: got %q", got)
	}
}
