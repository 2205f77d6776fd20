package calculator

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"TrendBot/internal/model"

	"github.com/shopspring/decimal"
)

func ascendingSeries(start, count int) *model.PriceSeries {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: "TEST"}
	for i := 0; i < count; i++ {
		s.Points = append(s.Points, model.PricePoint{
			Date:  day.AddDate(0, 0, i),
			Close: decimal.NewFromInt(int64(start + i)),
		})
	}
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMovingAverage_AscendingSeries(t *testing.T) {
	series := ascendingSeries(100, 60)

	oldest, err := MovingAverage(series, 12, model.AnchorOldest)
	if err != nil {
		t.Fatalf("oldest anchor: %v", err)
	}
	if !oldest.Equal(dec("105.5")) {
		t.Errorf("oldest anchor: expected 105.5, got %s", oldest)
	}

	latest, err := MovingAverage(series, 12, model.AnchorLatest)
	if err != nil {
		t.Fatalf("latest anchor: %v", err)
	}
	if !latest.Equal(dec("153.5")) {
		t.Errorf("latest anchor: expected 153.5, got %s", latest)
	}
}

func TestMovingAverage_InsufficientData(t *testing.T) {
	series := ascendingSeries(100, 10)
	for _, anchor := range []model.Anchor{model.AnchorLatest, model.AnchorOldest} {
		_, err := MovingAverage(series, 11, anchor)
		if !errors.Is(err, model.ErrInsufficientData) {
			t.Errorf("%s: expected ErrInsufficientData, got %v", anchor, err)
		}
	}
	if _, err := MovingAverage(series, 0, model.AnchorOldest); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestMovingAverage_WithinSeriesRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(120)
		series := &model.PriceSeries{Symbol: "RND"}
		day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			c := decimal.NewFromFloat(rng.Float64() * 500).Round(4)
			series.Points = append(series.Points, model.PricePoint{Date: day.AddDate(0, 0, i), Close: c})
		}
		high, low, err := SeriesRange(series)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		window := 1 + rng.Intn(n)
		for _, anchor := range []model.Anchor{model.AnchorLatest, model.AnchorOldest} {
			avg, err := MovingAverage(series, window, anchor)
			if err != nil {
				t.Fatalf("trial %d: %v", trial, err)
			}
			if avg.LessThan(low) || avg.GreaterThan(high) {
				t.Fatalf("trial %d: average %s outside [%s, %s]", trial, avg, low, high)
			}
		}
	}
}

func TestRollingMeans(t *testing.T) {
	series := ascendingSeries(1, 5)
	got, err := RollingMeans(series, 3)
	if err != nil {
		t.Fatalf("RollingMeans: %v", err)
	}
	want := []string{"2", "3", "4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Index != i+2 || !got[i].Mean.Equal(dec(w)) {
			t.Errorf("point %d: expected index %d mean %s, got %d %s", i, i+2, w, got[i].Index, got[i].Mean)
		}
	}
	if _, err := RollingMeans(series, 6); !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		price, avg string
		want       model.TrendResult
	}{
		{"150", "105.5", model.Uptrend},
		{"100", "105.5", model.Downtrend},
		{"105.5", "105.50", model.Flat},
		{"0.0001", "0", model.Uptrend},
	}
	for _, tt := range tests {
		if got := ClassifyTrend(dec(tt.price), dec(tt.avg)); got != tt.want {
			t.Errorf("ClassifyTrend(%s, %s) = %s, want %s", tt.price, tt.avg, got, tt.want)
		}
	}
}

func TestClassifyCrossover(t *testing.T) {
	tests := []struct {
		short, long string
		want        model.CrossoverResult
	}{
		{"110", "105", model.Bullish},
		{"90", "105", model.Bearish},
		{"105", "105", model.Neutral},
	}
	for _, tt := range tests {
		if got := ClassifyCrossover(dec(tt.short), dec(tt.long)); got != tt.want {
			t.Errorf("ClassifyCrossover(%s, %s) = %s, want %s", tt.short, tt.long, got, tt.want)
		}
	}
}

func TestClassifyCrossover_Antisymmetric(t *testing.T) {
	flip := map[model.CrossoverResult]model.CrossoverResult{
		model.Bullish: model.Bearish,
		model.Bearish: model.Bullish,
		model.Neutral: model.Neutral,
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := decimal.NewFromInt(int64(rng.Intn(50)))
		b := decimal.NewFromInt(int64(rng.Intn(50)))
		if got := ClassifyCrossover(b, a); got != flip[ClassifyCrossover(a, b)] {
			t.Fatalf("crossover(%s,%s) and crossover(%s,%s) not antisymmetric", a, b, b, a)
		}
	}
}

func TestAnalyze(t *testing.T) {
	series := ascendingSeries(100, 60)
	report, err := Analyze(series, dec("150"), model.DefaultWindows, model.AnchorOldest)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Trends) != 3 {
		t.Fatalf("expected 3 trends, got %d", len(report.Trends))
	}
	if report.Trends[0].Result != model.Uptrend || !report.Trends[0].Average.Equal(dec("105.5")) {
		t.Errorf("short trend: got %s avg %s", report.Trends[0].Result, report.Trends[0].Average)
	}
	// Oldest-anchored averages of an ascending series grow with the window.
	for _, c := range report.Crossovers {
		if c.Result != model.Bearish {
			t.Errorf("%d/%d crossover: expected BEARISH, got %s", c.ShortWindow, c.LongWindow, c.Result)
		}
	}
	if !report.High.Equal(dec("159")) || !report.Low.Equal(dec("100")) {
		t.Errorf("range: got %s..%s", report.Low, report.High)
	}

	latest, err := Analyze(series, dec("150"), model.DefaultWindows, model.AnchorLatest)
	if err != nil {
		t.Fatalf("Analyze latest: %v", err)
	}
	for _, c := range latest.Crossovers {
		if c.Result != model.Bullish {
			t.Errorf("%d/%d crossover: expected BULLISH, got %s", c.ShortWindow, c.LongWindow, c.Result)
		}
	}
}

func TestAnalyze_ShortHistory(t *testing.T) {
	_, err := Analyze(ascendingSeries(100, 40), dec("150"), model.DefaultWindows, model.AnchorLatest)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRangePosition(t *testing.T) {
	pos, err := RangePosition(dec("150"), dec("200"), dec("100"))
	if err != nil || !pos.Equal(dec("0.5")) {
		t.Errorf("expected 0.5, got %s (%v)", pos, err)
	}
	pos, _ = RangePosition(dec("250"), dec("200"), dec("100"))
	if !pos.Equal(dec("1")) {
		t.Errorf("expected clamp to 1, got %s", pos)
	}
	if _, err := RangePosition(dec("1"), dec("1"), dec("2")); err == nil {
		t.Error("expected error for inverted range")
	}
}
