package analysis

import (
	"testing"
	"time"

	"quant_bot/internal/models"
)

// candlesFromHighs builds a window where the high series drives
// detection; lows sit one unit below the highs.
func candlesFromHighs(highs []float64) []models.Candle {
	out := make([]models.Candle, len(highs))
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, h := range highs {
		out[i] = models.Candle{
			Symbol:    "BTCUSDT",
			Interval:  "1m",
			OpenTime:  ts.Add(time.Duration(i) * time.Minute),
			CloseTime: ts.Add(time.Duration(i+1) * time.Minute),
			Open:      h - 0.5,
			High:      h,
			Low:       h - 1,
			Close:     h - 0.25,
			Volume:    100,
		}
	}
	return out
}

func candlesFromLows(lows []float64) []models.Candle {
	out := make([]models.Candle, len(lows))
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, l := range lows {
		out[i] = models.Candle{
			Symbol:    "BTCUSDT",
			Interval:  "1m",
			OpenTime:  ts.Add(time.Duration(i) * time.Minute),
			CloseTime: ts.Add(time.Duration(i+1) * time.Minute),
			Open:      l + 0.5,
			High:      l + 1,
			Low:       l,
			Close:     l + 0.25,
			Volume:    100,
		}
	}
	return out
}

func TestPatternWindowTooShort(t *testing.T) {
	d := NewPatternDetector()
	candles := candlesFromHighs(make([]float64, 10))
	if _, err := d.DetectHeadAndShoulders(candles); !IsInsufficientData(err) {
		t.Fatalf("head-and-shoulders: want InsufficientDataError, got %v", err)
	}
	if _, err := d.DetectDoubleTop(candles); !IsInsufficientData(err) {
		t.Fatalf("double top: want InsufficientDataError, got %v", err)
	}
	if _, err := d.DetectDoubleBottom(candles); !IsInsufficientData(err) {
		t.Fatalf("double bottom: want InsufficientDataError, got %v", err)
	}
}

func TestHeadAndShoulders(t *testing.T) {
	highs := make([]float64, 20)
	for i := range highs {
		highs[i] = 100
	}
	highs[3] = 110  // left shoulder
	highs[8] = 120  // head
	highs[13] = 110.5 // right shoulder, within tolerance of the left

	d := NewPatternDetector()
	pat, err := d.DetectHeadAndShoulders(candlesFromHighs(highs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat == nil {
		t.Fatal("expected a head-and-shoulders pattern")
	}
	assertClose(t, "head", pat.Head.High, 120, 1e-9)
	assertClose(t, "left shoulder", pat.LeftShoulder.High, 110, 1e-9)
	assertClose(t, "neckline slope", pat.NecklineSlope, 0, 1e-9)
	// head height 120-99=21 above a flat neckline at 99
	assertClose(t, "target", pat.TargetPrice(), 78, 1e-9)
}

func TestHeadAndShouldersShouldersTooUneven(t *testing.T) {
	highs := make([]float64, 20)
	for i := range highs {
		highs[i] = 100
	}
	highs[3] = 110
	highs[8] = 130
	highs[13] = 120 // 9% off the left shoulder

	pat, err := NewPatternDetector().DetectHeadAndShoulders(candlesFromHighs(highs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat != nil {
		t.Fatalf("expected no pattern, got %+v", pat)
	}
}

func TestDoubleTop(t *testing.T) {
	highs := make([]float64, 20)
	for i := range highs {
		highs[i] = 100
	}
	highs[3] = 110
	highs[10] = 110.5

	pat, err := NewPatternDetector().DetectDoubleTop(candlesFromHighs(highs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat == nil {
		t.Fatal("expected a double top")
	}
	assertClose(t, "height", pat.Height, 110.25, 1e-9)
	// trough low 99; target mirrors the pattern height below it
	assertClose(t, "target", pat.TargetPrice(), 87.75, 1e-9)
}

func TestDoubleTopPeaksTooClose(t *testing.T) {
	highs := make([]float64, 20)
	for i := range highs {
		highs[i] = 100
	}
	highs[3] = 110
	highs[6] = 110.2

	pat, err := NewPatternDetector().DetectDoubleTop(candlesFromHighs(highs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat != nil {
		t.Fatalf("expected no pattern, got %+v", pat)
	}
}

func TestDoubleBottom(t *testing.T) {
	lows := make([]float64, 20)
	for i := range lows {
		lows[i] = 100
	}
	lows[3] = 90
	lows[10] = 90.5

	pat, err := NewPatternDetector().DetectDoubleBottom(candlesFromLows(lows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat == nil {
		t.Fatal("expected a double bottom")
	}
	assertClose(t, "depth", pat.Depth, 90.25, 1e-9)
	// intervening peak high 101; target mirrors the height above it
	assertClose(t, "target", pat.TargetPrice(), 111.75, 1e-9)
}

func TestNoPatternOnTrendingSeries(t *testing.T) {
	highs := make([]float64, 25)
	for i := range highs {
		highs[i] = 100 + float64(i)
	}
	d := NewPatternDetector()
	candles := candlesFromHighs(highs)

	if pat, err := d.DetectHeadAndShoulders(candles); err != nil || pat != nil {
		t.Fatalf("head-and-shoulders: want nil, nil; got %+v, %v", pat, err)
	}
	if pat, err := d.DetectDoubleTop(candles); err != nil || pat != nil {
		t.Fatalf("double top: want nil, nil; got %+v, %v", pat, err)
	}
	if pat, err := d.DetectDoubleBottom(candles); err != nil || pat != nil {
		t.Fatalf("double bottom: want nil, nil; got %+v, %v", pat, err)
	}
}
