package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"quant_bot/internal/analysis"
	"quant_bot/internal/models"
)

func historyOf(closes []float64) *models.PriceHistory {
	h := models.NewPriceHistory("BTCUSDT", "1m")
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		h.Add(models.Candle{
			Symbol:    "BTCUSDT",
			Interval:  "1m",
			OpenTime:  base.Add(time.Duration(i) * time.Minute),
			CloseTime: base.Add(time.Duration(i+1) * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    10,
		})
	}
	return h
}

func TestSMACrossoverSingleBuyAtTransition(t *testing.T) {
	s, err := NewSMACrossover(2, 3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// downtrend turning up between index 3 and 4; the fast SMA crosses
	// the slow SMA exactly once over the whole walk-forward
	prices := []float64{10, 9, 8, 7, 10, 12, 13, 14, 15}

	var buys, sells int
	var buyAt int
	for n := 5; n <= len(prices); n++ {
		sig, err := s.Analyze(historyOf(prices[:n]))
		if err != nil {
			t.Fatalf("analyze at n=%d: %v", n, err)
		}
		if sig == nil {
			continue
		}
		switch sig.Action {
		case models.ActionBuy:
			buys++
			buyAt = n
		case models.ActionSell:
			sells++
		}
	}

	if buys != 1 || sells != 0 {
		t.Fatalf("buys=%d sells=%d, want exactly one buy", buys, sells)
	}
	if buyAt != 5 {
		t.Fatalf("buy emitted at prefix %d, want 5", buyAt)
	}
}

func TestSMACrossoverSellOnInverseCross(t *testing.T) {
	s, _ := NewSMACrossover(2, 3)
	sig, err := s.Analyze(historyOf([]float64{10, 11, 12, 13, 10}))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig == nil || sig.Action != models.ActionSell {
		t.Fatalf("want sell, got %+v", sig)
	}
	if sig.Confidence < 0.5 || sig.Confidence > 0.95 {
		t.Fatalf("confidence out of range: %v", sig.Confidence)
	}
}

func TestSMACrossoverInsufficientData(t *testing.T) {
	s, _ := NewSMACrossover(2, 3)
	_, err := s.Analyze(historyOf([]float64{10, 11, 12}))
	if !analysis.IsInsufficientData(err) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestSMACrossoverParameterValidation(t *testing.T) {
	if _, err := NewSMACrossover(5, 5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("fast==slow must be rejected, got %v", err)
	}

	s, _ := NewSMACrossover(2, 3)
	if err := s.UpdateParameter("fast_period", 3); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("fast>=slow must be rejected, got %v", err)
	}
	if err := s.UpdateParameter("bogus", 1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown parameter must be rejected, got %v", err)
	}
	// rejected updates keep the prior configuration
	params := s.Parameters()
	if params["fast_period"] != 2 || params["slow_period"] != 3 {
		t.Fatalf("parameters changed after rejected update: %+v", params)
	}

	if err := s.UpdateParameter("slow_period", 10); err != nil {
		t.Fatalf("valid update: %v", err)
	}
	if s.Parameters()["slow_period"] != 10 {
		t.Fatal("valid update not applied")
	}
}

func TestRSIThresholdOverboughtSell(t *testing.T) {
	s, err := NewRSIThreshold(14, 30, 70)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// 20 monotonically rising closes: RSI = 100, deep overbought
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	sig, err := s.Analyze(historyOf(prices))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig == nil || sig.Action != models.ActionSell {
		t.Fatalf("want sell, got %+v", sig)
	}
	if sig.Confidence != 1 {
		t.Fatalf("confidence at RSI=100: got %v, want 1", sig.Confidence)
	}
}

func TestRSIThresholdOversoldBuy(t *testing.T) {
	s, _ := NewRSIThreshold(14, 30, 70)
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	sig, err := s.Analyze(historyOf(prices))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig == nil || sig.Action != models.ActionBuy {
		t.Fatalf("want buy, got %+v", sig)
	}
}

func TestRSIThresholdNeutralBand(t *testing.T) {
	s, _ := NewRSIThreshold(3, 30, 70)
	// alternating closes keep RSI near the middle of the band
	sig, err := s.Analyze(historyOf([]float64{10, 11, 10, 11, 10, 11}))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig != nil {
		t.Fatalf("want no signal inside the band, got %+v", sig)
	}
}

func TestRSIThresholdValidation(t *testing.T) {
	if _, err := NewRSIThreshold(1, 30, 70); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("period<2 must be rejected, got %v", err)
	}
	if _, err := NewRSIThreshold(14, 70, 30); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("inverted thresholds must be rejected, got %v", err)
	}

	s, _ := NewRSIThreshold(14, 30, 70)
	if err := s.UpdateParameter("oversold", 80); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("oversold above overbought must be rejected, got %v", err)
	}
}

func TestMACDCrossoverBuy(t *testing.T) {
	s, err := NewMACDCrossover(2, 3, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// flat series, then a jump: the MACD line crosses above its signal
	sig, err := s.Analyze(historyOf([]float64{10, 10, 10, 10, 10, 10, 12}))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig == nil || sig.Action != models.ActionBuy {
		t.Fatalf("want buy, got %+v", sig)
	}
}

func TestMACDCrossoverInsufficientData(t *testing.T) {
	s, _ := NewMACDCrossover(2, 3, 2)
	_, err := s.Analyze(historyOf([]float64{10, 10, 10, 10, 10, 10}))
	if !analysis.IsInsufficientData(err) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestMACDCrossoverValidation(t *testing.T) {
	if _, err := NewMACDCrossover(26, 12, 9); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("fast>slow must be rejected, got %v", err)
	}
}

func TestFactoryBuildsConfiguredSet(t *testing.T) {
	strategies, err := BuildAll([]StrategySpec{
		{Name: "sma_crossover", Params: map[string]float64{"fast_period": 5, "slow_period": 20}},
		{Name: "rsi_threshold"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(strategies) != 2 {
		t.Fatalf("strategies: got %d, want 2", len(strategies))
	}
	if strategies[0].Parameters()["fast_period"] != 5 {
		t.Fatal("factory ignored parameter override")
	}
}

func TestFactoryDefaultTrio(t *testing.T) {
	strategies, err := BuildAll(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(strategies) != 3 {
		t.Fatalf("default set: got %d, want 3", len(strategies))
	}
}

func TestFactoryUnknownStrategy(t *testing.T) {
	if _, err := BuildAll([]StrategySpec{{Name: "martingale"}}); err == nil {
		t.Fatal("unknown strategy name must be rejected")
	}
}
