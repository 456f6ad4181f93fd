package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quant_bot/internal/analysis"
	"quant_bot/internal/models"
)

// RSIThreshold signals on the RSI leaving the [oversold, overbought]
// band; confidence scales with the distance past the threshold.
type RSIThreshold struct {
	mu sync.Mutex

	period     int
	oversold   float64
	overbought float64
}

func NewRSIThreshold(period int, oversold, overbought float64) (*RSIThreshold, error) {
	if period < 2 {
		return nil, errors.Wrapf(ErrInvalidParameter, "rsi: period=%d", period)
	}
	if oversold <= 0 || oversold >= overbought || overbought >= 100 {
		return nil, errors.Wrapf(ErrInvalidParameter, "rsi: oversold=%v overbought=%v", oversold, overbought)
	}
	return &RSIThreshold{period: period, oversold: oversold, overbought: overbought}, nil
}

func (s *RSIThreshold) Name() string { return "rsi_threshold" }

func (s *RSIThreshold) Description() string {
	return "buy when RSI falls to the oversold threshold, sell at the overbought threshold"
}

func (s *RSIThreshold) Analyze(history *models.PriceHistory) (*models.TradingSignal, error) {
	s.mu.Lock()
	period, oversold, overbought := s.period, s.oversold, s.overbought
	s.mu.Unlock()

	if history.Len() < period+1 {
		return nil, analysis.InsufficientDataError{Need: period + 1, Got: history.Len()}
	}

	rsi, err := analysis.RSI(history.ClosePrices(), period)
	if err != nil {
		return nil, err
	}

	var (
		action     models.TradeAction
		confidence float64
	)
	switch {
	case rsi <= oversold:
		action = models.ActionBuy
		confidence = (oversold - rsi) / oversold
	case rsi >= overbought:
		action = models.ActionSell
		confidence = (rsi - overbought) / (100 - overbought)
	default:
		return nil, nil
	}
	if confidence > 1 {
		confidence = 1
	}

	last, _ := history.Last()
	return &models.TradingSignal{
		Symbol:     history.Symbol,
		Action:     action,
		Price:      last.Close,
		Confidence: confidence,
		Strategy:   s.Name(),
		Reason:     fmt.Sprintf("RSI(%d)=%.2f outside [%.0f, %.0f]", period, rsi, oversold, overbought),
		Indicators: []models.IndicatorValue{
			{Name: fmt.Sprintf("rsi_%d", period), Value: rsi},
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *RSIThreshold) Parameters() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]float64{
		"period":     float64(s.period),
		"oversold":   s.oversold,
		"overbought": s.overbought,
	}
}

func (s *RSIThreshold) UpdateParameter(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "period":
		v := int(value)
		if v < 2 {
			return errors.Wrapf(ErrInvalidParameter, "period=%d", v)
		}
		s.period = v
	case "oversold":
		if value <= 0 || value >= s.overbought {
			return errors.Wrapf(ErrInvalidParameter, "oversold=%v with overbought=%v", value, s.overbought)
		}
		s.oversold = value
	case "overbought":
		if value <= s.oversold || value >= 100 {
			return errors.Wrapf(ErrInvalidParameter, "overbought=%v with oversold=%v", value, s.oversold)
		}
		s.overbought = value
	default:
		return errors.Wrapf(ErrInvalidParameter, "unknown parameter %q", name)
	}
	return nil
}
