package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quant_bot/internal/analysis"
	"quant_bot/internal/models"
)

// SMACrossover signals on the fast SMA crossing the slow SMA between
// the last two computed points.
type SMACrossover struct {
	mu sync.Mutex

	fastPeriod int
	slowPeriod int
}

func NewSMACrossover(fastPeriod, slowPeriod int) (*SMACrossover, error) {
	if fastPeriod < 2 || fastPeriod >= slowPeriod {
		return nil, errors.Wrapf(ErrInvalidParameter, "sma crossover: fast=%d slow=%d", fastPeriod, slowPeriod)
	}
	return &SMACrossover{fastPeriod: fastPeriod, slowPeriod: slowPeriod}, nil
}

func (s *SMACrossover) Name() string { return "sma_crossover" }

func (s *SMACrossover) Description() string {
	return "buy when the fast SMA crosses above the slow SMA, sell on the inverse cross"
}

func (s *SMACrossover) Analyze(history *models.PriceHistory) (*models.TradingSignal, error) {
	s.mu.Lock()
	fast, slow := s.fastPeriod, s.slowPeriod
	s.mu.Unlock()

	need := slow + 2
	if history.Len() < need {
		return nil, analysis.InsufficientDataError{Need: need, Got: history.Len()}
	}

	closes := history.ClosePrices()
	fastVals, err := analysis.SMA(closes, fast)
	if err != nil {
		return nil, err
	}
	slowVals, err := analysis.SMA(closes, slow)
	if err != nil {
		return nil, err
	}

	prevFast, currFast := fastVals[len(fastVals)-2], fastVals[len(fastVals)-1]
	prevSlow, currSlow := slowVals[len(slowVals)-2], slowVals[len(slowVals)-1]

	var action models.TradeAction
	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		action = models.ActionBuy
	case prevFast >= prevSlow && currFast < currSlow:
		action = models.ActionSell
	default:
		return nil, nil
	}

	last, _ := history.Last()
	return &models.TradingSignal{
		Symbol:     history.Symbol,
		Action:     action,
		Price:      last.Close,
		Confidence: crossoverConfidence(currFast, currSlow),
		Strategy:   s.Name(),
		Reason:     fmt.Sprintf("SMA(%d)=%.5f crossed SMA(%d)=%.5f", fast, currFast, slow, currSlow),
		Indicators: []models.IndicatorValue{
			{Name: fmt.Sprintf("sma_%d", fast), Value: currFast},
			{Name: fmt.Sprintf("sma_%d", slow), Value: currSlow},
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *SMACrossover) Parameters() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]float64{
		"fast_period": float64(s.fastPeriod),
		"slow_period": float64(s.slowPeriod),
	}
}

func (s *SMACrossover) UpdateParameter(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := int(value)
	switch name {
	case "fast_period":
		if v < 2 || v >= s.slowPeriod {
			return errors.Wrapf(ErrInvalidParameter, "fast_period=%d with slow_period=%d", v, s.slowPeriod)
		}
		s.fastPeriod = v
	case "slow_period":
		if v <= s.fastPeriod {
			return errors.Wrapf(ErrInvalidParameter, "slow_period=%d with fast_period=%d", v, s.fastPeriod)
		}
		s.slowPeriod = v
	default:
		return errors.Wrapf(ErrInvalidParameter, "unknown parameter %q", name)
	}
	return nil
}
