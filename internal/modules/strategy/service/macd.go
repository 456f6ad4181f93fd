package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quant_bot/internal/analysis"
	"quant_bot/internal/models"
)

// MACDCrossover signals on the MACD line crossing its signal line
// between the last two computed points.
type MACDCrossover struct {
	mu sync.Mutex

	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

func NewMACDCrossover(fastPeriod, slowPeriod, signalPeriod int) (*MACDCrossover, error) {
	if fastPeriod < 2 || fastPeriod >= slowPeriod || signalPeriod < 2 {
		return nil, errors.Wrapf(ErrInvalidParameter, "macd: fast=%d slow=%d signal=%d", fastPeriod, slowPeriod, signalPeriod)
	}
	return &MACDCrossover{fastPeriod: fastPeriod, slowPeriod: slowPeriod, signalPeriod: signalPeriod}, nil
}

func (s *MACDCrossover) Name() string { return "macd_crossover" }

func (s *MACDCrossover) Description() string {
	return "buy when the MACD line crosses above its signal line, sell on the inverse cross"
}

func (s *MACDCrossover) Analyze(history *models.PriceHistory) (*models.TradingSignal, error) {
	s.mu.Lock()
	fast, slow, sig := s.fastPeriod, s.slowPeriod, s.signalPeriod
	s.mu.Unlock()

	need := slow + sig + 2
	if history.Len() < need {
		return nil, analysis.InsufficientDataError{Need: need, Got: history.Len()}
	}

	res, err := analysis.MACD(history.ClosePrices(), fast, slow, sig)
	if err != nil {
		return nil, err
	}
	if len(res.Signal) < 2 {
		return nil, nil
	}

	n := len(res.Signal)
	prevMACD, currMACD := res.MACD[n-2], res.MACD[n-1]
	prevSig, currSig := res.Signal[n-2], res.Signal[n-1]

	var action models.TradeAction
	switch {
	case prevMACD <= prevSig && currMACD > currSig:
		action = models.ActionBuy
	case prevMACD >= prevSig && currMACD < currSig:
		action = models.ActionSell
	default:
		return nil, nil
	}

	last, _ := history.Last()
	return &models.TradingSignal{
		Symbol:     history.Symbol,
		Action:     action,
		Price:      last.Close,
		Confidence: crossoverConfidence(currMACD, currSig),
		Strategy:   s.Name(),
		Reason:     fmt.Sprintf("MACD=%.5f crossed signal=%.5f", currMACD, currSig),
		Indicators: []models.IndicatorValue{
			{Name: "macd", Value: currMACD},
			{Name: "macd_signal", Value: currSig},
			{Name: "macd_histogram", Value: res.Histogram[n-1]},
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *MACDCrossover) Parameters() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]float64{
		"fast_period":   float64(s.fastPeriod),
		"slow_period":   float64(s.slowPeriod),
		"signal_period": float64(s.signalPeriod),
	}
}

func (s *MACDCrossover) UpdateParameter(name string, value float64) error {
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
	case "signal_period":
		if v < 2 {
			return errors.Wrapf(ErrInvalidParameter, "signal_period=%d", v)
		}
		s.signalPeriod = v
	default:
		return errors.Wrapf(ErrInvalidParameter, "unknown parameter %q", name)
	}
	return nil
}
