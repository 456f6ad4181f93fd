package service

import (
	"github.com/pkg/errors"

	"quant_bot/internal/models"
)

// ErrInvalidParameter rejects a parameter update that breaks an ordering
// or range invariant. The prior configuration stays in effect.
var ErrInvalidParameter = errors.New("invalid strategy parameter")

// Strategy evaluates a price history into an optional directional
// signal. Analyze returns (nil, nil) when the strategy has no opinion
// and InsufficientDataError when the lookback exceeds the history.
type Strategy interface {
	Name() string
	Description() string
	Analyze(history *models.PriceHistory) (*models.TradingSignal, error)
	Parameters() map[string]float64
	UpdateParameter(name string, value float64) error
}

// crossoverConfidence maps the relative gap between the crossing lines
// into [0.5, 0.95]; a wider gap after the cross reads as a stronger
// signal.
func crossoverConfidence(curr, ref float64) float64 {
	gap := curr - ref
	if gap < 0 {
		gap = -gap
	}
	base := ref
	if base < 0 {
		base = -base
	}
	if base < 1e-10 {
		return 0.5
	}
	conf := 0.5 + (gap/base)*25
	if conf > 0.95 {
		return 0.95
	}
	return conf
}
