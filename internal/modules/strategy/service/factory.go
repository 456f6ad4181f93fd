package service

import (
	"github.com/pkg/errors"
)

// StrategySpec names a strategy and overrides its default parameters.
type StrategySpec struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

func param(params map[string]float64, name string, def float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return def
}

// Build constructs one strategy by name with defaults filled in.
func Build(spec StrategySpec) (Strategy, error) {
	switch spec.Name {
	case "sma_crossover":
		return NewSMACrossover(
			int(param(spec.Params, "fast_period", 10)),
			int(param(spec.Params, "slow_period", 30)),
		)
	case "rsi_threshold":
		return NewRSIThreshold(
			int(param(spec.Params, "period", 14)),
			param(spec.Params, "oversold", 30),
			param(spec.Params, "overbought", 70),
		)
	case "macd_crossover":
		return NewMACDCrossover(
			int(param(spec.Params, "fast_period", 12)),
			int(param(spec.Params, "slow_period", 26)),
			int(param(spec.Params, "signal_period", 9)),
		)
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "unknown strategy %q", spec.Name)
	}
}

// BuildAll constructs the configured strategy set; an empty spec list
// yields the default trio.
func BuildAll(specs []StrategySpec) ([]Strategy, error) {
	if len(specs) == 0 {
		specs = []StrategySpec{
			{Name: "sma_crossover"},
			{Name: "rsi_threshold"},
			{Name: "macd_crossover"},
		}
	}

	out := make([]Strategy, 0, len(specs))
	for _, spec := range specs {
		s, err := Build(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "build strategy %q", spec.Name)
		}
		out = append(out, s)
	}
	return out, nil
}
