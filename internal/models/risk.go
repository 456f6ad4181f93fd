package models

import "fmt"

// RiskParameters bound what the execution engine may do. Hot-swappable;
// a swap never retroactively changes already-open positions.
type RiskParameters struct {
	MaxPositionSize   float64 `yaml:"max_position_size"` // quote currency
	MaxOrderSize      float64 `yaml:"max_order_size"`    // quote currency
	MaxDailyLoss      float64 `yaml:"max_daily_loss"`    // quote currency, positive
	StopLossPercent   float64 `yaml:"stop_loss_percent"`
	TakeProfitPercent float64 `yaml:"take_profit_percent"`
	MaxOpenPositions  int     `yaml:"max_open_positions"`
	MaxTradesPerDay   int     `yaml:"max_trades_per_day"`
}

func DefaultRiskParameters() RiskParameters {
	return RiskParameters{
		MaxPositionSize:   500,
		MaxOrderSize:      100,
		MaxDailyLoss:      100,
		StopLossPercent:   5,
		TakeProfitPercent: 10,
		MaxOpenPositions:  5,
		MaxTradesPerDay:   10,
	}
}

func (r RiskParameters) Validate() error {
	if r.MaxOrderSize <= 0 {
		return fmt.Errorf("max_order_size must be > 0, got %v", r.MaxOrderSize)
	}
	if r.MaxPositionSize < r.MaxOrderSize {
		return fmt.Errorf("max_position_size (%v) must be >= max_order_size (%v)", r.MaxPositionSize, r.MaxOrderSize)
	}
	if r.MaxDailyLoss <= 0 {
		return fmt.Errorf("max_daily_loss must be > 0, got %v", r.MaxDailyLoss)
	}
	if r.StopLossPercent <= 0 || r.StopLossPercent >= 100 {
		return fmt.Errorf("stop_loss_percent must be in (0, 100), got %v", r.StopLossPercent)
	}
	if r.TakeProfitPercent <= 0 {
		return fmt.Errorf("take_profit_percent must be > 0, got %v", r.TakeProfitPercent)
	}
	if r.MaxOpenPositions <= 0 {
		return fmt.Errorf("max_open_positions must be > 0, got %d", r.MaxOpenPositions)
	}
	if r.MaxTradesPerDay <= 0 {
		return fmt.Errorf("max_trades_per_day must be > 0, got %d", r.MaxTradesPerDay)
	}
	return nil
}
