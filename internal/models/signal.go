package models

import "time"

type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
	ActionHold TradeAction = "HOLD"
)

// IndicatorValue is a named indicator snapshot attached to a signal for
// later inspection.
type IndicatorValue struct {
	Name  string
	Value float64
}

// TradingSignal is one strategy's directional recommendation. Confidence
// is in [0,1]; consumed exactly once by the signal gate.
type TradingSignal struct {
	Symbol     string
	Action     TradeAction
	Price      float64
	Confidence float64
	Strategy   string
	Reason     string
	Indicators []IndicatorValue
	CreatedAt  time.Time
}
