package models

import "time"

// Position is the open exposure in one symbol. At most one exists per
// symbol; the execution engine owns the map and all mutation.
type Position struct {
	Symbol        string
	Side          OrderSide
	Quantity      float64
	EntryPrice    float64
	CurrentPrice  float64
	UnrealizedPnL float64
	StopLoss      float64
	TakeProfit    float64
	OpenTime      time.Time
	LastUpdate    time.Time
}

func NewPosition(symbol string, side OrderSide, qty, price float64, ts time.Time) *Position {
	return &Position{
		Symbol:       symbol,
		Side:         side,
		Quantity:     qty,
		EntryPrice:   price,
		CurrentPrice: price,
		OpenTime:     ts,
		LastUpdate:   ts,
	}
}

// ApplyPrice marks the position to the latest price and recomputes
// unrealized PnL.
func (p *Position) ApplyPrice(price float64, ts time.Time) {
	p.CurrentPrice = price
	p.LastUpdate = ts

	diff := price - p.EntryPrice
	if p.Side == SideSell {
		diff = p.EntryPrice - price
	}
	p.UnrealizedPnL = diff * p.Quantity
}

// ShouldClose reports whether the current price has crossed the stop-loss
// or take-profit level for the held side.
func (p *Position) ShouldClose() bool {
	if p.Side == SideBuy {
		if p.StopLoss > 0 && p.CurrentPrice <= p.StopLoss {
			return true
		}
		if p.TakeProfit > 0 && p.CurrentPrice >= p.TakeProfit {
			return true
		}
		return false
	}
	if p.StopLoss > 0 && p.CurrentPrice >= p.StopLoss {
		return true
	}
	if p.TakeProfit > 0 && p.CurrentPrice <= p.TakeProfit {
		return true
	}
	return false
}
