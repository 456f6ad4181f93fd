package models

import "time"

// Trade is one row of the append-only trade ledger. Entry fields are
// written when a position opens; exit fields when it closes.
type Trade struct {
	ID           string
	Symbol       string
	Side         OrderSide
	Quantity     float64
	Price        float64
	Timestamp    time.Time
	EntryOrderID string
	ExitOrderID  string
	ExitPrice    float64
	RealizedPnL  float64
	Closed       bool
}
