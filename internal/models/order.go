package models

import "time"

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Opposite returns the closing side for a held position side.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusFilled          OrderStatus = "FILLED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
)

// Actionable reports whether an order response represents an executed
// (at least partially filled) order the engine may act on.
func (s OrderStatus) Actionable() bool {
	return s == StatusFilled || s == StatusPartiallyFilled
}

type Order struct {
	Symbol    string
	Side      OrderSide
	Type      OrderType
	Quantity  float64
	Price     float64 // reference price for market orders, limit price otherwise
	Timestamp time.Time
}

type OrderResponse struct {
	OrderID      string
	Status       OrderStatus
	FilledQty    float64
	AveragePrice float64
	Timestamp    time.Time
}

type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}
