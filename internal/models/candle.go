package models

import "time"

// Candle is one closed OHLCV bar for a (symbol, interval) pair.
type Candle struct {
	Symbol      string
	Interval    string
	OpenTime    time.Time
	CloseTime   time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	QuoteVolume float64
	TradeCount  int64
}

// MarketUpdate is a point event from the market-data stream. Closed marks
// whether the candle for the current interval is final; intra-interval
// updates carry the running values.
type MarketUpdate struct {
	Symbol    string
	Interval  string
	Candle    Candle
	Closed    bool
	Timestamp time.Time
}

// PriceTick is the execution-side price feed: one last-price point per
// stream event, closed or not.
type PriceTick struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// PriceHistory is an ordered candle sequence, oldest first. Appends go
// through its owning store; consumers get copies.
type PriceHistory struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

func NewPriceHistory(symbol, interval string) *PriceHistory {
	return &PriceHistory{Symbol: symbol, Interval: interval}
}

func (h *PriceHistory) Add(c Candle) {
	h.Candles = append(h.Candles, c)
}

func (h *PriceHistory) Len() int { return len(h.Candles) }

func (h *PriceHistory) Last() (Candle, bool) {
	if len(h.Candles) == 0 {
		return Candle{}, false
	}
	return h.Candles[len(h.Candles)-1], true
}

func (h *PriceHistory) ClosePrices() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Close
	}
	return out
}

func (h *PriceHistory) HighPrices() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.High
	}
	return out
}

func (h *PriceHistory) LowPrices() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Low
	}
	return out
}

func (h *PriceHistory) Volumes() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Volume
	}
	return out
}
