package service

import "math"

// truncateQty cuts a quantity to 5 fractional digits, the granularity
// the exchange accepts.
func truncateQty(qty float64) float64 {
	return math.Trunc(qty*1e5) / 1e5
}

// orderQuantity sizes an order: confidence scales the quote budget,
// the free quote balance caps it, and the result is truncated to the
// exchange's quantity step.
func orderQuantity(maxOrderSize, confidence, freeQuote, price float64) float64 {
	if price <= 0 {
		return 0
	}
	quote := maxOrderSize * confidence
	if quote > freeQuote {
		quote = freeQuote
	}
	return truncateQty(quote / price)
}
