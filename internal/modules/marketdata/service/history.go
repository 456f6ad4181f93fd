package service

import (
	"sync"

	"quant_bot/internal/models"
)

// HistoryStore keeps the rolling candle history per (symbol, interval).
// The stream loop is the sole writer; readers get copies, never the
// backing slice.
type HistoryStore struct {
	mu    sync.RWMutex
	limit int
	data  map[string]*models.PriceHistory
}

func NewHistoryStore(limit int) *HistoryStore {
	if limit <= 0 {
		limit = 1000
	}
	return &HistoryStore{limit: limit, data: make(map[string]*models.PriceHistory)}
}

func key(symbol, interval string) string { return symbol + "/" + interval }

// Append adds a closed candle, evicting the oldest past the limit.
func (s *HistoryStore) Append(c models.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(c.Symbol, c.Interval)
	h := s.data[k]
	if h == nil {
		h = models.NewPriceHistory(c.Symbol, c.Interval)
		s.data[k] = h
	}
	h.Add(c)
	if len(h.Candles) > s.limit {
		h.Candles = h.Candles[len(h.Candles)-s.limit:]
	}
}

// History returns a copy of the stored sequence.
func (s *HistoryStore) History(symbol, interval string) (*models.PriceHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[key(symbol, interval)]
	if !ok {
		return nil, false
	}
	out := models.NewPriceHistory(symbol, interval)
	out.Candles = make([]models.Candle, len(h.Candles))
	copy(out.Candles, h.Candles)
	return out, true
}

func (s *HistoryStore) Len(symbol, interval string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.data[key(symbol, interval)]; ok {
		return len(h.Candles)
	}
	return 0
}

// LastPrice returns the close of the newest stored candle.
func (s *HistoryStore) LastPrice(symbol, interval string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data[key(symbol, interval)]
	if !ok || len(h.Candles) == 0 {
		return 0, false
	}
	return h.Candles[len(h.Candles)-1].Close, true
}
