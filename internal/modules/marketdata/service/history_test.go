package service

import (
	"testing"
	"time"

	"quant_bot/internal/models"
)

func candleAt(i int, close float64) models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return models.Candle{
		Symbol:    "BTCUSDT",
		Interval:  "1m",
		OpenTime:  base.Add(time.Duration(i) * time.Minute),
		CloseTime: base.Add(time.Duration(i+1) * time.Minute),
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    10,
	}
}

func TestHistoryStoreAppendAndRead(t *testing.T) {
	s := NewHistoryStore(1000)
	for i := 0; i < 5; i++ {
		s.Append(candleAt(i, 100+float64(i)))
	}

	h, ok := s.History("BTCUSDT", "1m")
	if !ok {
		t.Fatal("expected history for BTCUSDT/1m")
	}
	if h.Len() != 5 {
		t.Fatalf("length: got %d, want 5", h.Len())
	}
	if last, _ := h.Last(); last.Close != 104 {
		t.Fatalf("last close: got %v, want 104", last.Close)
	}

	price, ok := s.LastPrice("BTCUSDT", "1m")
	if !ok || price != 104 {
		t.Fatalf("last price: got %v (%v), want 104", price, ok)
	}
}

func TestHistoryStoreEvictsPastLimit(t *testing.T) {
	s := NewHistoryStore(3)
	for i := 0; i < 10; i++ {
		s.Append(candleAt(i, float64(i)))
	}

	h, _ := s.History("BTCUSDT", "1m")
	if h.Len() != 3 {
		t.Fatalf("length after eviction: got %d, want 3", h.Len())
	}
	closes := h.ClosePrices()
	want := []float64{7, 8, 9}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("closes: got %v, want %v", closes, want)
		}
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewHistoryStore(1000)
	s.Append(candleAt(0, 100))

	h, _ := s.History("BTCUSDT", "1m")
	h.Candles[0].Close = 1

	h2, _ := s.History("BTCUSDT", "1m")
	if h2.Candles[0].Close != 100 {
		t.Fatalf("store mutated through returned copy: close=%v", h2.Candles[0].Close)
	}
}

func TestHistoryUnknownSymbol(t *testing.T) {
	s := NewHistoryStore(1000)
	if _, ok := s.History("ETHUSDT", "1m"); ok {
		t.Fatal("expected no history for unseen symbol")
	}
}
