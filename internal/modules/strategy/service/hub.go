package service

import (
	"context"

	"quant_bot/internal/analysis"
	"quant_bot/internal/models"
	mdservice "quant_bot/internal/modules/marketdata/service"
	"quant_bot/pkg/logger"
)

// Hub runs every registered strategy against the stored history when a
// candle closes and forwards their signals. Signals are dropped, not
// blocked on, when the output channel is full.
type Hub struct {
	strategies []Strategy
	store      *mdservice.HistoryStore
	signals    chan<- models.TradingSignal
}

func NewHub(strategies []Strategy, store *mdservice.HistoryStore, signals chan<- models.TradingSignal) *Hub {
	return &Hub{strategies: strategies, store: store, signals: signals}
}

func (h *Hub) Strategies() []Strategy { return h.strategies }

// OnUpdate evaluates strategies for the update's symbol. Intra-interval
// updates are ignored; evaluation runs on closed candles only.
func (h *Hub) OnUpdate(ctx context.Context, upd models.MarketUpdate) {
	if !upd.Closed {
		return
	}

	history, ok := h.store.History(upd.Symbol, upd.Interval)
	if !ok {
		return
	}

	for _, s := range h.strategies {
		sig, err := s.Analyze(history)
		if err != nil {
			if analysis.IsInsufficientData(err) {
				// warming up, more candles will arrive
				continue
			}
			logger.Error("[HUB] %s analyze %s: %v", s.Name(), upd.Symbol, err)
			continue
		}
		if sig == nil || sig.Action == models.ActionHold {
			continue
		}

		select {
		case h.signals <- *sig:
			logger.Info("[HUB] %s %s %s @ %.5f conf=%.2f", s.Name(), sig.Action, sig.Symbol, sig.Price, sig.Confidence)
		default:
			logger.Error("[HUB] signal channel full, dropping %s %s", sig.Action, sig.Symbol)
		}
	}
}
