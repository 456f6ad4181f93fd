package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"quant_bot/internal/exchange"
	"quant_bot/internal/models"
	"quant_bot/pkg/logger"
)

// TradeJournal receives ledger rows as positions open and close.
type TradeJournal interface {
	RecordOpen(ctx context.Context, trade models.Trade)
	RecordClose(ctx context.Context, trade models.Trade)
}

// Notifier pushes operational events to the ops channel.
type Notifier interface {
	Notify(ctx context.Context, format string, args ...any)
}

// Engine owns all execution state: the position map, the trade ledger
// and the daily risk counters. Every mutation goes through its mutex;
// callers never see the raw maps.
//
// Opening a position reserves the symbol in pending before the order
// round-trip so two racing signals cannot both take the last slot.
// Closing marks the symbol in closing so monitor ticks cannot submit a
// second close while one is in flight.
type Engine struct {
	mu sync.Mutex

	client     exchange.ExchangeClient
	risk       models.RiskParameters
	quoteAsset string

	positions map[string]*models.Position
	trades    []models.Trade
	pending   map[string]struct{}
	closing   map[string]struct{}

	dailyPnL   float64
	tradeCount int
	day        string // UTC date of the counters, reset lazily

	journal  TradeJournal
	notifier Notifier

	now func() time.Time
}

func NewEngine(client exchange.ExchangeClient, risk models.RiskParameters, quoteAsset string) *Engine {
	if quoteAsset == "" {
		quoteAsset = "USDT"
	}
	return &Engine{
		client:     client,
		risk:       risk,
		quoteAsset: quoteAsset,
		positions:  make(map[string]*models.Position),
		pending:    make(map[string]struct{}),
		closing:    make(map[string]struct{}),
		now:        time.Now,
	}
}

// SetJournal and SetNotifier attach the optional sinks. They may be
// called after the signal loops have started, so the fields live under
// the mutex like the rest of the engine state.
func (e *Engine) SetJournal(j TradeJournal) {
	e.mu.Lock()
	e.journal = j
	e.mu.Unlock()
}

func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

// SetRiskParameters swaps the limits for future decisions; open
// positions keep their derived stop levels.
func (e *Engine) SetRiskParameters(risk models.RiskParameters) error {
	if err := risk.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.risk = risk
	e.mu.Unlock()
	return nil
}

// resetDayLocked rolls the daily counters on a UTC date change. Caller
// holds the mutex.
func (e *Engine) resetDayLocked() {
	day := e.now().UTC().Format("2006-01-02")
	if day != e.day {
		e.day = day
		e.dailyPnL = 0
		e.tradeCount = 0
	}
}

// HandleSignal runs one gate-accepted signal through the risk checks
// and, when they pass, submits the order. Hold signals are ignored.
func (e *Engine) HandleSignal(ctx context.Context, sig models.TradingSignal) error {
	if sig.Action == models.ActionHold {
		return nil
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "engine.handle_signal")
	span.SetTag("symbol", sig.Symbol)
	span.SetTag("action", string(sig.Action))
	span.SetTag("strategy", sig.Strategy)
	defer span.Finish()

	side := models.SideBuy
	if sig.Action == models.ActionSell {
		side = models.SideSell
	}

	e.mu.Lock()
	e.resetDayLocked()

	if pos, open := e.positions[sig.Symbol]; open {
		if pos.Side == side {
			// redundant same-direction signal
			e.mu.Unlock()
			return nil
		}
		if _, busy := e.closing[sig.Symbol]; busy {
			e.mu.Unlock()
			return nil
		}
		e.closing[sig.Symbol] = struct{}{}
		e.mu.Unlock()
		return e.submitClose(ctx, sig.Symbol, "reversal signal")
	}

	if _, busy := e.pending[sig.Symbol]; busy {
		e.mu.Unlock()
		return nil
	}
	if err := e.riskCheckLocked(); err != nil {
		risk := e.risk
		e.mu.Unlock()
		logger.Info("[EXEC] %s %s rejected: %v (limits: pos=%d trades=%d loss=%.2f)",
			sig.Action, sig.Symbol, err, risk.MaxOpenPositions, risk.MaxTradesPerDay, risk.MaxDailyLoss)
		return err
	}
	// reserve the slot before the order round-trip
	e.pending[sig.Symbol] = struct{}{}
	risk := e.risk
	e.mu.Unlock()

	return e.submitOpen(ctx, sig, side, risk)
}

// riskCheckLocked evaluates the global limits against the current
// snapshot. Caller holds the mutex.
func (e *Engine) riskCheckLocked() error {
	if len(e.positions)+len(e.pending) >= e.risk.MaxOpenPositions {
		return RiskRejectedError{Reason: "max open positions reached"}
	}
	// pending opens count against the trade budget too: the counter is
	// only incremented on fill, so an in-flight open holds its slot here
	if e.tradeCount+len(e.pending) >= e.risk.MaxTradesPerDay {
		return RiskRejectedError{Reason: "max trades per day reached"}
	}
	if e.dailyPnL <= -e.risk.MaxDailyLoss {
		return RiskRejectedError{Reason: "daily loss limit reached"}
	}
	return nil
}

func (e *Engine) submitOpen(ctx context.Context, sig models.TradingSignal, side models.OrderSide, risk models.RiskParameters) error {
	release := func() {
		e.mu.Lock()
		delete(e.pending, sig.Symbol)
		e.mu.Unlock()
	}

	freeQuote := risk.MaxOrderSize / 2
	if bal, err := e.client.Balance(ctx, e.quoteAsset); err != nil {
		logger.Error("[EXEC] balance %s: %v, sizing conservatively", e.quoteAsset, err)
	} else {
		freeQuote = bal.Free
	}

	qty := orderQuantity(risk.MaxOrderSize, sig.Confidence, freeQuote, sig.Price)
	if qty <= 0 {
		release()
		return RiskRejectedError{Reason: "order quantity rounds to zero"}
	}

	resp, err := e.client.PlaceOrder(ctx, models.Order{
		Symbol:    sig.Symbol,
		Side:      side,
		Type:      models.OrderMarket,
		Quantity:  qty,
		Price:     sig.Price,
		Timestamp: e.now().UTC(),
	})
	if err != nil {
		release()
		return errors.Wrapf(ErrExecutionFailed, "open %s %s: %v", side, sig.Symbol, err)
	}
	if !resp.Status.Actionable() {
		release()
		return errors.Wrapf(ErrExecutionFailed, "open %s %s: status %s", side, sig.Symbol, resp.Status)
	}

	entry := resp.AveragePrice
	if entry <= 0 {
		entry = sig.Price
	}
	filled := resp.FilledQty
	if filled <= 0 {
		filled = qty
	}

	pos := models.NewPosition(sig.Symbol, side, filled, entry, e.now().UTC())
	if side == models.SideBuy {
		pos.StopLoss = entry * (1 - risk.StopLossPercent/100)
		pos.TakeProfit = entry * (1 + risk.TakeProfitPercent/100)
	} else {
		pos.StopLoss = entry * (1 + risk.StopLossPercent/100)
		pos.TakeProfit = entry * (1 - risk.TakeProfitPercent/100)
	}

	trade := models.Trade{
		ID:           uuid.NewString(),
		Symbol:       sig.Symbol,
		Side:         side,
		Quantity:     filled,
		Price:        entry,
		Timestamp:    e.now().UTC(),
		EntryOrderID: resp.OrderID,
	}

	e.mu.Lock()
	delete(e.pending, sig.Symbol)
	e.positions[sig.Symbol] = pos
	e.trades = append(e.trades, trade)
	e.tradeCount++
	journal, notifier := e.journal, e.notifier
	e.mu.Unlock()

	logger.Info("[EXEC] opened %s %s qty=%.5f entry=%.5f sl=%.5f tp=%.5f",
		side, sig.Symbol, filled, entry, pos.StopLoss, pos.TakeProfit)
	if journal != nil {
		journal.RecordOpen(ctx, trade)
	}
	if notifier != nil {
		notifier.Notify(ctx, "opened %s %s qty=%.5f @ %.5f", side, sig.Symbol, filled, entry)
	}
	return nil
}

// submitClose sends the market order that flattens the symbol's
// position. Caller has already marked the symbol in closing.
func (e *Engine) submitClose(ctx context.Context, symbol, reason string) error {
	release := func() {
		e.mu.Lock()
		delete(e.closing, symbol)
		e.mu.Unlock()
	}

	e.mu.Lock()
	pos, ok := e.positions[symbol]
	if !ok {
		e.mu.Unlock()
		release()
		return nil
	}
	side := pos.Side.Opposite()
	qty := pos.Quantity
	refPrice := pos.CurrentPrice
	e.mu.Unlock()

	resp, err := e.client.PlaceOrder(ctx, models.Order{
		Symbol:    symbol,
		Side:      side,
		Type:      models.OrderMarket,
		Quantity:  qty,
		Price:     refPrice,
		Timestamp: e.now().UTC(),
	})
	if err != nil {
		release()
		return errors.Wrapf(ErrExecutionFailed, "close %s: %v", symbol, err)
	}
	if !resp.Status.Actionable() {
		release()
		return errors.Wrapf(ErrExecutionFailed, "close %s: status %s", symbol, resp.Status)
	}

	exit := resp.AveragePrice
	if exit <= 0 {
		exit = refPrice
	}

	e.mu.Lock()
	pos, ok = e.positions[symbol]
	if !ok {
		e.mu.Unlock()
		release()
		return nil
	}
	delete(e.positions, symbol)
	delete(e.closing, symbol)

	// roll the counters first so a close landing after UTC midnight
	// books into the new day instead of being wiped by the next reset
	e.resetDayLocked()

	realized := (exit - pos.EntryPrice) * pos.Quantity
	if pos.Side == models.SideSell {
		realized = -realized
	}
	e.dailyPnL += realized

	var closed models.Trade
	for i := len(e.trades) - 1; i >= 0; i-- {
		if e.trades[i].Symbol == symbol && !e.trades[i].Closed {
			e.trades[i].ExitOrderID = resp.OrderID
			e.trades[i].ExitPrice = exit
			e.trades[i].RealizedPnL = realized
			e.trades[i].Closed = true
			closed = e.trades[i]
			break
		}
	}
	journal, notifier := e.journal, e.notifier
	e.mu.Unlock()

	logger.Info("[EXEC] closed %s (%s) exit=%.5f pnl=%.5f", symbol, reason, exit, realized)
	if journal != nil && closed.ID != "" {
		journal.RecordClose(ctx, closed)
	}
	if notifier != nil {
		notifier.Notify(ctx, "closed %s (%s) pnl=%.5f", symbol, reason, realized)
	}
	return nil
}

// OnTick marks any open position in the symbol to the latest price.
// This never transitions position state.
func (e *Engine) OnTick(tick models.PriceTick) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos, ok := e.positions[tick.Symbol]; ok {
		pos.ApplyPrice(tick.Price, tick.Timestamp)
	}
}

// CheckPositions scans for stop-loss/take-profit hits and submits the
// closes, one goroutine per submission so a slow exchange round-trip
// never stalls the monitor.
func (e *Engine) CheckPositions(ctx context.Context) {
	e.mu.Lock()
	var due []string
	for symbol, pos := range e.positions {
		if _, busy := e.closing[symbol]; busy {
			continue
		}
		if pos.ShouldClose() {
			e.closing[symbol] = struct{}{}
			due = append(due, symbol)
		}
	}
	e.mu.Unlock()

	for _, symbol := range due {
		go func(symbol string) {
			if err := e.submitClose(ctx, symbol, "stop level hit"); err != nil {
				logger.Error("[EXEC] %v", err)
			}
		}(symbol)
	}
}

// Position returns a copy of the open position for symbol, if any.
func (e *Engine) Position(symbol string) (models.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos, ok := e.positions[symbol]; ok {
		return *pos, true
	}
	return models.Position{}, false
}

func (e *Engine) OpenPositions() []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, *pos)
	}
	return out
}

func (e *Engine) Trades() []models.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

func (e *Engine) DailyPnL() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dailyPnL
}

func (e *Engine) TradeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tradeCount
}
