package service

import (
	"sync"
	"time"

	"quant_bot/internal/models"
)

// Gate throttles the signal stream per symbol. A non-Hold signal always
// passes and arms a cooldown window; while the window is open only Hold
// signals are dropped, so a genuine reversal is never suppressed.
type Gate struct {
	mu     sync.Mutex
	window time.Duration
	until  map[string]time.Time

	now func() time.Time // injectable for tests
}

func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = 300 * time.Second
	}
	return &Gate{
		window: window,
		until:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// Accept reports whether the signal should be forwarded downstream.
func (g *Gate) Accept(sig models.TradingSignal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	inCooldown := now.Before(g.until[sig.Symbol])

	if inCooldown && sig.Action == models.ActionHold {
		return false
	}
	if sig.Action != models.ActionHold {
		g.until[sig.Symbol] = now.Add(g.window)
	}
	return true
}

// CooldownUntil exposes the current window end for a symbol, zero when
// idle.
func (g *Gate) CooldownUntil(symbol string) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.until[symbol]
}
