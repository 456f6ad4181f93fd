package service

import (
	"testing"
	"time"

	"quant_bot/internal/models"
)

func gateAt(window time.Duration) (*Gate, *time.Time) {
	g := NewGate(window)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	return g, &now
}

func sig(symbol string, action models.TradeAction) models.TradingSignal {
	return models.TradingSignal{Symbol: symbol, Action: action, Price: 100, Confidence: 0.8}
}

func TestGateForwardsAndArmsCooldown(t *testing.T) {
	g, now := gateAt(300 * time.Second)

	if !g.Accept(sig("BTCUSDT", models.ActionBuy)) {
		t.Fatal("idle buy must pass")
	}
	want := now.Add(300 * time.Second)
	if got := g.CooldownUntil("BTCUSDT"); !got.Equal(want) {
		t.Fatalf("cooldown until: got %v, want %v", got, want)
	}
}

func TestGateDropsHoldDuringCooldown(t *testing.T) {
	g, _ := gateAt(300 * time.Second)

	g.Accept(sig("BTCUSDT", models.ActionBuy))
	if g.Accept(sig("BTCUSDT", models.ActionHold)) {
		t.Fatal("hold during cooldown must be dropped")
	}
}

func TestGateNeverSuppressesReversal(t *testing.T) {
	g, _ := gateAt(300 * time.Second)

	g.Accept(sig("BTCUSDT", models.ActionBuy))
	if !g.Accept(sig("BTCUSDT", models.ActionSell)) {
		t.Fatal("sell during cooldown must pass")
	}
}

func TestGateHoldPassesWhenIdle(t *testing.T) {
	g, _ := gateAt(300 * time.Second)

	if !g.Accept(sig("BTCUSDT", models.ActionHold)) {
		t.Fatal("hold with no cooldown armed must pass")
	}
	if !g.CooldownUntil("BTCUSDT").IsZero() {
		t.Fatal("hold must not arm a cooldown")
	}
}

func TestGateCooldownExpires(t *testing.T) {
	g, now := gateAt(300 * time.Second)

	g.Accept(sig("BTCUSDT", models.ActionBuy))
	*now = now.Add(301 * time.Second)
	if !g.Accept(sig("BTCUSDT", models.ActionHold)) {
		t.Fatal("hold after cooldown expiry must pass")
	}
}

func TestGateIsPerSymbol(t *testing.T) {
	g, _ := gateAt(300 * time.Second)

	g.Accept(sig("BTCUSDT", models.ActionBuy))
	if g.Accept(sig("BTCUSDT", models.ActionHold)) {
		t.Fatal("BTCUSDT hold must be dropped")
	}
	if !g.Accept(sig("ETHUSDT", models.ActionHold)) {
		t.Fatal("ETHUSDT must be unaffected by BTCUSDT cooldown")
	}
}
