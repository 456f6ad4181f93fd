package service

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	executorservice "quant_bot/internal/modules/executor/service"
	"quant_bot/pkg/logger"
)

// Notifier is the ops channel for trade and lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, format string, args ...any)
}

// Telegram pushes events to one chat and answers /status and /pnl
// with the engine's current state.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	engine *executorservice.Engine
}

func NewTelegram(token string, chatID int64, engine *executorservice.Engine) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, engine: engine}, nil
}

func (t *Telegram) Notify(_ context.Context, format string, args ...any) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, fmt.Sprintf(format, args...)))
}

func (t *Telegram) handleStatus() {
	positions := t.engine.OpenPositions()
	if len(positions) == 0 {
		t.Notify(context.Background(), "no open positions")
		return
	}

	var b strings.Builder
	b.WriteString("open positions:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- %s %s qty=%.5f entry=%.5f now=%.5f upnl=%.5f\n",
			p.Symbol, p.Side, p.Quantity, p.EntryPrice, p.CurrentPrice, p.UnrealizedPnL)
	}
	t.Notify(context.Background(), "%s", b.String())
}

func (t *Telegram) handlePnL() {
	t.Notify(context.Background(), "daily pnl: %.5f, trades today: %d",
		t.engine.DailyPnL(), t.engine.TradeCount())
}

// Start long-polls for commands until ctx is canceled.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "status":
					t.handleStatus()
				case "pnl":
					t.handlePnL()
				}
			}
		}
	}()
}

// Stdout is the fallback when no bot token is configured.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Notify(_ context.Context, format string, args ...any) {
	logger.Info("[NOTIFY] "+format, args...)
}
