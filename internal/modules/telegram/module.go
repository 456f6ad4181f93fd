package telegram

import (
	"context"

	"go.uber.org/fx"

	"quant_bot/internal/modules/config"
	executorservice "quant_bot/internal/modules/executor/service"
	"quant_bot/internal/modules/telegram/service"
	"quant_bot/pkg/logger"
)

func newNotifier(cfg *config.Config, engine *executorservice.Engine) service.Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[TG] no token configured, notifications go to stdout")
		return service.NewStdout()
	}
	tg, err := service.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, engine)
	if err != nil {
		logger.Error("[TG] bot init failed: %v, falling back to stdout", err)
		return service.NewStdout()
	}
	return tg
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(newNotifier),

		fx.Invoke(func(lc fx.Lifecycle, engine *executorservice.Engine, n service.Notifier) {
			engine.SetNotifier(n)

			tg, ok := n.(*service.Telegram)
			if !ok {
				return
			}
			loopCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					tg.Start(loopCtx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
