package strategy

import (
	"context"

	"go.uber.org/fx"

	"quant_bot/internal/models"
	"quant_bot/internal/modules/config"
	"quant_bot/internal/modules/strategy/service"
	"quant_bot/pkg/logger"
)

func newSignalsChan() chan models.TradingSignal {
	return make(chan models.TradingSignal, 4096)
}

func asSendOnlySignals(ch chan models.TradingSignal) chan<- models.TradingSignal { return ch }
func asRecvOnlySignals(ch chan models.TradingSignal) <-chan models.TradingSignal { return ch }

func newStrategies(cfg *config.Config) ([]service.Strategy, error) {
	return service.BuildAll(cfg.Strategies)
}

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			newSignalsChan,
			asSendOnlySignals,
			asRecvOnlySignals,
			newStrategies,
			service.NewHub,
		),

		fx.Invoke(func(lc fx.Lifecycle, hub *service.Hub, updates <-chan models.MarketUpdate) {
			loopCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						logger.Info("[STRAT] hub loop started")
						for {
							select {
							case <-loopCtx.Done():
								logger.Info("[STRAT] hub loop stopped")
								return
							case upd, ok := <-updates:
								if !ok {
									logger.Info("[STRAT] market updates channel closed")
									return
								}
								hub.OnUpdate(loopCtx, upd)
							}
						}
					}()
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
