package executor

import (
	"context"
	"time"

	"go.uber.org/fx"

	"quant_bot/internal/exchange"
	"quant_bot/internal/models"
	"quant_bot/internal/modules/config"
	"quant_bot/internal/modules/executor/service"
	healthservice "quant_bot/internal/modules/health/service"
	gateservice "quant_bot/internal/modules/signalgate/service"
	"quant_bot/pkg/logger"
)

func newExchangeClient(cfg *config.Config) exchange.ExchangeClient {
	if cfg.Exchange.Paper {
		logger.Info("[EXEC] paper trading mode")
		return exchange.NewPaperClient(nil)
	}
	return exchange.NewBinanceClient(cfg.Exchange.RESTBaseURL, cfg.Exchange.APIKey, cfg.Exchange.APISecret)
}

func newEngine(cfg *config.Config, client exchange.ExchangeClient) *service.Engine {
	return service.NewEngine(client, cfg.Risk, cfg.Exchange.QuoteAsset)
}

func Module() fx.Option {
	return fx.Module("executor",
		fx.Provide(
			newExchangeClient,
			newEngine,
		),

		fx.Invoke(func(lc fx.Lifecycle, engine *service.Engine, gate *gateservice.Gate,
			state *healthservice.State, signals <-chan models.TradingSignal, ticks <-chan models.PriceTick) {

			loopCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						logger.Info("[EXEC] signal loop started")
						for {
							select {
							case <-loopCtx.Done():
								return
							case sig, ok := <-signals:
								if !ok {
									return
								}
								if !gate.Accept(sig) {
									continue
								}
								state.TouchSignal(time.Now())
								if err := engine.HandleSignal(loopCtx, sig); err != nil && !service.IsRiskRejected(err) {
									logger.Error("[EXEC] %v", err)
								}
							}
						}
					}()

					go func() {
						for {
							select {
							case <-loopCtx.Done():
								return
							case tick, ok := <-ticks:
								if !ok {
									return
								}
								engine.OnTick(tick)
							}
						}
					}()

					go func() {
						t := time.NewTicker(time.Second)
						defer t.Stop()
						for {
							select {
							case <-loopCtx.Done():
								return
							case <-t.C:
								engine.CheckPositions(loopCtx)
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
