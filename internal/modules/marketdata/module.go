package marketdata

import (
	"context"

	"go.uber.org/fx"

	"quant_bot/internal/models"
	"quant_bot/internal/modules/config"
	"quant_bot/internal/modules/marketdata/service"
	"quant_bot/pkg/logger"
)

func newUpdatesChan() chan models.MarketUpdate {
	return make(chan models.MarketUpdate, 100000)
}

func asSendOnlyUpdates(ch chan models.MarketUpdate) chan<- models.MarketUpdate { return ch }
func asRecvOnlyUpdates(ch chan models.MarketUpdate) <-chan models.MarketUpdate { return ch }

func newTicksChan() chan models.PriceTick {
	return make(chan models.PriceTick, 100000)
}

func asSendOnlyTicks(ch chan models.PriceTick) chan<- models.PriceTick { return ch }
func asRecvOnlyTicks(ch chan models.PriceTick) <-chan models.PriceTick { return ch }

func newHistoryStore(cfg *config.Config) *service.HistoryStore {
	return service.NewHistoryStore(cfg.Market.HistoryLimit)
}

func newStreamer(cfg *config.Config, store *service.HistoryStore,
	updates chan<- models.MarketUpdate, ticks chan<- models.PriceTick) *service.Streamer {

	return service.NewStreamer(cfg.Market.WSBaseURL, cfg.Market.Symbols, cfg.Market.Interval, store, updates, ticks)
}

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			newUpdatesChan,
			asSendOnlyUpdates,
			asRecvOnlyUpdates,
			newTicksChan,
			asSendOnlyTicks,
			asRecvOnlyTicks,
			newHistoryStore,
			newStreamer,
		),

		fx.Invoke(func(lc fx.Lifecycle, streamer *service.Streamer) {
			loopCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						logger.Info("[MARKET] streamer started")
						streamer.Run(loopCtx)
						logger.Info("[MARKET] streamer stopped")
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
