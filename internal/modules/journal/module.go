package journal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"quant_bot/internal/modules/config"
	executorservice "quant_bot/internal/modules/executor/service"
	"quant_bot/internal/modules/journal/service"
	"quant_bot/pkg/db"
	"quant_bot/pkg/logger"
)

// Module wires the postgres trade journal when a DSN is configured and
// is a no-op otherwise.
func Module() fx.Option {
	return fx.Module("journal",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, engine *executorservice.Engine) {
			if cfg.Journal.DSN == "" {
				logger.Info("[JOURNAL] no dsn configured, journaling disabled")
				return
			}

			var mgr *db.PgTxManager
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.Journal.DSN})
					if err != nil {
						return errors.Wrap(err, "journal pool")
					}
					if err := pool.Ping(ctx); err != nil {
						return errors.Wrap(err, "journal ping")
					}
					mgr = db.NewPgTxManager(pool)

					j := service.NewJournal(mgr)
					if err := j.Init(ctx); err != nil {
						return errors.Wrap(err, "journal init")
					}
					engine.SetJournal(j)
					logger.Info("[JOURNAL] postgres journal enabled")
					return nil
				},
				OnStop: func(context.Context) error {
					if mgr != nil {
						mgr.Close()
					}
					return nil
				},
			})
		}),
	)
}
