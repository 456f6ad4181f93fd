package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"quant_bot/internal/modules/config"
	"quant_bot/internal/modules/executor"
	"quant_bot/internal/modules/health"
	"quant_bot/internal/modules/journal"
	"quant_bot/internal/modules/marketdata"
	"quant_bot/internal/modules/signalgate"
	"quant_bot/internal/modules/strategy"
	"quant_bot/internal/modules/telegram"
	"quant_bot/pkg/logger"
	"quant_bot/pkg/tracing"
)

func main() {
	if err := logger.Init("quant_bot"); err != nil {
		log.Fatalf("logger init: %v", err)
	}

	app := fx.New(
		config.Module(),
		marketdata.Module(),
		strategy.Module(),
		signalgate.Module(),
		executor.Module(),
		journal.Module(),
		telegram.Module(),
		health.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Tracing.Host == "" {
		return nil
	}

	tracing.SetServiceName(cfg.Service.Name)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
