package signalgate

import (
	"time"

	"go.uber.org/fx"

	"quant_bot/internal/modules/config"
	"quant_bot/internal/modules/signalgate/service"
)

func newGate(cfg *config.Config) *service.Gate {
	return service.NewGate(time.Duration(cfg.Gate.CooldownSeconds) * time.Second)
}

func Module() fx.Option {
	return fx.Module("signalgate",
		fx.Provide(newGate),
	)
}
