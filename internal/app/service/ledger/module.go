package ledger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/pkg/config"
)

func NewFromConfig(cfg *config.Config, log *zap.SugaredLogger) *Ledger {
	b := cfg.BankSimulator
	return New(Options{
		MinDelay:   b.MinDelay,
		MaxDelay:   b.MaxDelay,
		RejectRate: b.RejectRate,
	}, log.Named("ledger"))
}

func registerDrain(lc fx.Lifecycle, l *Ledger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return l.Wait(ctx)
		},
	})
}

// Module exposes the simulated bank ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Invoke(registerDrain),
)
