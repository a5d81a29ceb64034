package payment

import (
	"context"

	"go.uber.org/fx"
)

func registerDrain(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Drain(ctx)
		},
	})
}

// Module exposes the payment orchestrator via Fx.
var Module = fx.Options(
	fx.Provide(
		NewService,
		func(s *Service) PaymentManager { return s },
	),
	fx.Invoke(registerDrain),
)
