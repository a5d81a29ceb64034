package acquiring_bank

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/pkg/config"
)

func NewFromConfig(cfg *config.Config, log *zap.SugaredLogger) (Client, error) {
	b := cfg.AcquiringBank
	return New(Options{
		BaseURL:      b.BaseURL,
		ApiKey:       b.ApiKey,
		Timeout:      b.Timeout,
		PollInterval: b.PollInterval,
		PollAttempts: b.PollAttempts,
	}, log.Named("acquiring_bank"))
}

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
