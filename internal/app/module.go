package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/paygate/internal/app/api/server"
	"github.com/fatflowers/paygate/internal/app/service/eventstore"
	"github.com/fatflowers/paygate/internal/app/service/ledger"
	"github.com/fatflowers/paygate/internal/app/service/merchant"
	"github.com/fatflowers/paygate/internal/app/service/payment"
	"github.com/fatflowers/paygate/internal/platform/acquiring_bank"
	"github.com/fatflowers/paygate/internal/platform/db"
	"github.com/fatflowers/paygate/pkg/config"
	"github.com/fatflowers/paygate/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second

	// stopMargin covers the HTTP shutdown and DB close around a drain.
	stopMargin = 5 * time.Second
)

// StopTimeout bounds app.Stop so a drain can outlast the longest settlement
// the configuration allows. It is never below DefaultStopTimeout.
func StopTimeout(cfg *config.Config) time.Duration {
	d := DefaultStopTimeout
	if cfg == nil {
		return d
	}
	if s := cfg.Payment.SettlementTimeout + stopMargin; s > d {
		d = s
	}
	if s := cfg.BankSimulator.MaxDelay + stopMargin; s > d {
		d = s
	}
	return d
}

// GatewayModule wires the payment gateway. Hooks stop in reverse order, so
// the HTTP server shuts down before settlements drain and the database closes.
var GatewayModule = fx.Options(
	logger.Module,
	config.Module,
	fx.Invoke(func(cfg *config.Config) error { return cfg.ValidateGateway() }),
	db.Module,
	eventstore.Module,
	merchant.Module,
	acquiring_bank.Module,
	payment.Module,
	server.GatewayModule,
)

// BankModule wires the acquiring bank simulator.
var BankModule = fx.Options(
	logger.Module,
	config.Module,
	fx.Invoke(func(cfg *config.Config) error { return cfg.ValidateBank() }),
	ledger.Module,
	server.BankModule,
)
