package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/docs"
	"github.com/fatflowers/paygate/internal/app/api/handlers"
	mw "github.com/fatflowers/paygate/internal/app/api/middleware"
	"github.com/fatflowers/paygate/internal/app/service/ledger"
	"github.com/fatflowers/paygate/internal/app/service/payment"
	cfgpkg "github.com/fatflowers/paygate/pkg/config"
	metrics "github.com/fatflowers/paygate/pkg/metrics"
	"github.com/fatflowers/paygate/pkg/validation"
)

const (
	gatewaySubsystem = "gateway"
	bankSubsystem    = "bank"
	shutdownTimeout  = 30 * time.Second
)

func newEngine() (*gin.Engine, error) {
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group
	r.Use(mw.TraceMiddleware())
	return r, nil
}

func registerGatewayRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, mgr payment.PaymentManager) {
	p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Subsystem: gatewaySubsystem, Logger: log})
	p.Use(r, cfg.MetricsAddr == "")

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	payments := r.Group("/payments")
	payments.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPaymentRoutes(payments, mgr, log)
}

func registerBankRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, l *ledger.Ledger) {
	p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Subsystem: bankSubsystem, Logger: log})
	p.Use(r, cfg.BankSimulator.MetricsAddr == "")

	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfobank.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfobank.InstanceName())))

	transactions := r.Group("/transactions")
	transactions.Use(
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.ApiKeyMiddleware(cfg.BankSimulator.ApiKeys),
	)
	handlers.RegisterTransactionRoutes(transactions, l, log)
}

func newMetricsEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(metrics.DefaultMetricsPath, metrics.Handler())
	return r
}

// runServer binds addr on start so port conflicts fail the fx start, then
// serves until the stop hook shuts the server down.
func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, name, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	log = log.With("server", name, "addr", addr)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen for %s on %s: %w", name, addr, err)
			}
			log.Infow("starting HTTP server")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func runGateway(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	runServer(lc, log, gatewaySubsystem, cfg.Server.Addr(), r)
	if cfg.MetricsAddr != "" {
		runServer(lc, log, gatewaySubsystem+"-metrics", cfg.MetricsAddr, newMetricsEngine())
	}
}

func runBank(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	runServer(lc, log, bankSubsystem, cfg.BankSimulator.Server.Addr(), r)
	if cfg.BankSimulator.MetricsAddr != "" {
		runServer(lc, log, bankSubsystem+"-metrics", cfg.BankSimulator.MetricsAddr, newMetricsEngine())
	}
}

var GatewayModule = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerGatewayRoutes),
	fx.Invoke(runGateway),
)

var BankModule = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerBankRoutes),
	fx.Invoke(runBank),
)
