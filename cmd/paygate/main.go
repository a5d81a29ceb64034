package main

// @title           Payment Gateway API
// @version         1.0
// @description     Accepts card payments from merchants and settles them with the acquiring bank exactly once per idempotency key.

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/internal/app"
	"github.com/fatflowers/paygate/pkg/config"
)

var Version = "dev"

func main() {
	var configFile string
	rootCmd := &cobra.Command{
		Use:     "paygate",
		Short:   "Payment gateway and acquiring bank simulator",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("APP_CONFIG_FILE", configFile)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (overrides APP_CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd("gateway", "Run the payment gateway", app.GatewayModule))
	rootCmd.AddCommand(serveCmd("bank", "Run the acquiring bank simulator", app.BankModule))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(use, short string, module fx.Option) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(module)
		},
	}
}

// run starts the fx app and blocks until SIGINT/SIGTERM, which fx handles.
func run(module fx.Option) error {
	var cfg *config.Config
	a := fx.New(module, fx.Populate(&cfg))
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		// Logging might not be ready; fallback to zap example
		zap.NewExample().Sugar().Errorf("failed to start app: %v", err)
		return err
	}

	<-a.Done()

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.StopTimeout(cfg))
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to stop app: %v", err)
		return err
	}
	return nil
}
