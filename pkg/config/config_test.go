package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func loadFrom(t *testing.T, yaml string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_CONFIG_FILE", path)
	c, err := New()
	require.NoError(t, err)
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := loadFrom(t, "env: dev\n")

	require.Equal(t, EnvDev, c.Env)
	require.Equal(t, "0.0.0.0:8888", c.Server.Addr())
	require.Equal(t, DBDriverPostgres, c.Database.Driver)
	require.Equal(t, 60*time.Second, c.Payment.SettlementTimeout)
	require.Equal(t, 5*time.Minute, c.Payment.TaskRetention)
	require.Equal(t, time.Second, c.AcquiringBank.PollInterval)
	require.Equal(t, 10, c.AcquiringBank.PollAttempts)
	require.Equal(t, "0.0.0.0:8889", c.BankSimulator.Server.Addr())
	require.Equal(t, []string{DefaultBankSimulatorKey}, c.BankSimulator.ApiKeys)
	require.InDelta(t, 0.2, c.BankSimulator.RejectRate, 1e-9)
	require.Len(t, c.Merchants, 1)
	require.Equal(t, DemoMerchantID, c.Merchants[0].ID)
	require.Equal(t, DemoMerchantAccount, c.Merchants[0].BankAccountNumber)

	require.NoError(t, c.ValidateGateway())
	require.NoError(t, c.ValidateBank())
}

func TestNew_FileAndEnvOverrides(t *testing.T) {
	t.Setenv("APP_ACQUIRING_BANK_POLL_ATTEMPTS", "3")
	c := loadFrom(t, `
database:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
payment:
  settlement_timeout: 5s
bank_simulator:
  port: 9999
  min_delay: 10ms
  max_delay: 20ms
`)

	require.Equal(t, DBDriverSQLite, c.Database.Driver)
	require.Equal(t, 5*time.Second, c.Payment.SettlementTimeout)
	require.Equal(t, 3, c.AcquiringBank.PollAttempts)
	require.Equal(t, 9999, c.BankSimulator.Server.Port)
	require.Equal(t, 10*time.Millisecond, c.BankSimulator.MinDelay)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := New()
	require.Error(t, err)
}

func TestValidateGateway_CollectsAllErrors(t *testing.T) {
	c := &Config{
		Env:      EnvProd,
		Database: DBConfig{Driver: "mysql"},
		Merchants: []*MerchantConfig{
			{ID: "not-a-uuid"},
		},
	}

	err := c.ValidateGateway()
	require.Error(t, err)
	// secret, driver, dsn, base_url, poll_interval, poll_attempts,
	// settlement_timeout, task_retention, merchant id, merchant bank details
	require.Len(t, multierr.Errors(err), 10)
}

func TestValidateBank(t *testing.T) {
	c := &Config{BankSimulator: BankSimulatorConfig{
		ApiKeys:    nil,
		MinDelay:   2 * time.Second,
		MaxDelay:   time.Second,
		RejectRate: 1.5,
	}}
	require.Len(t, multierr.Errors(c.ValidateBank()), 3)
}

func TestIdentitySecret(t *testing.T) {
	require.NotEmpty(t, (&Config{}).IdentitySecret())
	require.Equal(t, []byte("s3cret"), (&Config{Identity: IdentityConfig{Secret: "s3cret"}}).IdentitySecret())
}
