package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fatflowers/paygate/internal/app/service/eventstore"
	"github.com/fatflowers/paygate/internal/app/service/ledger"
	"github.com/fatflowers/paygate/internal/app/service/merchant"
	"github.com/fatflowers/paygate/internal/app/service/payment"
	"github.com/fatflowers/paygate/internal/platform/acquiring_bank"
	"github.com/fatflowers/paygate/internal/platform/db"
	"github.com/fatflowers/paygate/pkg/config"
	types "github.com/fatflowers/paygate/pkg/types"
)

type stack struct {
	gateway *httptest.Server
	bank    *httptest.Server
	ledger  *ledger.Ledger
	svc     *payment.Service
}

func newStack(t *testing.T, cfg *config.Config) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()

	l := ledger.New(ledger.Options{
		MinDelay:   cfg.BankSimulator.MinDelay,
		MaxDelay:   cfg.BankSimulator.MaxDelay,
		RejectRate: cfg.BankSimulator.RejectRate,
	}, log)
	bankEngine, err := newEngine()
	require.NoError(t, err)
	registerBankRoutes(bankEngine, log, cfg, l)
	bankSrv := httptest.NewServer(bankEngine)
	t.Cleanup(bankSrv.Close)

	cfg.AcquiringBank.BaseURL = bankSrv.URL
	client, err := acquiring_bank.New(acquiring_bank.Options{
		BaseURL:      bankSrv.URL,
		ApiKey:       cfg.AcquiringBank.ApiKey,
		Timeout:      time.Second,
		PollInterval: cfg.AcquiringBank.PollInterval,
		PollAttempts: cfg.AcquiringBank.PollAttempts,
	}, log)
	require.NoError(t, err)

	gdb, err := db.OpenMemory(t, log)
	require.NoError(t, err)
	merchants := merchant.NewService(gdb, log)
	require.NoError(t, merchants.Seed(context.Background(), cfg.Merchants))
	svc := payment.NewService(cfg, log, merchants, eventstore.New(gdb, log), client)

	gwEngine, err := newEngine()
	require.NoError(t, err)
	registerGatewayRoutes(gwEngine, log, cfg, svc)
	gwSrv := httptest.NewServer(gwEngine)
	t.Cleanup(gwSrv.Close)

	return &stack{gateway: gwSrv, bank: bankSrv, ledger: l, svc: svc}
}

func testConfig() *config.Config {
	return &config.Config{
		Env:      config.EnvDev,
		Identity: config.IdentityConfig{Secret: "e2e"},
		Payment: config.PaymentConfig{
			SettlementTimeout: 5 * time.Second,
			TaskRetention:     time.Minute,
		},
		AcquiringBank: config.AcquiringBankConfig{
			ApiKey:       config.DefaultBankSimulatorKey,
			PollInterval: 5 * time.Millisecond,
			PollAttempts: 10,
		},
		BankSimulator: config.BankSimulatorConfig{
			ApiKeys:  []string{config.DefaultBankSimulatorKey},
			MinDelay: 5 * time.Millisecond,
			MaxDelay: 15 * time.Millisecond,
		},
		Merchants: []*config.MerchantConfig{{
			ID:                 config.DemoMerchantID,
			BankAccountNumber:  config.DemoMerchantAccount,
			BankIdentifierCode: config.DemoMerchantBIC,
		}},
	}
}

func paymentBody() []byte {
	b, _ := json.Marshal(map[string]any{
		"idempotencyId":         "0b6bd6c6-6b0e-4f50-9a3c-7a2d2c1d4a10",
		"merchantId":            config.DemoMerchantID,
		"cardNumber":            "4593 4460 1631 8149",
		"name":                  "Jane Doe",
		"cardExpiryDate":        "12/30",
		"cardVerificationValue": "123",
		"value":                 map[string]any{"amount": 1299, "currency": "EUR"},
	})
	return b
}

func TestEndToEnd_DuplicateSubmissionsSettleOnce(t *testing.T) {
	s := newStack(t, testConfig())

	const callers = 4
	accepted := make([]types.PaymentAcceptedResponse, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			resp, err := http.Post(s.gateway.URL+"/payments", "application/json", bytes.NewReader(paymentBody()))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("status %d", resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&accepted[i])
		})
	}
	require.NoError(t, g.Wait())
	for _, a := range accepted {
		require.Equal(t, accepted[0].PaymentID, a.PaymentID)
	}

	resp, err := http.Get(s.gateway.URL + accepted[0].Location)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(types.HeaderRequestID))

	var processed types.PaymentProcessedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&processed))
	require.Equal(t, accepted[0].PaymentID, processed.PaymentID)
	require.Equal(t, types.TransactionStatusCompleted, processed.Status)
	require.Equal(t, "8149", processed.SenderCardLastFourDigits)
	require.Len(t, processed.PaymentReference, 18)

	// the bank bound exactly one transaction to the payment id
	rec, err := s.ledger.GetStatus(s.ledger.ResolveIdentity(processed.PaymentID.String()))
	require.NoError(t, err)
	require.Equal(t, types.TransactionStatusCompleted, rec.Status)

	// a later read is served from the store with the same outcome
	resp2, err := http.Get(s.gateway.URL + accepted[0].Location)
	require.NoError(t, err)
	defer resp2.Body.Close()
	var again types.PaymentProcessedResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&again))
	require.Equal(t, processed, again)
}

func TestEndToEnd_UnknownPayment(t *testing.T) {
	s := newStack(t, testConfig())
	resp, err := http.Get(s.gateway.URL + "/payments/6f1c2b7e-1111-4a2b-8c3d-4e5f60718293")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndToEnd_BankRejectsWrongKey(t *testing.T) {
	cfg := testConfig()
	cfg.AcquiringBank.ApiKey = "wrong"
	s := newStack(t, cfg)

	resp, err := http.Post(s.gateway.URL+"/payments", "application/json", bytes.NewReader(paymentBody()))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted types.PaymentAcceptedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	resp.Body.Close()

	resp, err = http.Get(s.gateway.URL + accepted.Location)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestEndToEnd_SwaggerAndHealth(t *testing.T) {
	s := newStack(t, testConfig())

	for _, base := range []string{s.gateway.URL, s.bank.URL} {
		resp, err := http.Get(base + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(base + "/swagger/doc.json")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(s.gateway.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
