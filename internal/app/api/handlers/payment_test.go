package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/internal/app/service/payment"
	types "github.com/fatflowers/paygate/pkg/types"
)

type stubPaymentMgr struct {
	makeErr error
	getErr  error
	got     *types.PaymentRequest
}

func (s *stubPaymentMgr) MakePayment(_ context.Context, req *types.PaymentRequest) (*types.PaymentAcceptedResponse, error) {
	s.got = req
	if s.makeErr != nil {
		return nil, s.makeErr
	}
	id := uuid.MustParse("6a0a8f3e-7c43-8d7a-9b1e-2f4c5d6e7f80")
	return &types.PaymentAcceptedResponse{PaymentID: id, Location: "/payments/" + id.String()}, nil
}

func (s *stubPaymentMgr) GetPayment(_ context.Context, id uuid.UUID) (*types.PaymentProcessedResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &types.PaymentProcessedResponse{
		PaymentID:                id,
		Status:                   types.TransactionStatusCompleted,
		SenderCardLastFourDigits: "8149",
		PaymentReference:         "abcdefghijklmnopqr",
	}, nil
}

func newPaymentRouter(mgr payment.PaymentManager) *gin.Engine {
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/payments"), mgr, zap.NewNop().Sugar())
	return r
}

func validPaymentBody() map[string]any {
	return map[string]any{
		"idempotencyId":         "0b6bd6c6-6b0e-4f50-9a3c-7a2d2c1d4a10",
		"merchantId":            "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		"cardNumber":            "4593 4460 1631 8149",
		"name":                  "Jane Doe",
		"cardExpiryDate":        "12/30",
		"cardVerificationValue": "123",
		"value":                 map[string]any{"amount": 1299, "currency": "EUR"},
	}
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiMakePayment_Accepted(t *testing.T) {
	mgr := &stubPaymentMgr{}
	w := postJSON(newPaymentRouter(mgr), "/payments", validPaymentBody())

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "/payments/6a0a8f3e-7c43-8d7a-9b1e-2f4c5d6e7f80", w.Header().Get("Location"))

	var res types.PaymentAcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "6a0a8f3e-7c43-8d7a-9b1e-2f4c5d6e7f80", res.PaymentID.String())
	require.Equal(t, uint64(1299), mgr.got.Value.Amount)
	require.Equal(t, "EUR", mgr.got.Value.Currency)
}

func TestApiMakePayment_Validation(t *testing.T) {
	cases := map[string]func(b map[string]any){
		"missing merchant": func(b map[string]any) { delete(b, "merchantId") },
		"bad uuid":         func(b map[string]any) { b["idempotencyId"] = "nope" },
		"bad card":         func(b map[string]any) { b["cardNumber"] = "4593 4460 1631 8148" },
		"bad currency":     func(b map[string]any) { b["value"] = map[string]any{"amount": 10, "currency": "EU"} },
		"zero amount":      func(b map[string]any) { b["value"] = map[string]any{"amount": 0, "currency": "EUR"} },
		"bad expiry":       func(b map[string]any) { b["cardExpiryDate"] = "2030-12" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			mgr := &stubPaymentMgr{}
			body := validPaymentBody()
			mutate(body)
			w := postJSON(newPaymentRouter(mgr), "/payments", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, w.Body.String(), `"code":40000`)
			require.Nil(t, mgr.got)
		})
	}
}

func TestApiMakePayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: x", payment.ErrMerchantNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", payment.ErrInvariantViolation), http.StatusInternalServerError},
		{context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := postJSON(newPaymentRouter(&stubPaymentMgr{makeErr: tc.err}), "/payments", validPaymentBody())
		require.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestApiGetPayment(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"settled", "/payments/" + id.String(), nil, http.StatusOK},
		{"not a uuid", "/payments/abc", nil, http.StatusNotFound},
		{"unknown", "/payments/" + id.String(), payment.ErrPaymentNotFound, http.StatusNotFound},
		{"upstream", "/payments/" + id.String(), fmt.Errorf("%w: bank down", payment.ErrUpstreamFailure), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newPaymentRouter(&stubPaymentMgr{getErr: tc.err})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				var res types.PaymentProcessedResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				require.Equal(t, id, res.PaymentID)
				require.Equal(t, "8149", res.SenderCardLastFourDigits)
				require.Contains(t, w.Body.String(), `"status":"Completed"`)
			}
		})
	}
}

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	r := newPaymentRouter(nil)
	routes := map[string]bool{}
	for _, rt := range r.Routes() {
		routes[rt.Method+" "+rt.Path] = true
	}
	require.True(t, routes["POST /payments"])
	require.True(t, routes["GET /payments/:id"])
}
