package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/types"
)

func TestTraceAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.New(core).Sugar()), AccessLogMiddleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logctx.TraceID(c.Request.Context())
		logctx.FromCtx(c.Request.Context(), zap.NewNop().Sugar()).Infow("handled")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(types.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "req-42", seen)
	require.Equal(t, "req-42", w.Header().Get(types.HeaderRequestID))
	require.Equal(t, 1, logs.FilterMessage("handled").Len())
	require.Equal(t, "req-42", logs.FilterMessage("handled").All()[0].ContextMap()["trace_id"])
	require.Equal(t, 1, logs.FilterMessage("http_access").Len())
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Len(t, w.Header().Get(types.HeaderRequestID), 36)
}

func TestApiKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ApiKeyMiddleware([]string{"zbky501yeyo2ezcaueaufiomnux4rqjy"}))
	r.GET("/transactions", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"exact", "zbky501yeyo2ezcaueaufiomnux4rqjy", http.StatusOK},
		{"case insensitive", "ZBKY501YEYO2EZCAUEAUFIOMNUX4RQJY", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
			if tc.key != "" {
				req.Header.Set(types.HeaderApiKey, tc.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusUnauthorized {
				require.Contains(t, w.Body.String(), `"code":40100`)
			}
		})
	}
}
