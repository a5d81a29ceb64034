package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/internal/app/service/ledger"
	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/response"
	types "github.com/fatflowers/paygate/pkg/types"
	"github.com/fatflowers/paygate/pkg/validation"
)

// TransactionProcessor is the bank ledger as seen by its HTTP surface.
type TransactionProcessor interface {
	Process(ctx context.Context, token string) (*types.TransactionRecord, error)
	GetStatus(id uuid.UUID) (*types.TransactionRecord, error)
}

// @Summary      Submit a bank transaction
// @Description  Processes a card transaction. Requests carrying an Idempotency-Key already seen return the stored record.
// @Tags         Bank
// @Accept       json
// @Produce      json
// @Param        X-Api-Key        header  string                    true   "API key"
// @Param        Idempotency-Key  header  string                    false  "Idempotency token"
// @Param        request          body    types.TransactionRequest  true   "Transaction request"
// @Success      200  {object}  types.TransactionRecord
// @Failure      400  {object}  handlers.RespError
// @Failure      401  {object}  handlers.RespError
// @Router       /transactions [post]
func ApiMakeTransaction(l TransactionProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT(response.APIResponseCodeBadRequest, validation.Details(err)))
			return
		}

		rec, err := l.Process(c.Request.Context(), c.GetHeader(types.HeaderIdempotencyKey))
		if err != nil {
			writeTransactionError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// @Summary      Get a bank transaction
// @Tags         Bank
// @Produce      json
// @Param        X-Api-Key  header  string  true  "API key"
// @Param        id         path    string  true  "Transaction ID"
// @Success      200  {object}  types.TransactionRecord
// @Failure      401  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /transactions/{id} [get]
func ApiGetTransaction(l TransactionProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "unknown transaction id"))
			return
		}
		rec, err := l.GetStatus(id)
		if err != nil {
			writeTransactionError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func writeTransactionError(c *gin.Context, base *zap.SugaredLogger, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, ledger.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, response.ErrorT[any](response.APIResponseCodeUnavailable, err.Error()))
	default:
		logctx.FromGin(c, base).Errorw("transaction request failed", "err", err)
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, response.Message(response.APIResponseCodeError)))
	}
}

func RegisterTransactionRoutes(r gin.IRouter, l TransactionProcessor, log *zap.SugaredLogger) {
	r.POST("", ApiMakeTransaction(l, log))
	r.GET("/:id", ApiGetTransaction(l, log))
}
