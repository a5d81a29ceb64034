package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/internal/app/service/payment"
	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/response"
	types "github.com/fatflowers/paygate/pkg/types"
	"github.com/fatflowers/paygate/pkg/validation"
)

// @Summary      Submit a payment
// @Description  Accepts a card payment for settlement. Replaying the same merchantId and idempotencyId returns the same paymentId and never settles twice.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body types.PaymentRequest true "Payment request"
// @Success      202  {object}  types.PaymentAcceptedResponse
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /payments [post]
func ApiMakePayment(mgr payment.PaymentManager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT(response.APIResponseCodeBadRequest, validation.Details(err)))
			return
		}

		res, err := mgr.MakePayment(c.Request.Context(), &req)
		if err != nil {
			writePaymentError(c, log, err)
			return
		}
		c.Header("Location", res.Location)
		c.JSON(http.StatusAccepted, res)
	}
}

// @Summary      Get a payment
// @Description  Returns the settled outcome of a payment, waiting for an in-flight settlement when needed.
// @Tags         Payment
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  types.PaymentProcessedResponse
// @Failure      404  {object}  handlers.RespError
// @Failure      502  {object}  handlers.RespError
// @Router       /payments/{id} [get]
func ApiGetPayment(mgr payment.PaymentManager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "unknown payment id"))
			return
		}

		res, err := mgr.GetPayment(c.Request.Context(), id)
		if err != nil {
			writePaymentError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func writePaymentError(c *gin.Context, base *zap.SugaredLogger, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, payment.ErrMerchantNotFound), errors.Is(err, payment.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, payment.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeBadGateway, err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, response.ErrorT[any](response.APIResponseCodeUnavailable, err.Error()))
	default:
		logctx.FromGin(c, base).Errorw("payment request failed", "err", err)
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, response.Message(response.APIResponseCodeError)))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr payment.PaymentManager, log *zap.SugaredLogger) {
	r.POST("", ApiMakePayment(mgr, log))
	r.GET("/:id", ApiGetPayment(mgr, log))
}
