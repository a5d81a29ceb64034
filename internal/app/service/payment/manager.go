package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	types "github.com/fatflowers/paygate/pkg/types"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	// ErrUpstreamFailure means the acquiring bank could not settle the payment.
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrInvariantViolation = errors.New("payment invariant violated")
)

// PaymentManager accepts payments and reports their settled outcome.
type PaymentManager interface {
	// MakePayment registers the payment and starts settlement at most once per
	// (merchant, idempotency id). Replays return the same payment id.
	MakePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentAcceptedResponse, error)
	// GetPayment waits for an in-flight settlement started by this process or
	// reads the persisted outcome.
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*types.PaymentProcessedResponse, error)
}
