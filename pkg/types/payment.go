package types

import "github.com/google/uuid"

type CurrencyAmount struct {
	Amount   uint64 `json:"amount" binding:"required,min=1"`
	Currency string `json:"currency" binding:"required,iso4217"`
}

// PaymentRequest is submitted by a merchant to POST /payments.
type PaymentRequest struct {
	IdempotencyID         uuid.UUID      `json:"idempotencyId" binding:"required"`
	MerchantID            uuid.UUID      `json:"merchantId" binding:"required"`
	CardNumber            string         `json:"cardNumber" binding:"required,credit_card"`
	Name                  string         `json:"name" binding:"required,max=256"`
	CardExpiryDate        string         `json:"cardExpiryDate" binding:"required,card_expiry"`
	CardVerificationValue string         `json:"cardVerificationValue" binding:"required,cvv"`
	Value                 CurrencyAmount `json:"value"`
}

type PaymentAcceptedResponse struct {
	PaymentID uuid.UUID `json:"paymentId"`
	Location  string    `json:"location"`
}

// PaymentProcessedResponse is the terminal outcome of a payment. Status is
// always Completed or Rejected.
type PaymentProcessedResponse struct {
	PaymentID                uuid.UUID         `json:"paymentId"`
	Status                   TransactionStatus `json:"status"`
	SenderCardLastFourDigits string            `json:"senderCardLastFourDigits"`
	PaymentReference         string            `json:"paymentReference"`
}
