package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	HeaderApiKey         = "X-Api-Key"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestID      = "X-Request-ID"
)

// TransactionRequest is the body accepted by the acquiring bank's POST /transactions.
type TransactionRequest struct {
	RecipientBankAccountNumber  string `json:"recipientBankAccountNumber" binding:"required,iban"`
	RecipientBankIdentifierCode string `json:"recipientBankIdentifierCode" binding:"required,bic"`
	PaymentReference            string `json:"paymentReference,omitempty" binding:"omitempty,max=18"`
	SenderCardNumber            string `json:"senderCardNumber" binding:"required,credit_card"`
	SenderName                  string `json:"senderName" binding:"required,max=256"`
	SenderCardExpiryDate        string `json:"senderCardExpiryDate" binding:"required,card_expiry"`
	SenderCardVerificationValue string `json:"senderCardVerificationValue" binding:"required,cvv"`
	CurrencyCode                string `json:"currencyCode" binding:"required,iso4217"`
	Amount                      uint64 `json:"amount" binding:"required,min=1"`
}

// TransactionRecord is the bank's view of a transaction. Records are never
// mutated after publication: every status change produces a new record.
type TransactionRecord struct {
	ID      uuid.UUID         `json:"id"`
	Status  TransactionStatus `json:"status"`
	Started time.Time         `json:"started"`
	Updated time.Time         `json:"updated"`
}
