package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fatflowers/paygate/pkg/types"
)

// PaymentInitiatedEvent 支付受理事件。payment_id 唯一，首个写入者即为该支付的结算负责人
type PaymentInitiatedEvent struct {
	PaymentID  uuid.UUID `gorm:"column:payment_id;primary_key;type:uuid" json:"payment_id"`
	MerchantID uuid.UUID `gorm:"column:merchant_id;type:uuid;not null;index:idx_merchant_id" json:"merchant_id"`
	Merchant   *Merchant `gorm:"foreignKey:MerchantID;references:ID" json:"-"`
	Amount     uint64    `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency   string    `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	// SenderCardLastFourDigits 仅保存卡号后四位
	SenderCardLastFourDigits string `gorm:"column:sender_card_last_four_digits;type:varchar(4);not null" json:"sender_card_last_four_digits"`
	PaymentReference         string `gorm:"column:payment_reference;type:varchar(18);not null" json:"payment_reference"`
	TraceID                  string `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`

	Settled *PaymentSettledEvent `gorm:"foreignKey:PaymentID;references:PaymentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (PaymentInitiatedEvent) TableName() string { return "payment_initiated_event" }

// PaymentSettledEvent 支付终态事件，仅在收单行返回 Completed 或 Rejected 后写入
type PaymentSettledEvent struct {
	PaymentID uuid.UUID               `gorm:"column:payment_id;primary_key;type:uuid" json:"payment_id"`
	Status    types.TransactionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	// BankTransaction 收单行返回的交易记录快照
	BankTransaction datatypes.JSONType[*types.TransactionRecord] `gorm:"column:bank_transaction;type:jsonb" json:"bank_transaction"`
	CreatedAt       time.Time                                    `json:"created_at"`
}

func (PaymentSettledEvent) TableName() string { return "payment_settled_event" }
