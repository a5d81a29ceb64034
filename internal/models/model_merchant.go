package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant 收款商户及其收款账户
type Merchant struct {
	ID                 uuid.UUID `gorm:"column:id;primary_key;type:uuid" json:"id"`
	BankAccountNumber  string    `gorm:"column:bank_account_number;type:varchar(64);not null" json:"bank_account_number"`
	BankIdentifierCode string    `gorm:"column:bank_identifier_code;type:varchar(16);not null" json:"bank_identifier_code"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Merchant) TableName() string { return "merchant" }
