package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы записей леджера. Сумма подписанная: отрицательная для оттока средств.
const (
	TransactionTypeDeposit  = "deposit"
	TransactionTypePayout   = "payout"
	TransactionTypeWithdraw = "withdraw"
	TransactionTypeFee      = "fee"
)

// TransactionMeta — расширяемые атрибуты записи леджера.
// Известные поля типизированы, остальное остаётся в Extra.
type TransactionMeta struct {
	Method      string            `json:"method,omitempty"`
	TxHash      string            `json:"tx_hash,omitempty"`
	Description string            `json:"description,omitempty"`
	Reversal    bool              `json:"reversal,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func (m TransactionMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *TransactionMeta) Scan(src interface{}) error {
	if src == nil {
		*m = TransactionMeta{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("transaction meta: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// Transaction — запись append-only леджера. После создания не изменяется;
// баланс пользователя — это сумма его записей.
type Transaction struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	ContractID *uuid.UUID      `db:"contract_id" json:"contract_id,omitempty"`
	Type       string          `db:"type" json:"type"`
	Amount     float64         `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	Meta       TransactionMeta `db:"meta" json:"meta"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// UserBalance — производный взгляд на леджер пользователя.
type UserBalance struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Balance  float64   `db:"balance" json:"balance"`
	Currency string    `db:"currency" json:"currency"`
}
