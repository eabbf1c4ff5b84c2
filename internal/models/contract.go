package models

import (
	"time"

	"github.com/google/uuid"
)

// Способы финансирования escrow
const (
	FundingMethodPix    = "pix"
	FundingMethodPaypal = "paypal"
	FundingMethodCrypto = "crypto"
)

// ValidFundingMethod проверяет способ оплаты.
func ValidFundingMethod(method string) bool {
	switch method {
	case FundingMethodPix, FundingMethodPaypal, FundingMethodCrypto:
		return true
	}
	return false
}

// Contract создаётся ровно один раз при принятии отклика и ссылается
// на него неизменяемо. EscrowStatus живёт по циклу
// pending -> funded -> released | refunded.
type Contract struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ProposalID    uuid.UUID  `db:"proposal_id" json:"proposal_id"`
	ProjectID     uuid.UUID  `db:"project_id" json:"project_id"`
	ClientID      uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID  uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	EscrowStatus  string     `db:"escrow_status" json:"escrow_status"`
	EscrowTxHash  *string    `db:"escrow_tx_hash" json:"escrow_tx_hash,omitempty"`
	FundingMethod *string    `db:"funding_method" json:"funding_method,omitempty"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
