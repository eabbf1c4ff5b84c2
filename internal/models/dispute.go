package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EvidenceList — свободные текстовые свидетельства сторон спора.
type EvidenceList []string

func (e EvidenceList) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

func (e *EvidenceList) Scan(src interface{}) error {
	if src == nil {
		*e = EvidenceList{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("evidence list: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, e)
}

// Dispute открывается стороной контракта, пока средства в escrow.
// Один незакрытый спор на контракт; открытый спор блокирует
// release и refund до разрешения.
type Dispute struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	ContractID uuid.UUID    `db:"contract_id" json:"contract_id"`
	OpenedBy   uuid.UUID    `db:"opened_by" json:"opened_by"`
	Reason     string       `db:"reason" json:"reason"`
	Evidence   EvidenceList `db:"evidence" json:"evidence"`
	Status     string       `db:"status" json:"status"`
	Resolution *string      `db:"resolution" json:"resolution,omitempty"`
	ResolvedBy *uuid.UUID   `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
	ResolvedAt *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Исходы разрешения спора
const (
	DisputeOutcomeRelease = "release"
	DisputeOutcomeRefund  = "refund"
)
