package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// События, рассылаемые пользователям через WebSocket и ленту уведомлений.
const (
	EventProposalAccepted = "proposal.accepted"
	EventProposalRejected = "proposal.rejected"
	EventEscrowFunded     = "escrow.funded"
	EventEscrowReleased   = "escrow.released"
	EventEscrowRefunded   = "escrow.refunded"
	EventDeliveryCreated  = "delivery.created"
	EventDeliveryAccepted = "delivery.accepted"
	EventDisputeOpened    = "dispute.opened"
	EventDisputeResolved  = "dispute.resolved"
)

// Notification хранит доставленное пользователю событие.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
