package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal представляет отклик фрилансера на проект.
// У одного фрилансера может быть не больше одного активного
// (не отозванного) отклика на проект.
type Proposal struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProjectID    uuid.UUID `db:"project_id" json:"project_id"`
	FreelancerID uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	Amount       float64   `db:"amount" json:"amount"`
	Currency     string    `db:"currency" json:"currency"`
	TimelineDays int       `db:"timeline_days" json:"timeline_days"`
	Scope        string    `db:"scope" json:"scope"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
