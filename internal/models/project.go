package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает заказ клиента, на который фрилансеры подают отклики.
type Project struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	BudgetMin      float64    `db:"budget_min" json:"budget_min"`
	BudgetMax      float64    `db:"budget_max" json:"budget_max"`
	Currency       string     `db:"currency" json:"currency"`
	Status         string     `db:"status" json:"status"`
	DeadlineAt     *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	ProposalsCount *int       `db:"proposals_count" json:"proposals_count,omitempty"`
}

// ProjectFilter задаёт параметры выборки списка проектов.
type ProjectFilter struct {
	Status   string
	Search   string
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}
