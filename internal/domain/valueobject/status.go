package valueobject

import "github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"

type EscrowStatus string

const (
	EscrowStatusPending  EscrowStatus = "pending"
	EscrowStatusFunded   EscrowStatus = "funded"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

func (s EscrowStatus) IsValid() bool {
	switch s {
	case EscrowStatusPending, EscrowStatusFunded, EscrowStatusReleased, EscrowStatusRefunded:
		return true
	}
	return false
}

// IsTerminal сообщает, завершён ли жизненный цикл escrow.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowStatusReleased || s == EscrowStatusRefunded
}

// CanTransitionTo кодирует единственно допустимые переходы:
// pending -> funded -> released | refunded. Финансирование обязательно,
// из терминальных статусов выхода нет.
func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	transitions := map[EscrowStatus][]EscrowStatus{
		EscrowStatusPending:  {EscrowStatusFunded},
		EscrowStatusFunded:   {EscrowStatusReleased, EscrowStatusRefunded},
		EscrowStatusReleased: {},
		EscrowStatusRefunded: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusDelivered  ProjectStatus = "delivered"
	ProjectStatusDisputed   ProjectStatus = "disputed"
	ProjectStatusClosed     ProjectStatus = "closed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusOpen, ProjectStatusInProgress, ProjectStatusDelivered,
		ProjectStatusDisputed, ProjectStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo: статус движется только вперёд, кроме disputed —
// боковая ветка из in_progress/delivered, которая возвращается
// в in_progress или closed.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	transitions := map[ProjectStatus][]ProjectStatus{
		ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusClosed},
		ProjectStatusInProgress: {ProjectStatusDelivered, ProjectStatusDisputed, ProjectStatusClosed},
		ProjectStatusDelivered:  {ProjectStatusDisputed, ProjectStatusClosed},
		ProjectStatusDisputed:   {ProjectStatusInProgress, ProjectStatusClosed},
		ProjectStatusClosed:     {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

func NewProjectStatus(status string) (ProjectStatus, error) {
	s := ProjectStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid project status")
	}
	return s, nil
}

type ProposalStatus string

const (
	ProposalStatusSent      ProposalStatus = "sent"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusSent, ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	}
	return false
}

// CanTransitionTo: все переходы возможны только из sent,
// accepted/rejected/withdrawn терминальны.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	if s != ProposalStatusSent {
		return false
	}
	return next == ProposalStatusAccepted || next == ProposalStatusRejected || next == ProposalStatusWithdrawn
}

func NewProposalStatus(status string) (ProposalStatus, error) {
	s := ProposalStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid proposal status")
	}
	return s, nil
}

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusInReview DisputeStatus = "in_review"
	DisputeStatusResolved DisputeStatus = "resolved"
)

func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeStatusOpen, DisputeStatusInReview, DisputeStatusResolved:
		return true
	}
	return false
}

// Blocking: пока спор не разрешён, release/refund по контракту запрещены.
func (s DisputeStatus) Blocking() bool {
	return s == DisputeStatusOpen || s == DisputeStatusInReview
}

func (s DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	transitions := map[DisputeStatus][]DisputeStatus{
		DisputeStatusOpen:     {DisputeStatusInReview, DisputeStatusResolved},
		DisputeStatusInReview: {DisputeStatusResolved},
		DisputeStatusResolved: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}
