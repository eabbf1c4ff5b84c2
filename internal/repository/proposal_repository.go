package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalDuplicate = errors.New("active proposal for this project already exists")
	ErrProposalNotSent   = errors.New("proposal is no longer in sent status")
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет отклик. Частичный уникальный индекс по
// (project_id, freelancer_id) для неотозванных откликов гарантирует
// не более одного активного отклика на проект.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (project_id, freelancer_id, amount, currency, timeline_days, scope)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		proposal.ProjectID, proposal.FreelancerID, proposal.Amount,
		proposal.Currency, proposal.TimelineDays, proposal.Scope,
	).Scan(&proposal.ID, &proposal.Status, &proposal.CreatedAt, &proposal.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrProposalDuplicate
	}
	if err != nil {
		return fmt.Errorf("proposal repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отклик.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.GetContext(ctx, &proposal, `SELECT * FROM proposals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}
	return &proposal, nil
}

// ListByProject возвращает отклики на проект, новые первыми.
func (r *ProposalRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by project %w", err)
	}
	return proposals, nil
}

// ListByFreelancer возвращает отклики фрилансера.
func (r *ProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC
	`, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by freelancer %w", err)
	}
	return proposals, nil
}

// UpdateStatus переводит отклик из sent в новый статус.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE proposals SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, to, valueobject.ProposalStatusSent)
	if err != nil {
		return fmt.Errorf("proposal repository: update status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM proposals WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("proposal repository: update status %w", err)
		}
		if !exists {
			return ErrProposalNotFound
		}
		return ErrProposalNotSent
	}
	return nil
}

// Accept атомарно принимает отклик: блокирует проект, помечает отклик
// принятым, отклоняет остальные sent-отклики, переводит проект
// в in_progress и создаёт контракт с escrow в статусе pending.
// Всё в одной транзакции: либо контракт есть и победитель один,
// либо ничего не произошло.
func (r *ProposalRepository) Accept(ctx context.Context, proposalID uuid.UUID) (*models.Contract, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var proposal models.Proposal
	err = tx.GetContext(ctx, &proposal, `SELECT * FROM proposals WHERE id = $1 FOR UPDATE`, proposalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("proposal repository: lock proposal %w", err)
	}

	if proposal.Status != string(valueobject.ProposalStatusSent) {
		return nil, ErrProposalNotSent
	}

	var project models.Project
	err = tx.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1 FOR UPDATE`, proposal.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("proposal repository: lock project %w", err)
	}

	if project.Status != string(valueobject.ProjectStatusOpen) {
		return nil, ErrProjectStatusStale
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1
	`, proposal.ID, valueobject.ProposalStatusAccepted); err != nil {
		return nil, fmt.Errorf("proposal repository: accept %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE proposals SET status = $3, updated_at = NOW()
		WHERE project_id = $1 AND id != $2 AND status = $4
	`, proposal.ProjectID, proposal.ID, valueobject.ProposalStatusRejected, valueobject.ProposalStatusSent); err != nil {
		return nil, fmt.Errorf("proposal repository: reject siblings %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1
	`, proposal.ProjectID, valueobject.ProjectStatusInProgress); err != nil {
		return nil, fmt.Errorf("proposal repository: move project to in_progress %w", err)
	}

	contract := &models.Contract{
		ProposalID:   proposal.ID,
		ProjectID:    proposal.ProjectID,
		ClientID:     project.ClientID,
		FreelancerID: proposal.FreelancerID,
		Amount:       proposal.Amount,
		Currency:     proposal.Currency,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO contracts (proposal_id, project_id, client_id, freelancer_id, amount, currency, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, NOW() + make_interval(days => $7))
		RETURNING id, escrow_status, due_date, created_at, updated_at
	`, contract.ProposalID, contract.ProjectID, contract.ClientID, contract.FreelancerID,
		contract.Amount, contract.Currency, proposal.TimelineDays,
	).Scan(&contract.ID, &contract.EscrowStatus, &contract.DueDate, &contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: create contract %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("proposal repository: commit %w", err)
	}
	return contract, nil
}
