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
	ErrDisputeNotFound  = errors.New("dispute not found")
	ErrDisputeDuplicate = errors.New("contract already has an unresolved dispute")
	ErrDisputeResolved  = errors.New("dispute is already resolved")
)

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create открывает спор. Частичный уникальный индекс по contract_id
// для нерешённых споров даёт не больше одного открытого спора на контракт.
func (r *DisputeRepository) Create(ctx context.Context, dispute *models.Dispute) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO disputes (contract_id, opened_by, reason, evidence)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`, dispute.ContractID, dispute.OpenedBy, dispute.Reason, dispute.Evidence,
	).Scan(&dispute.ID, &dispute.Status, &dispute.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDisputeDuplicate
	}
	if err != nil {
		return fmt.Errorf("dispute repository: create %w", err)
	}
	return nil
}

// GetByID возвращает спор.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.GetContext(ctx, &dispute, `SELECT * FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get by id %w", err)
	}
	return &dispute, nil
}

// GetOpenByContract возвращает нерешённый спор по контракту, если есть.
func (r *DisputeRepository) GetOpenByContract(ctx context.Context, contractID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.GetContext(ctx, &dispute, `
		SELECT * FROM disputes
		WHERE contract_id = $1 AND status IN ($2, $3)
	`, contractID, valueobject.DisputeStatusOpen, valueobject.DisputeStatusInReview)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get open by contract %w", err)
	}
	return &dispute, nil
}

// ListByContract возвращает все споры по контракту.
func (r *DisputeRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Dispute, error) {
	disputes := []models.Dispute{}
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE contract_id = $1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by contract %w", err)
	}
	return disputes, nil
}

// ListByParty возвращает споры по всем контрактам, где пользователь
// является стороной.
func (r *DisputeRepository) ListByParty(ctx context.Context, userID uuid.UUID) ([]models.Dispute, error) {
	disputes := []models.Dispute{}
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT d.* FROM disputes d
		JOIN contracts c ON c.id = d.contract_id
		WHERE c.client_id = $1 OR c.freelancer_id = $1
		ORDER BY d.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by party %w", err)
	}
	return disputes, nil
}

// MarkInReview переводит спор из open в in_review.
func (r *DisputeRepository) MarkInReview(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE disputes SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, valueobject.DisputeStatusInReview, valueobject.DisputeStatusOpen)
	if err != nil {
		return fmt.Errorf("dispute repository: mark in review %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM disputes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("dispute repository: mark in review %w", err)
		}
		if !exists {
			return ErrDisputeNotFound
		}
		return ErrDisputeResolved
	}
	return nil
}

// AppendEvidence добавляет свидетельства к нерешённому спору.
func (r *DisputeRepository) AppendEvidence(ctx context.Context, id uuid.UUID, items []string) error {
	extra, err := models.EvidenceList(items).Value()
	if err != nil {
		return fmt.Errorf("dispute repository: marshal evidence %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE disputes SET evidence = evidence || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`, id, extra, valueobject.DisputeStatusOpen, valueobject.DisputeStatusInReview)
	if err != nil {
		return fmt.Errorf("dispute repository: append evidence %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM disputes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("dispute repository: append evidence %w", err)
		}
		if !exists {
			return ErrDisputeNotFound
		}
		return ErrDisputeResolved
	}
	return nil
}
