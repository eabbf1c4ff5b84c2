package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var (
	ErrDeliveryNotFound        = errors.New("delivery not found")
	ErrDeliveryAlreadyAccepted = errors.New("delivery already accepted")
)

type DeliveryRepository struct {
	db *sqlx.DB
}

func NewDeliveryRepository(db *sqlx.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Create сохраняет сдачу работы по контракту.
func (r *DeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO deliveries (contract_id, checklist, files, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, accepted, created_at
	`, delivery.ContractID, delivery.Checklist, delivery.Files, delivery.Notes,
	).Scan(&delivery.ID, &delivery.Accepted, &delivery.CreatedAt)
	if err != nil {
		return fmt.Errorf("delivery repository: create %w", err)
	}
	return nil
}

// GetByID возвращает сдачу работы.
func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.GetContext(ctx, &delivery, `SELECT * FROM deliveries WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delivery repository: get by id %w", err)
	}
	return &delivery, nil
}

// ListByContract возвращает сдачи по контракту, новые первыми.
func (r *DeliveryRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Delivery, error) {
	deliveries := []models.Delivery{}
	err := r.db.SelectContext(ctx, &deliveries, `
		SELECT * FROM deliveries WHERE contract_id = $1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("delivery repository: list by contract %w", err)
	}
	return deliveries, nil
}

// Accept помечает сдачу принятой. Повторное принятие не проходит
// по условию в WHERE.
func (r *DeliveryRepository) Accept(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.GetContext(ctx, &delivery, `
		UPDATE deliveries SET accepted = TRUE, accepted_at = NOW()
		WHERE id = $1 AND accepted = FALSE
		RETURNING *
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if existing.Accepted {
			return nil, ErrDeliveryAlreadyAccepted
		}
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delivery repository: accept %w", err)
	}
	return &delivery, nil
}

// AppendFile добавляет путь загруженного файла к сдаче.
func (r *DeliveryRepository) AppendFile(ctx context.Context, id uuid.UUID, path string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE deliveries SET files = files || to_jsonb($2::text)
		WHERE id = $1 AND accepted = FALSE
	`, id, path)
	if err != nil {
		return fmt.Errorf("delivery repository: append file %w", err)
	}
	return requireRowAffected(result, ErrDeliveryNotFound)
}
