package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Append вставляет запись леджера вне escrow-транзакций
// (прямые депозиты, выводы).
func (r *PaymentRepository) Append(ctx context.Context, t *models.Transaction) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, contract_id, type, amount, currency, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, t.UserID, t.ContractID, t.Type, t.Amount, t.Currency, t.Meta,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("payment repository: append %w", err)
	}
	return nil
}

// ListByUser возвращает записи леджера пользователя, опционально
// ограниченные полуинтервалом [from, to).
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error) {
	query := `SELECT * FROM transactions WHERE user_id = $1`
	args := []interface{}{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	transactions := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, fmt.Errorf("payment repository: list by user %w", err)
	}
	return transactions, nil
}

// Balance считает баланс как сумму подписанных записей леджера.
func (r *PaymentRepository) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	var balance float64
	err := r.db.GetContext(ctx, &balance, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("payment repository: balance %w", err)
	}
	return balance, nil
}

// Withdraw атомарно проверяет баланс и добавляет запись вывода
// с отрицательной суммой. Advisory-блокировка по пользователю
// сериализует конкурентные выводы.
func (r *PaymentRepository) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, method string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("payment repository: begin tx %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, userID); err != nil {
		return nil, fmt.Errorf("payment repository: advisory lock %w", err)
	}

	var balance float64
	err = tx.GetContext(ctx, &balance, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("payment repository: balance %w", err)
	}

	if balance < amount {
		return nil, ErrInsufficientBalance
	}

	withdrawal := &models.Transaction{
		UserID:   userID,
		Type:     models.TransactionTypeWithdraw,
		Amount:   -amount,
		Currency: "USD",
		Meta: models.TransactionMeta{
			Method:      method,
			Description: "withdrawal",
		},
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, contract_id, type, amount, currency, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, withdrawal.UserID, withdrawal.ContractID, withdrawal.Type,
		withdrawal.Amount, withdrawal.Currency, withdrawal.Meta,
	).Scan(&withdrawal.ID, &withdrawal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("payment repository: insert withdrawal %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("payment repository: commit %w", err)
	}
	return withdrawal, nil
}
