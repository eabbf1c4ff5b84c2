package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	// ErrEscrowInvalidState: запрошенный переход невозможен из текущего
	// статуса escrow (нарушение жизненного цикла).
	ErrEscrowInvalidState = errors.New("escrow transition not allowed from current status")
	// ErrEscrowConflict: статус изменился между чтением и записью
	// (проигранная гонка, повтор может быть уместен).
	ErrEscrowConflict = errors.New("escrow status changed concurrently")
	ErrDisputeBlocks  = errors.New("contract has an unresolved dispute")
)

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GetByID возвращает контракт.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.GetContext(ctx, &contract, `SELECT * FROM contracts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contract repository: get by id %w", err)
	}
	return &contract, nil
}

// ListByUser возвращает контракты, где пользователь — клиент или фрилансер.
func (r *ContractRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Contract, error) {
	contracts := []models.Contract{}
	err := r.db.SelectContext(ctx, &contracts, `
		SELECT * FROM contracts
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("contract repository: list by user %w", err)
	}
	return contracts, nil
}

// lockContract читает контракт с блокировкой строки внутри транзакции.
func lockContract(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := tx.GetContext(ctx, &contract, `SELECT * FROM contracts WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contract repository: lock contract %w", err)
	}
	return &contract, nil
}

// moveEscrow выполняет охраняемый UPDATE статуса escrow. Текущий статус
// стоит в WHERE: ноль затронутых строк после успешного FOR UPDATE
// означает проигранную гонку.
func moveEscrow(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to valueobject.EscrowStatus) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE contracts SET escrow_status = $3, updated_at = NOW()
		WHERE id = $1 AND escrow_status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("contract repository: move escrow %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEscrowConflict
	}
	return nil
}

// appendLedger вставляет запись леджера в той же транзакции, что и
// переход escrow. Леджер append-only: никаких UPDATE по transactions.
func appendLedger(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, contract_id, type, amount, currency, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, t.UserID, t.ContractID, t.Type, t.Amount, t.Currency, t.Meta,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("contract repository: append ledger %w", err)
	}
	return nil
}

// releaseLedger формирует записи release для фрилансера: payout на полную
// сумму контракта и комиссия с отрицательным знаком. Сумма обеих записей
// равна чистой выплате.
func releaseLedger(contract *models.Contract, fee valueobject.FeeBreakdown, description string) []*models.Transaction {
	return []*models.Transaction{
		{
			UserID:     contract.FreelancerID,
			ContractID: &contract.ID,
			Type:       models.TransactionTypePayout,
			Amount:     contract.Amount,
			Currency:   contract.Currency,
			Meta:       models.TransactionMeta{Description: description},
		},
		{
			UserID:     contract.FreelancerID,
			ContractID: &contract.ID,
			Type:       models.TransactionTypeFee,
			Amount:     -fee.FeeAmount,
			Currency:   contract.Currency,
			Meta: models.TransactionMeta{
				Description: fmt.Sprintf("platform fee %.0f%%", fee.FeePercentage),
			},
		},
	}
}

// refundLedger формирует единственную reversal-запись клиенту на полную
// сумму депозита. Вместе с отсутствием записи при fund даёт ноль по
// леджеру для контракта fund -> refund.
func refundLedger(contract *models.Contract, description string) *models.Transaction {
	return &models.Transaction{
		UserID:     contract.ClientID,
		ContractID: &contract.ID,
		Type:       models.TransactionTypeDeposit,
		Amount:     contract.Amount,
		Currency:   contract.Currency,
		Meta: models.TransactionMeta{
			Reversal:    true,
			Description: description,
		},
	}
}

// FundEscrow переводит escrow из pending в funded и записывает референс
// провайдера. Удержанные средства не попадают в леджер: пока контракт
// funded, они не доступны к выводу ни одной из сторон, запись появится
// только при release или refund.
func (r *ContractRepository) FundEscrow(ctx context.Context, id uuid.UUID, method, txHash string) (*models.Contract, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contract repository: begin tx %w", err)
	}
	defer tx.Rollback()

	contract, err := lockContract(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusFunded) {
		return nil, ErrEscrowInvalidState
	}

	if err := moveEscrow(ctx, tx, id, current, valueobject.EscrowStatusFunded); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE contracts SET funding_method = $2, escrow_tx_hash = $3 WHERE id = $1
	`, id, method, txHash); err != nil {
		return nil, fmt.Errorf("contract repository: record funding %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("contract repository: commit %w", err)
	}

	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)
	contract.FundingMethod = &method
	contract.EscrowTxHash = &txHash
	return contract, nil
}

// ReleaseEscrow переводит escrow из funded в released и начисляет
// фрилансеру payout на полную сумму и fee с отрицательным знаком:
// по леджеру фрилансер получает ровно чистую выплату. Открытый спор
// блокирует переход. Всё в одной транзакции.
func (r *ContractRepository) ReleaseEscrow(ctx context.Context, id uuid.UUID, fee valueobject.FeeBreakdown) (*models.Contract, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contract repository: begin tx %w", err)
	}
	defer tx.Rollback()

	contract, err := lockContract(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusReleased) {
		return nil, ErrEscrowInvalidState
	}

	if err := ensureNoBlockingDispute(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := moveEscrow(ctx, tx, id, current, valueobject.EscrowStatusReleased); err != nil {
		return nil, err
	}

	for _, row := range releaseLedger(contract, fee, "escrow released") {
		if err := appendLedger(ctx, tx, row); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("contract repository: commit %w", err)
	}

	contract.EscrowStatus = string(valueobject.EscrowStatusReleased)
	return contract, nil
}

// RefundEscrow переводит escrow из funded в refunded и возвращает
// клиенту полную сумму депозита одной reversal-записью.
func (r *ContractRepository) RefundEscrow(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contract repository: begin tx %w", err)
	}
	defer tx.Rollback()

	contract, err := lockContract(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusRefunded) {
		return nil, ErrEscrowInvalidState
	}

	if err := ensureNoBlockingDispute(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := moveEscrow(ctx, tx, id, current, valueobject.EscrowStatusRefunded); err != nil {
		return nil, err
	}

	if err := appendLedger(ctx, tx, refundLedger(contract, "escrow refunded")); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("contract repository: commit %w", err)
	}

	contract.EscrowStatus = string(valueobject.EscrowStatusRefunded)
	return contract, nil
}

// ResolveDisputeRefund выполняет refund по решению арбитра, минуя
// блокировку спора: сам спор закрывается в этой же транзакции.
func (r *ContractRepository) ResolveDisputeRefund(ctx context.Context, contractID, disputeID, resolvedBy uuid.UUID, resolution string) (*models.Contract, error) {
	return r.resolveDispute(ctx, contractID, disputeID, resolvedBy, resolution, valueobject.EscrowStatusRefunded, valueobject.FeeBreakdown{})
}

// ResolveDisputeRelease выполняет release по решению арбитра.
func (r *ContractRepository) ResolveDisputeRelease(ctx context.Context, contractID, disputeID, resolvedBy uuid.UUID, resolution string, fee valueobject.FeeBreakdown) (*models.Contract, error) {
	return r.resolveDispute(ctx, contractID, disputeID, resolvedBy, resolution, valueobject.EscrowStatusReleased, fee)
}

func (r *ContractRepository) resolveDispute(ctx context.Context, contractID, disputeID, resolvedBy uuid.UUID, resolution string, outcome valueobject.EscrowStatus, fee valueobject.FeeBreakdown) (*models.Contract, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contract repository: begin tx %w", err)
	}
	defer tx.Rollback()

	contract, err := lockContract(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(outcome) {
		return nil, ErrEscrowInvalidState
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE disputes
		SET status = $2, resolution = $3, resolved_by = $4, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ($5, $6)
	`, disputeID, valueobject.DisputeStatusResolved, resolution, resolvedBy,
		valueobject.DisputeStatusOpen, valueobject.DisputeStatusInReview)
	if err != nil {
		return nil, fmt.Errorf("contract repository: resolve dispute %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDisputeNotFound
	}

	if err := moveEscrow(ctx, tx, contractID, current, outcome); err != nil {
		return nil, err
	}

	switch outcome {
	case valueobject.EscrowStatusReleased:
		for _, row := range releaseLedger(contract, fee, "dispute resolved: escrow released") {
			if err := appendLedger(ctx, tx, row); err != nil {
				return nil, err
			}
		}
	case valueobject.EscrowStatusRefunded:
		if err := appendLedger(ctx, tx, refundLedger(contract, "dispute resolved: escrow refunded")); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("contract repository: commit %w", err)
	}

	contract.EscrowStatus = string(outcome)
	return contract, nil
}

// HasAcceptedDelivery сообщает, принята ли сдача работы по контракту.
func (r *ContractRepository) HasAcceptedDelivery(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var accepted bool
	err := r.db.GetContext(ctx, &accepted, `
		SELECT EXISTS(SELECT 1 FROM deliveries WHERE contract_id = $1 AND accepted = TRUE)
	`, contractID)
	if err != nil {
		return false, fmt.Errorf("contract repository: has accepted delivery %w", err)
	}
	return accepted, nil
}

// ensureNoBlockingDispute возвращает ErrDisputeBlocks, если по контракту
// есть неразрешённый спор.
func ensureNoBlockingDispute(ctx context.Context, tx *sqlx.Tx, contractID uuid.UUID) error {
	var blocked bool
	err := tx.GetContext(ctx, &blocked, `
		SELECT EXISTS(
			SELECT 1 FROM disputes
			WHERE contract_id = $1 AND status IN ($2, $3)
		)
	`, contractID, valueobject.DisputeStatusOpen, valueobject.DisputeStatusInReview)
	if err != nil {
		return fmt.Errorf("contract repository: check disputes %w", err)
	}
	if blocked {
		return ErrDisputeBlocks
	}
	return nil
}
