package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/logger"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/payment"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
)

// PaymentRepository описывает зависимости PaymentService от слоя хранилища.
type PaymentRepository interface {
	Append(ctx context.Context, t *models.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (float64, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount float64, method string) (*models.Transaction, error)
}

// PaymentService обслуживает леджер пользователя: баланс, история,
// прямые депозиты и выводы.
type PaymentService struct {
	repo          PaymentRepository
	gateway       payment.Gateway
	minWithdrawal float64
}

func NewPaymentService(repo PaymentRepository, gateway payment.Gateway, minWithdrawal float64) *PaymentService {
	return &PaymentService{
		repo:          repo,
		gateway:       gateway,
		minWithdrawal: minWithdrawal,
	}
}

// Balance возвращает баланс как сумму подписанных записей леджера.
func (s *PaymentService) Balance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserBalance{
		UserID:   userID,
		Balance:  balance,
		Currency: "USD",
	}, nil
}

// Transactions возвращает историю леджера, опционально ограниченную
// полуинтервалом [from, to).
func (s *PaymentService) Transactions(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error) {
	return s.repo.ListByUser(ctx, userID, from, to)
}

// Deposit пополняет баланс через платёжного провайдера и добавляет
// запись deposit с положительной суммой.
func (s *PaymentService) Deposit(ctx context.Context, userID uuid.UUID, amount float64, method string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "deposit amount must be positive")
	}
	if !models.ValidFundingMethod(method) {
		return nil, apperror.New(apperror.ErrCodeValidation, "deposit method must be pix, paypal or crypto")
	}

	ref, err := s.gateway.Settle(ctx, method, amount, "USD")
	if err != nil {
		return nil, err
	}

	deposit := &models.Transaction{
		UserID:   userID,
		Type:     models.TransactionTypeDeposit,
		Amount:   amount,
		Currency: "USD",
		Meta: models.TransactionMeta{
			Method:      method,
			TxHash:      ref,
			Description: "deposit",
		},
	}
	if err := s.repo.Append(ctx, deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// Withdraw выводит средства с баланса. Сумма не меньше минимальной,
// баланс проверяется атомарно с записью вывода.
func (s *PaymentService) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, method string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "withdrawal amount must be positive")
	}
	if amount < s.minWithdrawal {
		return nil, apperror.New(apperror.ErrCodeValidation, "withdrawal amount is below the minimum")
	}
	if !models.ValidFundingMethod(method) {
		return nil, apperror.New(apperror.ErrCodeValidation, "withdrawal method must be pix, paypal or crypto")
	}

	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "insufficient balance")
	}

	// Сначала запись в леджер: атомарная проверка баланса внутри
	// Withdraw закрывает гонку двух параллельных выводов, и внешний
	// платёж без записи невозможен
	withdrawal, err := s.repo.Withdraw(ctx, userID, amount, method)
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "insufficient balance")
	}
	if err != nil {
		return nil, err
	}

	// Отказ провайдера компенсируется обратной записью
	if _, err := s.gateway.Settle(ctx, method, amount, "USD"); err != nil {
		reversal := &models.Transaction{
			UserID:   userID,
			Type:     models.TransactionTypeDeposit,
			Amount:   amount,
			Currency: "USD",
			Meta: models.TransactionMeta{
				Method:      method,
				Reversal:    true,
				Description: "withdrawal reversed: provider failure",
			},
		}
		if appendErr := s.repo.Append(ctx, reversal); appendErr != nil && logger.Log != nil {
			logger.Log.WithError(appendErr).Error("payment service: failed to reverse withdrawal")
		}
		return nil, err
	}
	return withdrawal, nil
}
