package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/logger"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/payment"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
)

// ContractRepository описывает зависимости EscrowService от слоя хранилища.
type ContractRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Contract, error)
	FundEscrow(ctx context.Context, id uuid.UUID, method, txHash string) (*models.Contract, error)
	ReleaseEscrow(ctx context.Context, id uuid.UUID, fee valueobject.FeeBreakdown) (*models.Contract, error)
	RefundEscrow(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	HasAcceptedDelivery(ctx context.Context, contractID uuid.UUID) (bool, error)
}

// EscrowService проводит деньги по жизненному циклу escrow:
// pending -> funded -> released | refunded.
type EscrowService struct {
	contracts ContractRepository
	users     UserRepository
	projects  ProjectRepository
	gateway   payment.Gateway
	notifier  Notifier
}

func NewEscrowService(
	contracts ContractRepository,
	users UserRepository,
	projects ProjectRepository,
	gateway payment.Gateway,
	notifier Notifier,
) *EscrowService {
	return &EscrowService{
		contracts: contracts,
		users:     users,
		projects:  projects,
		gateway:   gateway,
		notifier:  notifier,
	}
}

// GetContract возвращает контракт его стороне.
func (s *EscrowService) GetContract(ctx context.Context, userID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID && contract.FreelancerID != userID {
		return nil, apperror.ErrForbidden
	}
	return contract, nil
}

// ListContracts возвращает контракты пользователя.
func (s *EscrowService) ListContracts(ctx context.Context, userID uuid.UUID) ([]models.Contract, error) {
	return s.contracts.ListByUser(ctx, userID)
}

// Fund финансирует escrow: клиент платит через выбранный способ,
// провайдер возвращает референс, средства удерживаются до release
// или refund и в леджер не попадают.
func (s *EscrowService) Fund(ctx context.Context, userID, contractID uuid.UUID, method string) (*models.Contract, error) {
	if !models.ValidFundingMethod(method) {
		return nil, apperror.New(apperror.ErrCodeValidation, "funding method must be pix, paypal or crypto")
	}

	contract, err := s.GetContract(ctx, userID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can fund the escrow")
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusFunded) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow can only be funded from pending status")
	}

	txHash, err := s.gateway.Settle(ctx, method, contract.Amount, contract.Currency)
	if err != nil {
		return nil, err
	}

	funded, err := s.contracts.FundEscrow(ctx, contractID, method, txHash)
	if err != nil {
		return nil, mapEscrowError(err)
	}

	s.notifier.Notify(ctx, funded.FreelancerID, models.EventEscrowFunded, map[string]interface{}{
		"contract_id": funded.ID,
		"amount":      funded.Amount,
		"currency":    funded.Currency,
	})

	return funded, nil
}

// Release выплачивает средства фрилансеру. Требует принятой сдачи
// работы, блокируется открытым спором. Комиссия платформы считается
// от суммы контракта с учётом Pro подписки фрилансера.
func (s *EscrowService) Release(ctx context.Context, userID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.GetContract(ctx, userID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can release the escrow")
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusReleased) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow can only be released from funded status")
	}

	accepted, err := s.contracts.HasAcceptedDelivery(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "release requires an accepted delivery")
	}

	freelancer, err := s.users.GetByID(ctx, contract.FreelancerID)
	if err != nil {
		return nil, err
	}

	fee, err := valueobject.ComputeFee(contract.Amount, freelancer.Pro)
	if err != nil {
		return nil, err
	}

	released, err := s.contracts.ReleaseEscrow(ctx, contractID, fee)
	if err != nil {
		return nil, mapEscrowError(err)
	}

	s.closeProject(ctx, released)

	if err := s.users.RecordCompletedProject(ctx, released.FreelancerID, trustBonusCompleted); err != nil {
		if logger.Log != nil {
			logger.Log.WithField("contract_id", released.ID).
				Warnf("escrow service: failed to record completed project: %v", err)
		}
	}

	s.notifier.Notify(ctx, released.FreelancerID, models.EventEscrowReleased, map[string]interface{}{
		"contract_id": released.ID,
		"net_amount":  fee.NetAmount,
		"fee_amount":  fee.FeeAmount,
		"currency":    released.Currency,
	})

	return released, nil
}

// Refund возвращает депозит клиенту. Блокируется открытым спором.
func (s *EscrowService) Refund(ctx context.Context, userID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.GetContract(ctx, userID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can request a refund")
	}

	current := valueobject.EscrowStatus(contract.EscrowStatus)
	if !current.CanTransitionTo(valueobject.EscrowStatusRefunded) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow can only be refunded from funded status")
	}

	refunded, err := s.contracts.RefundEscrow(ctx, contractID)
	if err != nil {
		return nil, mapEscrowError(err)
	}

	s.closeProject(ctx, refunded)

	s.notifier.Notify(ctx, refunded.FreelancerID, models.EventEscrowRefunded, map[string]interface{}{
		"contract_id": refunded.ID,
		"amount":      refunded.Amount,
		"currency":    refunded.Currency,
	})

	return refunded, nil
}

// closeProject закрывает проект после терминального перехода escrow.
// Ошибка не фатальна: контракт уже в терминальном статусе.
func (s *EscrowService) closeProject(ctx context.Context, contract *models.Contract) {
	project, err := s.projects.GetByID(ctx, contract.ProjectID)
	if err != nil {
		return
	}
	current := valueobject.ProjectStatus(project.Status)
	if !current.CanTransitionTo(valueobject.ProjectStatusClosed) {
		return
	}
	if err := s.projects.UpdateStatus(ctx, contract.ProjectID, current, valueobject.ProjectStatusClosed); err != nil {
		if logger.Log != nil {
			logger.Log.WithField("project_id", contract.ProjectID).
				Warnf("escrow service: failed to close project: %v", err)
		}
	}
}

// mapEscrowError переводит ошибки хранилища в коды ошибок API.
func mapEscrowError(err error) error {
	switch {
	case errors.Is(err, repository.ErrContractNotFound):
		return apperror.ErrContractNotFound
	case errors.Is(err, repository.ErrEscrowInvalidState):
		return apperror.New(apperror.ErrCodeInvalidState, "escrow transition not allowed from current status")
	case errors.Is(err, repository.ErrEscrowConflict):
		return apperror.New(apperror.ErrCodeConflict, "escrow status changed concurrently, retry")
	case errors.Is(err, repository.ErrDisputeBlocks):
		return apperror.New(apperror.ErrCodeInvalidState, "contract has an unresolved dispute")
	}
	return err
}
