package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/validation"
)

// DisputeRepository описывает зависимости DisputeService от слоя хранилища.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetOpenByContract(ctx context.Context, contractID uuid.UUID) (*models.Dispute, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Dispute, error)
	ListByParty(ctx context.Context, userID uuid.UUID) ([]models.Dispute, error)
	MarkInReview(ctx context.Context, id uuid.UUID) error
	AppendEvidence(ctx context.Context, id uuid.UUID, items []string) error
}

// DisputeResolver выполняет терминальный переход escrow по решению
// спора атомарно с закрытием самого спора.
type DisputeResolver interface {
	ResolveDisputeRelease(ctx context.Context, contractID, disputeID, resolvedBy uuid.UUID, resolution string, fee valueobject.FeeBreakdown) (*models.Contract, error)
	ResolveDisputeRefund(ctx context.Context, contractID, disputeID, resolvedBy uuid.UUID, resolution string) (*models.Contract, error)
}

// DisputeService управляет спорами по контрактам.
type DisputeService struct {
	repo      DisputeRepository
	contracts ContractRepository
	resolver  DisputeResolver
	users     UserRepository
	notifier  Notifier
}

func NewDisputeService(
	repo DisputeRepository,
	contracts ContractRepository,
	resolver DisputeResolver,
	users UserRepository,
	notifier Notifier,
) *DisputeService {
	return &DisputeService{
		repo:      repo,
		contracts: contracts,
		resolver:  resolver,
		users:     users,
		notifier:  notifier,
	}
}

// OpenDisputeInput содержит данные нового спора.
type OpenDisputeInput struct {
	ContractID uuid.UUID
	Reason     string
	Evidence   []string
}

// Open открывает спор. Открыть может любая сторона контракта,
// но только пока средства в escrow.
func (s *DisputeService) Open(ctx context.Context, userID uuid.UUID, in OpenDisputeInput) (*models.Dispute, error) {
	if err := validation.ValidateDisputeReason(in.Reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEvidence(in.Evidence); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	contract, err := s.contracts.GetByID(ctx, in.ContractID)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}

	if contract.ClientID != userID && contract.FreelancerID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only a contract party can open a dispute")
	}
	if contract.EscrowStatus != string(valueobject.EscrowStatusFunded) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "disputes can only be opened while the escrow is funded")
	}

	dispute := &models.Dispute{
		ContractID: in.ContractID,
		OpenedBy:   userID,
		Reason:     in.Reason,
		Evidence:   models.EvidenceList(in.Evidence),
	}
	if dispute.Evidence == nil {
		dispute.Evidence = models.EvidenceList{}
	}

	err = s.repo.Create(ctx, dispute)
	if errors.Is(err, repository.ErrDisputeDuplicate) {
		return nil, apperror.New(apperror.ErrCodeConflict, "contract already has an unresolved dispute")
	}
	if err != nil {
		return nil, err
	}

	counterparty := contract.ClientID
	if userID == contract.ClientID {
		counterparty = contract.FreelancerID
	}
	s.notifier.Notify(ctx, counterparty, models.EventDisputeOpened, map[string]interface{}{
		"contract_id": contract.ID,
		"dispute_id":  dispute.ID,
	})

	return dispute, nil
}

// Get возвращает спор стороне контракта.
func (s *DisputeService) Get(ctx context.Context, userID, disputeID uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.requireParty(ctx, userID, dispute.ContractID); err != nil {
		return nil, err
	}
	return dispute, nil
}

// ListByContract возвращает споры по контракту его сторонам.
func (s *DisputeService) ListByContract(ctx context.Context, userID, contractID uuid.UUID) ([]models.Dispute, error) {
	if _, err := s.requireParty(ctx, userID, contractID); err != nil {
		return nil, err
	}
	return s.repo.ListByContract(ctx, contractID)
}

// ListMine возвращает споры по всем контрактам пользователя.
func (s *DisputeService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Dispute, error) {
	return s.repo.ListByParty(ctx, userID)
}

// AddEvidence добавляет свидетельства к нерешённому спору.
func (s *DisputeService) AddEvidence(ctx context.Context, userID, disputeID uuid.UUID, items []string) (*models.Dispute, error) {
	if len(items) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "evidence items are required")
	}
	if err := validation.ValidateEvidence(items); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	dispute, err := s.Get(ctx, userID, disputeID)
	if err != nil {
		return nil, err
	}

	err = s.repo.AppendEvidence(ctx, disputeID, items)
	switch {
	case errors.Is(err, repository.ErrDisputeNotFound):
		return nil, apperror.ErrDisputeNotFound
	case errors.Is(err, repository.ErrDisputeResolved):
		return nil, apperror.New(apperror.ErrCodeInvalidState, "dispute is already resolved")
	case err != nil:
		return nil, err
	}

	dispute.Evidence = append(dispute.Evidence, items...)
	return dispute, nil
}

// Resolve закрывает спор решением арбитра: release выплачивает
// фрилансеру за вычетом комиссии, refund возвращает депозит клиенту.
// Переход escrow и закрытие спора атомарны.
func (s *DisputeService) Resolve(ctx context.Context, arbiterID, disputeID uuid.UUID, outcome, resolution string) (*models.Dispute, error) {
	if resolution == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "resolution text is required")
	}

	dispute, err := s.repo.GetByID(ctx, disputeID)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}

	if !valueobject.DisputeStatus(dispute.Status).Blocking() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "dispute is already resolved")
	}

	contract, err := s.contracts.GetByID(ctx, dispute.ContractID)
	if err != nil {
		return nil, err
	}

	// Решать спор может только арбитр, не сторона контракта
	if arbiterID == contract.ClientID || arbiterID == contract.FreelancerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "a contract party cannot arbitrate its own dispute")
	}

	switch outcome {
	case models.DisputeOutcomeRelease:
		freelancer, err := s.users.GetByID(ctx, contract.FreelancerID)
		if err != nil {
			return nil, err
		}
		fee, err := valueobject.ComputeFee(contract.Amount, freelancer.Pro)
		if err != nil {
			return nil, err
		}
		if _, err := s.resolver.ResolveDisputeRelease(ctx, contract.ID, disputeID, arbiterID, resolution, fee); err != nil {
			return nil, mapEscrowError(err)
		}
	case models.DisputeOutcomeRefund:
		if _, err := s.resolver.ResolveDisputeRefund(ctx, contract.ID, disputeID, arbiterID, resolution); err != nil {
			return nil, mapEscrowError(err)
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "outcome must be release or refund")
	}

	resolved, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	for _, party := range []uuid.UUID{contract.ClientID, contract.FreelancerID} {
		s.notifier.Notify(ctx, party, models.EventDisputeResolved, map[string]interface{}{
			"contract_id": contract.ID,
			"dispute_id":  disputeID,
			"outcome":     outcome,
		})
	}

	return resolved, nil
}

// MarkInReview переводит спор в рассмотрение арбитром. Как и в Resolve,
// сторона контракта арбитром быть не может.
func (s *DisputeService) MarkInReview(ctx context.Context, arbiterID, disputeID uuid.UUID) error {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return apperror.ErrDisputeNotFound
	}
	if err != nil {
		return err
	}

	contract, err := s.contracts.GetByID(ctx, dispute.ContractID)
	if err != nil {
		return err
	}
	if arbiterID == contract.ClientID || arbiterID == contract.FreelancerID {
		return apperror.New(apperror.ErrCodeForbidden, "a contract party cannot arbitrate its own dispute")
	}

	err = s.repo.MarkInReview(ctx, disputeID)
	switch {
	case errors.Is(err, repository.ErrDisputeNotFound):
		return apperror.ErrDisputeNotFound
	case errors.Is(err, repository.ErrDisputeResolved):
		return apperror.New(apperror.ErrCodeInvalidState, "dispute is not open")
	}
	return err
}

func (s *DisputeService) requireParty(ctx context.Context, userID, contractID uuid.UUID) (*models.Contract, error) {
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
