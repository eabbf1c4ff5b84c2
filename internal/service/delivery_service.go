package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
)

// DeliveryRepository описывает зависимости DeliveryService от слоя хранилища.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Delivery, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	AppendFile(ctx context.Context, id uuid.UUID, path string) error
}

// FileSaver сохраняет файл сдачи и возвращает его относительный путь.
type FileSaver interface {
	Save(ctx context.Context, contractID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
}

// DeliveryService управляет сдачами работ по контрактам.
type DeliveryService struct {
	repo      DeliveryRepository
	contracts ContractRepository
	files     FileSaver
	notifier  Notifier
}

func NewDeliveryService(repo DeliveryRepository, contracts ContractRepository, files FileSaver, notifier Notifier) *DeliveryService {
	return &DeliveryService{
		repo:      repo,
		contracts: contracts,
		files:     files,
		notifier:  notifier,
	}
}

// SubmitDeliveryInput содержит данные новой сдачи.
type SubmitDeliveryInput struct {
	ContractID uuid.UUID
	Checklist  models.Checklist
	Notes      *string
}

// Submit создаёт сдачу работы. Сдавать может только фрилансер
// контракта и только пока средства в escrow.
func (s *DeliveryService) Submit(ctx context.Context, userID uuid.UUID, in SubmitDeliveryInput) (*models.Delivery, error) {
	contract, err := s.getContract(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.FreelancerID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract freelancer can submit a delivery")
	}
	if contract.EscrowStatus != string(valueobject.EscrowStatusFunded) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "deliveries require a funded escrow")
	}

	delivery := &models.Delivery{
		ContractID: in.ContractID,
		Checklist:  in.Checklist,
		Files:      models.FileList{},
		Notes:      in.Notes,
	}
	if delivery.Checklist == nil {
		delivery.Checklist = models.Checklist{}
	}

	if err := s.repo.Create(ctx, delivery); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, contract.ClientID, models.EventDeliveryCreated, map[string]interface{}{
		"contract_id": contract.ID,
		"delivery_id": delivery.ID,
	})

	return delivery, nil
}

// List возвращает сдачи по контракту его сторонам.
func (s *DeliveryService) List(ctx context.Context, userID, contractID uuid.UUID) ([]models.Delivery, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID && contract.FreelancerID != userID {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByContract(ctx, contractID)
}

// Accept принимает сдачу от имени клиента. После принятия контракт
// готов к release.
func (s *DeliveryService) Accept(ctx context.Context, userID, deliveryID uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.GetByID(ctx, deliveryID)
	if errors.Is(err, repository.ErrDeliveryNotFound) {
		return nil, apperror.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}

	contract, err := s.getContract(ctx, delivery.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the client can accept a delivery")
	}

	accepted, err := s.repo.Accept(ctx, deliveryID)
	switch {
	case errors.Is(err, repository.ErrDeliveryNotFound):
		return nil, apperror.ErrDeliveryNotFound
	case errors.Is(err, repository.ErrDeliveryAlreadyAccepted):
		return nil, apperror.New(apperror.ErrCodeInvalidState, "delivery is already accepted")
	case err != nil:
		return nil, err
	}

	s.notifier.Notify(ctx, contract.FreelancerID, models.EventDeliveryAccepted, map[string]interface{}{
		"contract_id": contract.ID,
		"delivery_id": accepted.ID,
	})

	return accepted, nil
}

// AttachFile загружает файл к непринятой сдаче фрилансера.
func (s *DeliveryService) AttachFile(ctx context.Context, userID, deliveryID uuid.UUID, originalName string, r io.Reader) (*models.Delivery, error) {
	delivery, err := s.repo.GetByID(ctx, deliveryID)
	if errors.Is(err, repository.ErrDeliveryNotFound) {
		return nil, apperror.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}

	contract, err := s.getContract(ctx, delivery.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.FreelancerID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the contract freelancer can attach files")
	}
	if delivery.Accepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "delivery is already accepted")
	}

	path, _, err := s.files.Save(ctx, contract.ID, originalName, r)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AppendFile(ctx, deliveryID, path); err != nil {
		return nil, err
	}

	delivery.Files = append(delivery.Files, path)
	return delivery, nil
}

func (s *DeliveryService) getContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if errors.Is(err, repository.ErrContractNotFound) {
		return nil, apperror.ErrContractNotFound
	}
	return contract, err
}
