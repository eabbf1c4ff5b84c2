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

// ProposalRepository описывает зависимости ProposalService от слоя хранилища.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) error
	Accept(ctx context.Context, proposalID uuid.UUID) (*models.Contract, error)
}

// ProposalService управляет откликами и их принятием.
type ProposalService struct {
	repo     ProposalRepository
	projects ProjectRepository
	notifier Notifier
}

func NewProposalService(repo ProposalRepository, projects ProjectRepository, notifier Notifier) *ProposalService {
	return &ProposalService{
		repo:     repo,
		projects: projects,
		notifier: notifier,
	}
}

// SubmitProposalInput содержит данные нового отклика.
type SubmitProposalInput struct {
	ProjectID    uuid.UUID
	Amount       float64
	Currency     string
	TimelineDays int
	Scope        string
}

// Submit подаёт отклик фрилансера на открытый проект.
func (s *ProposalService) Submit(ctx context.Context, freelancer *models.User, in SubmitProposalInput) (*models.Proposal, error) {
	if freelancer.Role != models.RoleFreelancer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only freelancers can submit proposals")
	}

	if in.Amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "proposal amount must be positive")
	}
	if err := validation.ValidateTimeline(in.TimelineDays); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateProposalScope(in.Scope); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, apperror.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if project.ClientID == freelancer.ID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "cannot propose on your own project")
	}
	if project.Status != string(valueobject.ProjectStatusOpen) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "project is not accepting proposals")
	}

	currency := in.Currency
	if currency == "" {
		currency = project.Currency
	}

	proposal := &models.Proposal{
		ProjectID:    in.ProjectID,
		FreelancerID: freelancer.ID,
		Amount:       in.Amount,
		Currency:     currency,
		TimelineDays: in.TimelineDays,
		Scope:        in.Scope,
	}

	err = s.repo.Create(ctx, proposal)
	if errors.Is(err, repository.ErrProposalDuplicate) {
		return nil, apperror.New(apperror.ErrCodeConflict, "you already have an active proposal for this project")
	}
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// Get возвращает отклик. Видят его только фрилансер-автор и владелец проекта.
func (s *ProposalService) Get(ctx context.Context, userID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if errors.Is(err, repository.ErrProposalNotFound) {
		return nil, apperror.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}

	if proposal.FreelancerID != userID {
		project, err := s.projects.GetByID(ctx, proposal.ProjectID)
		if err != nil {
			return nil, err
		}
		if project.ClientID != userID {
			return nil, apperror.ErrForbidden
		}
	}
	return proposal, nil
}

// ListByProject возвращает отклики на проект его владельцу.
func (s *ProposalService) ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]models.Proposal, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, apperror.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the project owner can see its proposals")
	}
	return s.repo.ListByProject(ctx, projectID)
}

// ListMine возвращает отклики текущего фрилансера.
func (s *ProposalService) ListMine(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	return s.repo.ListByFreelancer(ctx, freelancerID)
}

// Accept принимает отклик от имени владельца проекта. Остальные
// sent-отклики отклоняются, проект уходит в работу, создаётся контракт
// с escrow в статусе pending. Всё атомарно на уровне хранилища.
func (s *ProposalService) Accept(ctx context.Context, userID, proposalID uuid.UUID) (*models.Contract, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if errors.Is(err, repository.ErrProposalNotFound) {
		return nil, apperror.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, apperror.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the project owner can accept proposals")
	}

	contract, err := s.repo.Accept(ctx, proposalID)
	switch {
	case errors.Is(err, repository.ErrProposalNotFound):
		return nil, apperror.ErrProposalNotFound
	case errors.Is(err, repository.ErrProposalNotSent):
		return nil, apperror.New(apperror.ErrCodeInvalidState, "proposal is no longer open for acceptance")
	case errors.Is(err, repository.ErrProjectStatusStale):
		return nil, apperror.New(apperror.ErrCodeConflict, "another proposal was accepted first")
	case err != nil:
		return nil, err
	}

	s.notifier.Notify(ctx, contract.FreelancerID, models.EventProposalAccepted, map[string]interface{}{
		"proposal_id": proposalID,
		"contract_id": contract.ID,
		"project_id":  contract.ProjectID,
	})

	return contract, nil
}

// Withdraw отзывает собственный отклик, пока он в статусе sent.
func (s *ProposalService) Withdraw(ctx context.Context, userID, proposalID uuid.UUID) (*models.Proposal, error) {
	return s.moveOwn(ctx, userID, proposalID, valueobject.ProposalStatusWithdrawn)
}

// Reject отклоняет отклик от имени владельца проекта.
func (s *ProposalService) Reject(ctx context.Context, userID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if errors.Is(err, repository.ErrProposalNotFound) {
		return nil, apperror.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the project owner can reject proposals")
	}

	if err := s.updateStatus(ctx, proposalID, valueobject.ProposalStatusRejected); err != nil {
		return nil, err
	}
	proposal.Status = string(valueobject.ProposalStatusRejected)

	s.notifier.Notify(ctx, proposal.FreelancerID, models.EventProposalRejected, map[string]interface{}{
		"proposal_id": proposalID,
		"project_id":  proposal.ProjectID,
	})
	return proposal, nil
}

func (s *ProposalService) moveOwn(ctx context.Context, userID, proposalID uuid.UUID, to valueobject.ProposalStatus) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if errors.Is(err, repository.ErrProposalNotFound) {
		return nil, apperror.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	if proposal.FreelancerID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the proposal author can withdraw it")
	}

	if err := s.updateStatus(ctx, proposalID, to); err != nil {
		return nil, err
	}
	proposal.Status = string(to)
	return proposal, nil
}

func (s *ProposalService) updateStatus(ctx context.Context, proposalID uuid.UUID, to valueobject.ProposalStatus) error {
	err := s.repo.UpdateStatus(ctx, proposalID, to)
	switch {
	case errors.Is(err, repository.ErrProposalNotFound):
		return apperror.ErrProposalNotFound
	case errors.Is(err, repository.ErrProposalNotSent):
		return apperror.New(apperror.ErrCodeInvalidState, "proposal is no longer in sent status")
	}
	return err
}
