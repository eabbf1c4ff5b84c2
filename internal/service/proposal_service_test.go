package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
)

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, to valueobject.ProposalStatus) error {
	args := m.Called(ctx, id, to)
	return args.Error(0)
}

func (m *mockProposalRepo) Accept(ctx context.Context, proposalID uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func proposalFixture() (*models.User, *models.Project) {
	freelancer := &models.User{ID: uuid.New(), Role: models.RoleFreelancer}
	project := &models.Project{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Currency: "USD",
		Status:   string(valueobject.ProjectStatusOpen),
	}
	return freelancer, project
}

func TestProposalService_Submit_Success(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Proposal")).Return(nil)

	proposal, err := svc.Submit(ctx, freelancer, SubmitProposalInput{
		ProjectID:    project.ID,
		Amount:       800,
		TimelineDays: 14,
		Scope:        "Implement the API integration end to end",
	})
	assert.NoError(t, err)
	assert.Equal(t, freelancer.ID, proposal.FreelancerID)
	// Валюта по умолчанию берётся из проекта.
	assert.Equal(t, "USD", proposal.Currency)
	repo.AssertExpectations(t)
}

func TestProposalService_Submit_ClientForbidden(t *testing.T) {
	svc := NewProposalService(new(mockProposalRepo), new(mockProjectRepo), NopNotifier{})

	client := &models.User{ID: uuid.New(), Role: models.RoleClient}
	_, err := svc.Submit(context.Background(), client, SubmitProposalInput{ProjectID: uuid.New(), Amount: 100, TimelineDays: 7, Scope: "scope text long enough"})
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_Submit_OwnProject(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProposalService(new(mockProposalRepo), projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	project.ClientID = freelancer.ID
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Submit(ctx, freelancer, SubmitProposalInput{
		ProjectID:    project.ID,
		Amount:       500,
		TimelineDays: 7,
		Scope:        "Implement the API integration end to end",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_Submit_ProjectNotOpen(t *testing.T) {
	projects := new(mockProjectRepo)
	svc := NewProposalService(new(mockProposalRepo), projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	project.Status = string(valueobject.ProjectStatusInProgress)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Submit(ctx, freelancer, SubmitProposalInput{
		ProjectID:    project.ID,
		Amount:       500,
		TimelineDays: 7,
		Scope:        "Implement the API integration end to end",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

// Повторный активный отклик на тот же проект — CONFLICT.
func TestProposalService_Submit_Duplicate(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Proposal")).Return(repository.ErrProposalDuplicate)

	_, err := svc.Submit(ctx, freelancer, SubmitProposalInput{
		ProjectID:    project.ID,
		Amount:       500,
		TimelineDays: 7,
		Scope:        "Implement the API integration end to end",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProposalService_Accept_Success(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	proposal := &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		Amount:       800,
		Status:       string(valueobject.ProposalStatusSent),
	}
	contract := &models.Contract{
		ID:           uuid.New(),
		ProposalID:   proposal.ID,
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: freelancer.ID,
		Amount:       800,
		EscrowStatus: string(valueobject.EscrowStatusPending),
	}

	repo.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("Accept", ctx, proposal.ID).Return(contract, nil)

	result, err := svc.Accept(ctx, project.ClientID, proposal.ID)
	assert.NoError(t, err)
	assert.Equal(t, proposal.ID, result.ProposalID)
	assert.Equal(t, string(valueobject.EscrowStatusPending), result.EscrowStatus)
	repo.AssertExpectations(t)
}

func TestProposalService_Accept_NotOwner(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer.ID}

	repo.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)

	_, err := svc.Accept(ctx, uuid.New(), proposal.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

// Проигравший гонку принятия получает CONFLICT.
func TestProposalService_Accept_LostRace(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer.ID}

	repo.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("Accept", ctx, proposal.ID).Return(nil, repository.ErrProjectStatusStale)

	_, err := svc.Accept(ctx, project.ClientID, proposal.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProposalService_Accept_AlreadyDecided(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	freelancer, project := proposalFixture()
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer.ID}

	repo.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("Accept", ctx, proposal.ID).Return(nil, repository.ErrProposalNotSent)

	_, err := svc.Accept(ctx, project.ClientID, proposal.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestProposalService_Withdraw_OwnOnly(t *testing.T) {
	repo := new(mockProposalRepo)
	svc := NewProposalService(repo, new(mockProjectRepo), NopNotifier{})
	ctx := context.Background()

	proposal := &models.Proposal{
		ID:           uuid.New(),
		FreelancerID: uuid.New(),
		Status:       string(valueobject.ProposalStatusSent),
	}
	repo.On("GetByID", ctx, proposal.ID).Return(proposal, nil)
	repo.On("UpdateStatus", ctx, proposal.ID, valueobject.ProposalStatusWithdrawn).Return(nil)

	withdrawn, err := svc.Withdraw(ctx, proposal.FreelancerID, proposal.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(valueobject.ProposalStatusWithdrawn), withdrawn.Status)

	_, err = svc.Withdraw(ctx, uuid.New(), proposal.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestProposalService_ListByProject_OwnerOnly(t *testing.T) {
	repo := new(mockProposalRepo)
	projects := new(mockProjectRepo)
	svc := NewProposalService(repo, projects, NopNotifier{})
	ctx := context.Background()

	_, project := proposalFixture()
	projects.On("GetByID", ctx, project.ID).Return(project, nil)
	repo.On("ListByProject", ctx, project.ID).Return([]models.Proposal{}, nil)

	_, err := svc.ListByProject(ctx, project.ClientID, project.ID)
	assert.NoError(t, err)

	_, err = svc.ListByProject(ctx, uuid.New(), project.ID)
	assert.True(t, apperror.IsForbidden(err))
}
