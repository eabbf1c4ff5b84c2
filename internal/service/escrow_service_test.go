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

type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Contract, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *mockContractRepo) FundEscrow(ctx context.Context, id uuid.UUID, method, txHash string) (*models.Contract, error) {
	args := m.Called(ctx, id, method, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) ReleaseEscrow(ctx context.Context, id uuid.UUID, fee valueobject.FeeBreakdown) (*models.Contract, error) {
	args := m.Called(ctx, id, fee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) RefundEscrow(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) HasAcceptedDelivery(ctx context.Context, contractID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID)
	return args.Bool(0), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) SetVerified(ctx context.Context, id uuid.UUID, trustBonus int) error {
	args := m.Called(ctx, id, trustBonus)
	return args.Error(0)
}

func (m *mockUserRepo) RecordCompletedProject(ctx context.Context, id uuid.UUID, trustBonus int) error {
	args := m.Called(ctx, id, trustBonus)
	return args.Error(0)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func escrowFixture() (*models.Contract, uuid.UUID, uuid.UUID) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	contract := &models.Contract{
		ID:           uuid.New(),
		ProjectID:    uuid.New(),
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Amount:       1000,
		Currency:     "USD",
		EscrowStatus: string(valueobject.EscrowStatusPending),
	}
	return contract, clientID, freelancerID
}

func TestEscrowService_Fund_Success(t *testing.T) {
	contracts := new(mockContractRepo)
	gateway := new(mockGateway)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), gateway, NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	funded := *contract
	funded.EscrowStatus = string(valueobject.EscrowStatusFunded)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	gateway.On("Settle", ctx, "pix", 1000.0, "USD").Return("sbx_hash", nil)
	contracts.On("FundEscrow", ctx, contract.ID, "pix", "sbx_hash").Return(&funded, nil)

	result, err := svc.Fund(ctx, clientID, contract.ID, "pix")
	assert.NoError(t, err)
	assert.Equal(t, string(valueobject.EscrowStatusFunded), result.EscrowStatus)
	contracts.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestEscrowService_Fund_OnlyClient(t *testing.T) {
	contracts := new(mockContractRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, _, freelancerID := escrowFixture()
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := svc.Fund(ctx, freelancerID, contract.ID, "pix")
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestEscrowService_Fund_AlreadyFunded(t *testing.T) {
	contracts := new(mockContractRepo)
	gateway := new(mockGateway)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), gateway, NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := svc.Fund(ctx, clientID, contract.ID, "paypal")
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	gateway.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEscrowService_Fund_InvalidMethod(t *testing.T) {
	svc := NewEscrowService(new(mockContractRepo), new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})

	_, err := svc.Fund(context.Background(), uuid.New(), uuid.New(), "cash")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestEscrowService_Release_Success(t *testing.T) {
	contracts := new(mockContractRepo)
	users := new(mockUserRepo)
	projects := new(mockProjectRepo)
	svc := NewEscrowService(contracts, users, projects, new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, freelancerID := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)
	released := *contract
	released.EscrowStatus = string(valueobject.EscrowStatusReleased)

	// 1000 без Pro — ступень 7%.
	fee, _ := valueobject.ComputeFee(1000, false)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("HasAcceptedDelivery", ctx, contract.ID).Return(true, nil)
	users.On("GetByID", ctx, freelancerID).Return(&models.User{ID: freelancerID, Pro: false}, nil)
	contracts.On("ReleaseEscrow", ctx, contract.ID, fee).Return(&released, nil)
	projects.On("GetByID", ctx, contract.ProjectID).
		Return(&models.Project{ID: contract.ProjectID, Status: string(valueobject.ProjectStatusInProgress)}, nil)
	projects.On("UpdateStatus", ctx, contract.ProjectID, valueobject.ProjectStatusInProgress, valueobject.ProjectStatusClosed).
		Return(nil)
	users.On("RecordCompletedProject", ctx, freelancerID, trustBonusCompleted).Return(nil)

	result, err := svc.Release(ctx, clientID, contract.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(valueobject.EscrowStatusReleased), result.EscrowStatus)
	contracts.AssertExpectations(t)
	users.AssertExpectations(t)
}

// Pro подписка фрилансера снижает процент комиссии.
func TestEscrowService_Release_ProFee(t *testing.T) {
	contracts := new(mockContractRepo)
	users := new(mockUserRepo)
	projects := new(mockProjectRepo)
	svc := NewEscrowService(contracts, users, projects, new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, freelancerID := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)
	released := *contract
	released.EscrowStatus = string(valueobject.EscrowStatusReleased)

	proFee, _ := valueobject.ComputeFee(1000, true)
	assert.Equal(t, 5.0, proFee.FeePercentage)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("HasAcceptedDelivery", ctx, contract.ID).Return(true, nil)
	users.On("GetByID", ctx, freelancerID).Return(&models.User{ID: freelancerID, Pro: true}, nil)
	contracts.On("ReleaseEscrow", ctx, contract.ID, proFee).Return(&released, nil)
	projects.On("GetByID", ctx, contract.ProjectID).
		Return(&models.Project{ID: contract.ProjectID, Status: string(valueobject.ProjectStatusClosed)}, nil)
	users.On("RecordCompletedProject", ctx, freelancerID, trustBonusCompleted).Return(nil)

	_, err := svc.Release(ctx, clientID, contract.ID)
	assert.NoError(t, err)
	contracts.AssertExpectations(t)
}

func TestEscrowService_Release_RequiresAcceptedDelivery(t *testing.T) {
	contracts := new(mockContractRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("HasAcceptedDelivery", ctx, contract.ID).Return(false, nil)

	_, err := svc.Release(ctx, clientID, contract.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	contracts.AssertNotCalled(t, "ReleaseEscrow", mock.Anything, mock.Anything, mock.Anything)
}

func TestEscrowService_Release_NotFunded(t *testing.T) {
	contracts := new(mockContractRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := svc.Release(ctx, clientID, contract.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

// Открытый спор блокирует release на уровне хранилища,
// сервис переводит это в INVALID_STATE.
func TestEscrowService_Release_BlockedByDispute(t *testing.T) {
	contracts := new(mockContractRepo)
	users := new(mockUserRepo)
	svc := NewEscrowService(contracts, users, new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, freelancerID := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)

	fee, _ := valueobject.ComputeFee(1000, false)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("HasAcceptedDelivery", ctx, contract.ID).Return(true, nil)
	users.On("GetByID", ctx, freelancerID).Return(&models.User{ID: freelancerID}, nil)
	contracts.On("ReleaseEscrow", ctx, contract.ID, fee).Return(nil, repository.ErrDisputeBlocks)

	_, err := svc.Release(ctx, clientID, contract.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEscrowService_Refund_Success(t *testing.T) {
	contracts := new(mockContractRepo)
	projects := new(mockProjectRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), projects, new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)
	refunded := *contract
	refunded.EscrowStatus = string(valueobject.EscrowStatusRefunded)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("RefundEscrow", ctx, contract.ID).Return(&refunded, nil)
	projects.On("GetByID", ctx, contract.ProjectID).
		Return(&models.Project{ID: contract.ProjectID, Status: string(valueobject.ProjectStatusInProgress)}, nil)
	projects.On("UpdateStatus", ctx, contract.ProjectID, valueobject.ProjectStatusInProgress, valueobject.ProjectStatusClosed).
		Return(nil)

	result, err := svc.Refund(ctx, clientID, contract.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(valueobject.EscrowStatusRefunded), result.EscrowStatus)
}

// Параллельный терминальный переход по тому же контракту — CONFLICT.
func TestEscrowService_Refund_Conflict(t *testing.T) {
	contracts := new(mockContractRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, _ := escrowFixture()
	contract.EscrowStatus = string(valueobject.EscrowStatusFunded)

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	contracts.On("RefundEscrow", ctx, contract.ID).Return(nil, repository.ErrEscrowConflict)

	_, err := svc.Refund(ctx, clientID, contract.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestEscrowService_GetContract_PartyOnly(t *testing.T) {
	contracts := new(mockContractRepo)
	svc := NewEscrowService(contracts, new(mockUserRepo), new(mockProjectRepo), new(mockGateway), NopNotifier{})
	ctx := context.Background()

	contract, clientID, freelancerID := escrowFixture()
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)

	_, err := svc.GetContract(ctx, clientID, contract.ID)
	assert.NoError(t, err)

	_, err = svc.GetContract(ctx, freelancerID, contract.ID)
	assert.NoError(t, err)

	_, err = svc.GetContract(ctx, uuid.New(), contract.ID)
	assert.True(t, apperror.IsForbidden(err))
}
