package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/validation"
)

// Бонусы trust score
const (
	trustBonusVerification = 20
	trustBonusCompleted    = 2
)

// UserRepository описывает зависимости UserService от слоя хранилища.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetVerified(ctx context.Context, id uuid.UUID, trustBonus int) error
	RecordCompletedProject(ctx context.Context, id uuid.UUID, trustBonus int) error
}

// UserService управляет профилями пользователей.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// UpdateProfileInput содержит редактируемые поля профиля.
type UpdateProfileInput struct {
	Username *string
	Country  *string
	Pro      *bool
}

// GetProfile возвращает профиль пользователя.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile изменяет профиль владельца.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		user.Username = *in.Username
	}
	if in.Country != nil {
		user.Country = in.Country
	}
	if in.Pro != nil {
		user.Pro = *in.Pro
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Verify помечает пользователя верифицированным и начисляет trust score.
// Повторная верификация бонус не начисляет.
func (s *UserService) Verify(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Verified {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "user is already verified")
	}

	if err := s.repo.SetVerified(ctx, userID, trustBonusVerification); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

// RecordCompletedProject фиксирует успешное завершение проекта фрилансером.
func (s *UserService) RecordCompletedProject(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.RecordCompletedProject(ctx, userID, trustBonusCompleted)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperror.ErrUserNotFound
	}
	return err
}
