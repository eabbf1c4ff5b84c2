package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProjectRepository описывает зависимости ProjectService от слоя хранилища.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) error
}

// ProjectService управляет жизненным циклом проектов.
type ProjectService struct {
	repo ProjectRepository
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// CreateProjectInput содержит данные нового проекта.
type CreateProjectInput struct {
	Title       string
	Description string
	BudgetMin   float64
	BudgetMax   float64
	Currency    string
	DeadlineAt  *time.Time
}

// Create публикует проект от имени клиента.
func (s *ProjectService) Create(ctx context.Context, client *models.User, in CreateProjectInput) (*models.Project, error) {
	if client.Role != models.RoleClient {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only clients can publish projects")
	}

	if err := validation.ValidateProjectTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateProjectDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudget(in.BudgetMin, in.BudgetMax); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	project := &models.Project{
		ClientID:    client.ID,
		Title:       in.Title,
		Description: in.Description,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		Currency:    currency,
		DeadlineAt:  in.DeadlineAt,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get возвращает проект.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, apperror.ErrProjectNotFound
	}
	return project, err
}

// List возвращает страницу проектов по фильтру.
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" {
		if _, err := valueobject.NewProjectStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, filter)
}

// UpdateProjectInput содержит редактируемые поля проекта.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	BudgetMin   *float64
	BudgetMax   *float64
	DeadlineAt  *time.Time
}

// Update изменяет открытый проект. Редактировать может только владелец,
// и только пока проект не ушёл в работу.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the project owner can edit it")
	}
	if project.Status != string(valueobject.ProjectStatusOpen) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "only open projects can be edited")
	}

	if in.Title != nil {
		if err := validation.ValidateProjectTitle(*in.Title); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		project.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.ValidateProjectDescription(*in.Description); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		project.Description = *in.Description
	}
	if in.BudgetMin != nil {
		project.BudgetMin = *in.BudgetMin
	}
	if in.BudgetMax != nil {
		project.BudgetMax = *in.BudgetMax
	}
	if err := validation.ValidateBudget(project.BudgetMin, project.BudgetMax); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.DeadlineAt != nil {
		project.DeadlineAt = in.DeadlineAt
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// Close переводит проект в closed по воле владельца.
func (s *ProjectService) Close(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the project owner can close it")
	}

	current := valueobject.ProjectStatus(project.Status)
	if !current.CanTransitionTo(valueobject.ProjectStatusClosed) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "project cannot be closed from its current status")
	}

	err = s.repo.UpdateStatus(ctx, projectID, current, valueobject.ProjectStatusClosed)
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return nil, apperror.ErrProjectNotFound
	case errors.Is(err, repository.ErrProjectStatusStale):
		return nil, apperror.New(apperror.ErrCodeConflict, "project status changed, retry")
	case err != nil:
		return nil, err
	}

	project.Status = string(valueobject.ProjectStatusClosed)
	return project, nil
}

// MoveStatus выполняет переход статуса проекта с проверкой допустимости.
func (s *ProjectService) MoveStatus(ctx context.Context, projectID uuid.UUID, from, to valueobject.ProjectStatus) error {
	if !from.CanTransitionTo(to) {
		return apperror.New(apperror.ErrCodeInvalidState, "project status transition not allowed")
	}
	err := s.repo.UpdateStatus(ctx, projectID, from, to)
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return apperror.ErrProjectNotFound
	case errors.Is(err, repository.ErrProjectStatusStale):
		return apperror.New(apperror.ErrCodeConflict, "project status changed, retry")
	}
	return err
}
