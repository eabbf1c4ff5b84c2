package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectStatusStale = errors.New("project status changed concurrently")
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create сохраняет новый проект в статусе open.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (client_id, title, description, budget_min, budget_max, currency, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		project.ClientID, project.Title, project.Description,
		project.BudgetMin, project.BudgetMax, project.Currency, project.DeadlineAt,
	).Scan(&project.ID, &project.Status, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("project repository: create %w", err)
	}
	return nil
}

// GetByID возвращает проект со счётчиком откликов.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.GetContext(ctx, &project, `
		SELECT p.*,
		       (SELECT COUNT(*) FROM proposals pr WHERE pr.project_id = p.id AND pr.status != 'withdrawn') AS proposals_count
		FROM projects p
		WHERE p.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}
	return &project, nil
}

// List возвращает проекты по фильтру, новые первыми.
func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("p.client_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	query := `
		SELECT p.*,
		       (SELECT COUNT(*) FROM proposals pr WHERE pr.project_id = p.id AND pr.status != 'withdrawn') AS proposals_count
		FROM projects p
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}
	return projects, nil
}

// Update изменяет редактируемые поля проекта.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = $2, description = $3, budget_min = $4, budget_max = $5, deadline_at = $6, updated_at = NOW()
		WHERE id = $1
	`, project.ID, project.Title, project.Description, project.BudgetMin, project.BudgetMax, project.DeadlineAt)
	if err != nil {
		return fmt.Errorf("project repository: update %w", err)
	}
	return requireRowAffected(result, ErrProjectNotFound)
}

// UpdateStatus переводит проект в новый статус, проверяя текущий в WHERE.
// Проигравший гонку получает ErrProjectStatusStale.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.ProjectStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("project repository: update status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("project repository: update status %w", err)
		}
		if !exists {
			return ErrProjectNotFound
		}
		return ErrProjectStatusStale
	}
	return nil
}
