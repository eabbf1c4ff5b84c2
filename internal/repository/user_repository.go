package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create сохраняет нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, trust_score, verified, pro, rating, completed_projects, is_active, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Country,
	).Scan(&user.ID, &user.TrustScore, &user.Verified, &user.Pro, &user.Rating,
		&user.CompletedProjects, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// Update изменяет редактируемые поля профиля.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, country = $3, pro = $4, updated_at = NOW()
		WHERE id = $1
	`, user.ID, user.Username, user.Country, user.Pro)
	if err != nil {
		return fmt.Errorf("user repository: update %w", err)
	}
	return requireRowAffected(result, ErrUserNotFound)
}

// SetVerified отмечает пользователя верифицированным и поднимает trust score.
func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID, trustBonus int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET verified = TRUE,
		    trust_score = LEAST($2 + trust_score, $3),
		    updated_at = NOW()
		WHERE id = $1
	`, id, trustBonus, models.MaxTrustScore)
	if err != nil {
		return fmt.Errorf("user repository: set verified %w", err)
	}
	return requireRowAffected(result, ErrUserNotFound)
}

// RecordCompletedProject инкрементирует счётчик завершённых проектов
// и начисляет trust score за успешное завершение.
func (r *UserRepository) RecordCompletedProject(ctx context.Context, id uuid.UUID, trustBonus int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET completed_projects = completed_projects + 1,
		    trust_score = LEAST(trust_score + $2, $3),
		    updated_at = NOW()
		WHERE id = $1
	`, id, trustBonus, models.MaxTrustScore)
	if err != nil {
		return fmt.Errorf("user repository: record completed project %w", err)
	}
	return requireRowAffected(result, ErrUserNotFound)
}

// UpdateLastLoginAt фиксирует время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	return err
}

// ListSessions возвращает активные сессии пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`, userID)
	return sessions, err
}

// DeleteSessionByID удаляет сессию, если она принадлежит пользователю.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	return err
}

// requireRowAffected возвращает notFound, если UPDATE не затронул ни одной строки.
func requireRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
