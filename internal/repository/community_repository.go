package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

type CommunityRepository struct {
	db *sqlx.DB
}

func NewCommunityRepository(db *sqlx.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create сохраняет пост.
func (r *CommunityRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO community_posts (author_id, title, body, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, post.AuthorID, post.Title, post.Body, post.Tags,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("community repository: create %w", err)
	}
	return nil
}

// GetByID возвращает пост.
func (r *CommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.db.GetContext(ctx, &post, `SELECT * FROM community_posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("community repository: get by id %w", err)
	}
	return &post, nil
}

// List возвращает ленту постов, опционально отфильтрованную по тегу.
func (r *CommunityRepository) List(ctx context.Context, tag string, limit, offset int) ([]models.CommunityPost, error) {
	query := `SELECT * FROM community_posts`
	args := []interface{}{}

	if tag != "" {
		args = append(args, pq.StringArray{tag})
		query += fmt.Sprintf(" WHERE tags @> $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	posts := []models.CommunityPost{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("community repository: list %w", err)
	}
	return posts, nil
}

// Delete удаляет пост автора.
func (r *CommunityRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM community_posts WHERE id = $1 AND author_id = $2
	`, id, authorID)
	if err != nil {
		return fmt.Errorf("community repository: delete %w", err)
	}
	return requireRowAffected(result, ErrPostNotFound)
}
