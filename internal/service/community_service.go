package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
	"github.com/nomadhub/nomadhub-backend/internal/repository"
	"github.com/nomadhub/nomadhub-backend/internal/validation"
)

// CommunityRepository описывает зависимости CommunityService от слоя хранилища.
type CommunityRepository interface {
	Create(ctx context.Context, post *models.CommunityPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	List(ctx context.Context, tag string, limit, offset int) ([]models.CommunityPost, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

// CommunityService управляет лентой сообщества.
type CommunityService struct {
	repo CommunityRepository
}

func NewCommunityService(repo CommunityRepository) *CommunityService {
	return &CommunityService{repo: repo}
}

// CreatePostInput содержит данные нового поста.
type CreatePostInput struct {
	Title string
	Body  string
	Tags  []string
}

// CreatePost публикует пост.
func (s *CommunityService) CreatePost(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (*models.CommunityPost, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePostBody(in.Body); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(in.Tags) > validation.MaxPostTags {
		return nil, apperror.New(apperror.ErrCodeValidation, "too many tags")
	}

	post := &models.CommunityPost{
		AuthorID: authorID,
		Title:    in.Title,
		Body:     in.Body,
		Tags:     pq.StringArray(in.Tags),
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost возвращает пост.
func (s *CommunityService) GetPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, apperror.New(apperror.ErrCodeNotFound, "post not found")
	}
	return post, err
}

// ListPosts возвращает страницу ленты, опционально по тегу.
func (s *CommunityService) ListPosts(ctx context.Context, tag string, limit, offset int) ([]models.CommunityPost, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tag, limit, offset)
}

// DeletePost удаляет пост автора.
func (s *CommunityService) DeletePost(ctx context.Context, id, authorID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, authorID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "post not found")
	}
	return err
}
