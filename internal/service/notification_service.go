package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/goroutine"
	"github.com/nomadhub/nomadhub-backend/internal/logger"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

// NotificationRepository описывает зависимости NotificationService от слоя хранилища.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Pusher доставляет событие по открытому WebSocket соединению.
type Pusher interface {
	Push(userID uuid.UUID, payload []byte)
}

// NotificationService сохраняет уведомления в ленту и пушит их
// по WebSocket. Реализует Notifier для остальных сервисов.
type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
	}
}

// Notify сохраняет событие и пушит его получателю. Доставка best-effort:
// ошибки логируются, но не всплывают в вызвавшую бизнес-операцию.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, event string, data map[string]interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
		"at":    time.Now().UTC(),
	})
	if err != nil {
		if logger.Log != nil {
			logger.Log.Errorf("notification service: marshal payload: %v", err)
		}
		return
	}

	notification := &models.Notification{
		UserID:  userID,
		Payload: payload,
	}

	goroutine.SafeGo(func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Create(saveCtx, notification); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", userID).
					Errorf("notification service: save notification: %v", err)
			}
		}

		if s.pusher != nil {
			s.pusher.Push(userID, payload)
		}
	})
}

// List возвращает ленту уведомлений пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
