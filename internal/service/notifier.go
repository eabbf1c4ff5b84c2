package service

import (
	"context"

	"github.com/google/uuid"
)

// Notifier доставляет событие пользователю: в ленту уведомлений
// и, при активном соединении, по WebSocket. Доставка best-effort,
// бизнес-операции от её ошибок не зависят.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data map[string]interface{})
}

// NopNotifier игнорирует события. Используется в тестах.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, data map[string]interface{}) {
}
