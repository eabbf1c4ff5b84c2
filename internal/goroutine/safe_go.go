package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/nomadhub/nomadhub-backend/internal/logger"
)

// RecoveryHandler обрабатывает panic в горутинах.
type RecoveryHandler struct {
	logf func(format string, args ...interface{})
}

// NewRecoveryHandler создаёт обработчик с заданной функцией логирования.
func NewRecoveryHandler(logf func(format string, args ...interface{})) *RecoveryHandler {
	return &RecoveryHandler{logf: logf}
}

// SafeGo запускает горутину с перехватом panic.
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.logf("panic in goroutine: %v\nstack trace:\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.logf("panic in goroutine (with context): %v\nstack trace:\n%s", r, debug.Stack())
			}
		}()
		fn(ctx)
	}()
}

func defaultLogf(format string, args ...interface{}) {
	if logger.Log != nil {
		logger.Log.Errorf(format, args...)
	}
}

// DefaultRecoveryHandler — глобальный обработчик, пишет в общий логгер.
var DefaultRecoveryHandler = NewRecoveryHandler(defaultLogf)

// SafeGo — упрощённая функция для запуска безопасной горутины.
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext — упрощённая функция с контекстом.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
