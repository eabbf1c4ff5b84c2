package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nomadhub/nomadhub-backend/internal/logger"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
)

// Gateway — порт платёжного провайдера. Escrow-сервис не знает,
// кто на другой стороне: sandbox, PSP или крипто-шлюз.
type Gateway interface {
	// Settle проводит операцию у провайдера и возвращает её референс
	// (transaction hash или аналог).
	Settle(ctx context.Context, method string, amount float64, currency string) (string, error)
}

// SandboxGateway — провайдер для разработки и тестов: всегда успешен,
// выдаёт случайный hex-референс.
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// Settle генерирует settlement-референс вида sbx_<32 hex>.
func (g *SandboxGateway) Settle(ctx context.Context, method string, amount float64, currency string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sandbox gateway: %w", err)
	}
	return "sbx_" + hex.EncodeToString(buf), nil
}

// RetryingGateway оборачивает провайдера ограниченными повторами
// с нарастающей паузой. После исчерпания попыток ошибка всплывает
// как EXTERNAL_ERROR.
type RetryingGateway struct {
	inner    Gateway
	attempts int
	baseWait time.Duration
}

func NewRetryingGateway(inner Gateway, attempts int) *RetryingGateway {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingGateway{
		inner:    inner,
		attempts: attempts,
		baseWait: 200 * time.Millisecond,
	}
}

func (g *RetryingGateway) Settle(ctx context.Context, method string, amount float64, currency string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.attempts; attempt++ {
		ref, err := g.inner.Settle(ctx, method, amount, currency)
		if err == nil {
			return ref, nil
		}
		lastErr = err

		if logger.Log != nil {
			logger.Log.WithField("attempt", attempt).
				WithField("method", method).
				Warnf("payment gateway: settle failed: %v", err)
		}

		if attempt == g.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.baseWait * time.Duration(attempt)):
		}
	}

	return "", apperror.Wrap(lastErr, apperror.ErrCodeExternal, "payment provider unavailable")
}
