package valueobject

import (
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
)

// Комиссия платформы: регрессивная по сумме, со скидкой для Pro подписки.
// Границы 500 и 2000 относятся к нижней ступени.
const (
	feeTierLow = 500.0
	feeTierMid = 2000.0

	standardPctLow = 9.0
	standardPctMid = 7.0
	standardPctTop = 5.0

	proPctLow = 6.0
	proPctMid = 5.0
	proPctTop = 3.0
)

// FeeBreakdown описывает расчёт комиссии для одной выплаты.
type FeeBreakdown struct {
	FeePercentage float64 `json:"fee_percentage"`
	FeeAmount     float64 `json:"fee_amount"`
	NetAmount     float64 `json:"net_amount"`
}

// ComputeFee возвращает процент, сумму комиссии и сумму к выплате.
// Нулевая сумма даёт нулевую комиссию, отрицательная — ошибка валидации.
func ComputeFee(amount float64, pro bool) (FeeBreakdown, error) {
	if amount < 0 {
		return FeeBreakdown{}, apperror.New(apperror.ErrCodeValidation, "amount cannot be negative")
	}

	pct := feePercentage(amount, pro)
	fee := amount * pct / 100

	return FeeBreakdown{
		FeePercentage: pct,
		FeeAmount:     fee,
		NetAmount:     amount - fee,
	}, nil
}

func feePercentage(amount float64, pro bool) float64 {
	switch {
	case amount <= feeTierLow:
		if pro {
			return proPctLow
		}
		return standardPctLow
	case amount <= feeTierMid:
		if pro {
			return proPctMid
		}
		return standardPctMid
	default:
		if pro {
			return proPctTop
		}
		return standardPctTop
	}
}
