package fiscal

import (
	"math"
	"time"

	"github.com/nomadhub/nomadhub-backend/internal/models"
	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
)

// Периоды фискального отчёта
const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

// Period задаёт отчётный интервал. Month для monthly — 1..12,
// Quarter для quarterly — 0..3 (индекс квартала = месяц/3).
type Period struct {
	Kind    string
	Year    int
	Month   time.Month
	Quarter int
}

// Summary — агрегат леджера за период.
// Инвариант: Balance == Earnings - Fees - Withdrawals.
type Summary struct {
	Earnings    float64 `json:"earnings"`
	Fees        float64 `json:"fees"`
	Withdrawals float64 `json:"withdrawals"`
	Balance     float64 `json:"balance"`
}

// NewPeriod валидирует параметры отчётного периода.
func NewPeriod(kind string, year int, month time.Month, quarter int) (Period, error) {
	switch kind {
	case PeriodMonthly:
		if month < time.January || month > time.December {
			return Period{}, apperror.New(apperror.ErrCodeValidation, "month must be between 1 and 12")
		}
	case PeriodQuarterly:
		if quarter < 0 || quarter > 3 {
			return Period{}, apperror.New(apperror.ErrCodeValidation, "quarter must be between 0 and 3")
		}
	case PeriodYearly:
	default:
		return Period{}, apperror.New(apperror.ErrCodeValidation, "period must be monthly, quarterly or yearly")
	}
	if year < 2000 || year > 2200 {
		return Period{}, apperror.New(apperror.ErrCodeValidation, "year out of range")
	}
	return Period{Kind: kind, Year: year, Month: month, Quarter: quarter}, nil
}

// Range возвращает полуинтервал [from, to) периода в UTC.
func (p Period) Range() (time.Time, time.Time) {
	switch p.Kind {
	case PeriodMonthly:
		from := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0)
	case PeriodQuarterly:
		from := time.Date(p.Year, time.Month(p.Quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 3, 0)
	default:
		from := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
}

// Contains — предикат попадания записи в период.
func (p Period) Contains(t time.Time) bool {
	from, to := p.Range()
	t = t.UTC()
	return !t.Before(from) && t.Before(to)
}

// QuarterOf возвращает индекс квартала для момента времени (0..3).
func QuarterOf(t time.Time) int {
	return (int(t.Month()) - 1) / 3
}

// Summarize агрегирует записи леджера, попадающие в период.
// earnings — |payout| и |deposit|, fees — |fee|, withdrawals — |withdraw|;
// balance = earnings - fees - withdrawals.
func Summarize(transactions []models.Transaction, period Period) Summary {
	var s Summary
	for _, tx := range transactions {
		if !period.Contains(tx.CreatedAt) {
			continue
		}
		amount := math.Abs(tx.Amount)
		switch tx.Type {
		case models.TransactionTypePayout, models.TransactionTypeDeposit:
			s.Earnings += amount
		case models.TransactionTypeFee:
			s.Fees += amount
		case models.TransactionTypeWithdraw:
			s.Withdrawals += amount
		}
	}
	s.Balance = s.Earnings - s.Fees - s.Withdrawals
	return s
}

// Filter возвращает записи леджера, попадающие в период, в исходном порядке.
func Filter(transactions []models.Transaction, period Period) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if period.Contains(tx.CreatedAt) {
			out = append(out, tx)
		}
	}
	return out
}
