package fiscal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

func tx(txType string, amount float64, createdAt time.Time) models.Transaction {
	return models.Transaction{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      txType,
		Amount:    amount,
		Currency:  "USD",
		CreatedAt: createdAt,
	}
}

func TestNewPeriod_Validation(t *testing.T) {
	_, err := NewPeriod(PeriodMonthly, 2026, time.March, 0)
	assert.NoError(t, err)

	_, err = NewPeriod(PeriodMonthly, 2026, time.Month(13), 0)
	assert.Error(t, err)

	_, err = NewPeriod(PeriodQuarterly, 2026, 0, 3)
	assert.NoError(t, err)

	_, err = NewPeriod(PeriodQuarterly, 2026, 0, 4)
	assert.Error(t, err)

	_, err = NewPeriod(PeriodYearly, 2026, 0, 0)
	assert.NoError(t, err)

	_, err = NewPeriod("weekly", 2026, time.March, 0)
	assert.Error(t, err)

	_, err = NewPeriod(PeriodYearly, 1999, 0, 0)
	assert.Error(t, err)
}

// Полуинтервал [from, to): начало включается, конец — нет.
func TestPeriod_Range_HalfOpen(t *testing.T) {
	p, err := NewPeriod(PeriodMonthly, 2026, time.March, 0)
	assert.NoError(t, err)

	from, to := p.Range()
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), to)

	assert.True(t, p.Contains(from))
	assert.True(t, p.Contains(to.Add(-time.Second)))
	assert.False(t, p.Contains(to))
	assert.False(t, p.Contains(from.Add(-time.Second)))
}

func TestPeriod_Range_Quarterly(t *testing.T) {
	p, err := NewPeriod(PeriodQuarterly, 2026, 0, 2)
	assert.NoError(t, err)

	from, to := p.Range()
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestQuarterOf(t *testing.T) {
	assert.Equal(t, 0, QuarterOf(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, QuarterOf(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, QuarterOf(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, QuarterOf(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, QuarterOf(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestSummarize(t *testing.T) {
	p, err := NewPeriod(PeriodMonthly, 2026, time.May, 0)
	assert.NoError(t, err)

	inPeriod := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	transactions := []models.Transaction{
		tx(models.TransactionTypePayout, 950, inPeriod),
		tx(models.TransactionTypeFee, -50, inPeriod),
		tx(models.TransactionTypeWithdraw, -300, inPeriod),
		tx(models.TransactionTypeDeposit, 200, inPeriod),
		tx(models.TransactionTypePayout, 10000, outside),
	}

	s := Summarize(transactions, p)
	assert.InDelta(t, 1150.0, s.Earnings, 0.001)
	assert.InDelta(t, 50.0, s.Fees, 0.001)
	assert.InDelta(t, 300.0, s.Withdrawals, 0.001)
	assert.InDelta(t, s.Earnings-s.Fees-s.Withdrawals, s.Balance, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	p, err := NewPeriod(PeriodYearly, 2026, 0, 0)
	assert.NoError(t, err)

	s := Summarize(nil, p)
	assert.Equal(t, 0.0, s.Earnings)
	assert.Equal(t, 0.0, s.Balance)
}

func TestFilter_PreservesOrder(t *testing.T) {
	p, err := NewPeriod(PeriodMonthly, 2026, time.May, 0)
	assert.NoError(t, err)

	first := tx(models.TransactionTypePayout, 100, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	second := tx(models.TransactionTypeFee, -10, time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC))
	outside := tx(models.TransactionTypePayout, 999, time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC))

	filtered := Filter([]models.Transaction{outside, first, second}, p)
	assert.Len(t, filtered, 2)
	assert.Equal(t, first.ID, filtered[0].ID)
	assert.Equal(t, second.ID, filtered[1].ID)
}
