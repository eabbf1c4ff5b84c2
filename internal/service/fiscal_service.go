package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/nomadhub/nomadhub-backend/internal/fiscal"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

// FiscalService строит фискальные отчёты по леджеру пользователя.
type FiscalService struct {
	payments PaymentRepository
}

func NewFiscalService(payments PaymentRepository) *FiscalService {
	return &FiscalService{payments: payments}
}

// FiscalReport — отчёт за период с записями, попавшими в него.
type FiscalReport struct {
	Period       string               `json:"period"`
	Year         int                  `json:"year"`
	Month        int                  `json:"month,omitempty"`
	Quarter      *int                 `json:"quarter,omitempty"`
	Summary      fiscal.Summary       `json:"summary"`
	Transactions []models.Transaction `json:"transactions"`
}

// Report агрегирует леджер пользователя за период.
func (s *FiscalService) Report(ctx context.Context, userID uuid.UUID, kind string, year int, month time.Month, quarter int) (*FiscalReport, error) {
	period, err := fiscal.NewPeriod(kind, year, month, quarter)
	if err != nil {
		return nil, err
	}

	from, to := period.Range()
	transactions, err := s.payments.ListByUser(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}

	report := &FiscalReport{
		Period:       kind,
		Year:         year,
		Summary:      fiscal.Summarize(transactions, period),
		Transactions: transactions,
	}
	switch kind {
	case fiscal.PeriodMonthly:
		report.Month = int(month)
	case fiscal.PeriodQuarterly:
		q := quarter
		report.Quarter = &q
	}
	return report, nil
}

// ExportCSV выгружает леджер за период в CSV.
func (s *FiscalService) ExportCSV(ctx context.Context, w io.Writer, userID uuid.UUID, kind string, year int, month time.Month, quarter int) error {
	period, err := fiscal.NewPeriod(kind, year, month, quarter)
	if err != nil {
		return err
	}

	from, to := period.Range()
	transactions, err := s.payments.ListByUser(ctx, userID, &from, &to)
	if err != nil {
		return err
	}

	return fiscal.WriteCSV(w, transactions, period)
}
