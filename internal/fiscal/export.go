package fiscal

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nomadhub/nomadhub-backend/internal/models"
)

// WriteCSV выгружает записи леджера за период и итоговую строку summary.
// Формат: id, created_at, type, amount, currency, contract_id, description.
func WriteCSV(w io.Writer, transactions []models.Transaction, period Period) error {
	filtered := Filter(transactions, period)
	summary := Summarize(transactions, period)

	cw := csv.NewWriter(w)

	header := []string{"id", "created_at", "type", "amount", "currency", "contract_id", "description"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("fiscal: write csv header: %w", err)
	}

	for _, tx := range filtered {
		contractID := ""
		if tx.ContractID != nil {
			contractID = tx.ContractID.String()
		}
		record := []string{
			tx.ID.String(),
			tx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			tx.Type,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Currency,
			contractID,
			tx.Meta.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("fiscal: write csv record: %w", err)
		}
	}

	totals := []string{
		"total", "", "",
		fmt.Sprintf("%.2f", summary.Balance), "", "",
		fmt.Sprintf("earnings=%.2f fees=%.2f withdrawals=%.2f",
			summary.Earnings, summary.Fees, summary.Withdrawals),
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("fiscal: write csv totals: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
