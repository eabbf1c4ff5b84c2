package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nomadhub/nomadhub-backend/internal/domain/valueobject"
	"github.com/nomadhub/nomadhub-backend/internal/models"
)

func escrowContract(amount float64) *models.Contract {
	return &models.Contract{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Amount:       amount,
		Currency:     "USD",
	}
}

// По леджеру фрилансер получает ровно чистую выплату: payout на полную
// сумму плюс отрицательная комиссия.
func TestReleaseLedger_FreelancerGetsExactlyNet(t *testing.T) {
	contract := escrowContract(1000)
	fee, err := valueobject.ComputeFee(contract.Amount, false)
	assert.NoError(t, err)

	rows := releaseLedger(contract, fee, "escrow released")
	assert.Len(t, rows, 2)

	var sum float64
	for _, row := range rows {
		assert.Equal(t, contract.FreelancerID, row.UserID)
		assert.Equal(t, &contract.ID, row.ContractID)
		sum += row.Amount
	}
	assert.InDelta(t, fee.NetAmount, sum, 1e-9)

	assert.Equal(t, models.TransactionTypePayout, rows[0].Type)
	assert.Equal(t, 1000.0, rows[0].Amount)
	assert.Equal(t, models.TransactionTypeFee, rows[1].Type)
	assert.Equal(t, -70.0, rows[1].Amount)
}

func TestReleaseLedger_ProTier(t *testing.T) {
	contract := escrowContract(1000)
	fee, err := valueobject.ComputeFee(contract.Amount, true)
	assert.NoError(t, err)

	rows := releaseLedger(contract, fee, "escrow released")
	assert.Equal(t, 1000.0, rows[0].Amount)
	assert.Equal(t, -50.0, rows[1].Amount)
	assert.InDelta(t, 950.0, rows[0].Amount+rows[1].Amount, 1e-9)
}

// Refund возвращает клиенту полную сумму ровно одной reversal-записью.
// Fund запись не добавляет, так что fund -> refund по леджеру даёт ноль.
func TestRefundLedger_SingleFullReversal(t *testing.T) {
	contract := escrowContract(1000)

	row := refundLedger(contract, "escrow refunded")
	assert.Equal(t, contract.ClientID, row.UserID)
	assert.Equal(t, models.TransactionTypeDeposit, row.Type)
	assert.Equal(t, 1000.0, row.Amount)
	assert.True(t, row.Meta.Reversal)
}

// Деньги контракта не теряются: чистая выплата фрилансеру плюс комиссия
// платформы составляют полную сумму.
func TestReleaseLedger_Conservation(t *testing.T) {
	for _, amount := range []float64{100, 500, 500.01, 2000, 5000} {
		contract := escrowContract(amount)
		fee, err := valueobject.ComputeFee(amount, false)
		assert.NoError(t, err)

		rows := releaseLedger(contract, fee, "escrow released")
		freelancerNet := rows[0].Amount + rows[1].Amount
		assert.InDelta(t, amount, freelancerNet+fee.FeeAmount, 1e-9)
	}
}
