package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFee_StandardTiers(t *testing.T) {
	fee, err := ComputeFee(400, false)
	assert.NoError(t, err)
	assert.Equal(t, 9.0, fee.FeePercentage)
	assert.InDelta(t, 36.0, fee.FeeAmount, 0.001)
	assert.InDelta(t, 364.0, fee.NetAmount, 0.001)

	fee, err = ComputeFee(1500, false)
	assert.NoError(t, err)
	assert.Equal(t, 7.0, fee.FeePercentage)
	assert.InDelta(t, 105.0, fee.FeeAmount, 0.001)

	fee, err = ComputeFee(5000, false)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, fee.FeePercentage)
	assert.InDelta(t, 250.0, fee.FeeAmount, 0.001)
	assert.InDelta(t, 4750.0, fee.NetAmount, 0.001)
}

func TestComputeFee_ProTiers(t *testing.T) {
	fee, err := ComputeFee(400, true)
	assert.NoError(t, err)
	assert.Equal(t, 6.0, fee.FeePercentage)

	fee, err = ComputeFee(1500, true)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, fee.FeePercentage)
	assert.InDelta(t, 75.0, fee.FeeAmount, 0.001)
	assert.InDelta(t, 1425.0, fee.NetAmount, 0.001)

	fee, err = ComputeFee(5000, true)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, fee.FeePercentage)
}

// Границы 500 и 2000 относятся к нижней ступени.
func TestComputeFee_TierBoundaries(t *testing.T) {
	fee, err := ComputeFee(500, false)
	assert.NoError(t, err)
	assert.Equal(t, 9.0, fee.FeePercentage)

	fee, err = ComputeFee(500.01, false)
	assert.NoError(t, err)
	assert.Equal(t, 7.0, fee.FeePercentage)

	fee, err = ComputeFee(2000, false)
	assert.NoError(t, err)
	assert.Equal(t, 7.0, fee.FeePercentage)

	fee, err = ComputeFee(2000.01, false)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, fee.FeePercentage)
}

func TestComputeFee_FeePlusNetEqualsAmount(t *testing.T) {
	amounts := []float64{0, 1, 499.99, 500, 777.77, 2000, 2500, 100000}
	for _, amount := range amounts {
		for _, pro := range []bool{false, true} {
			fee, err := ComputeFee(amount, pro)
			assert.NoError(t, err)
			assert.InDelta(t, amount, fee.FeeAmount+fee.NetAmount, 0.0001)
		}
	}
}

func TestComputeFee_ZeroAmount(t *testing.T) {
	fee, err := ComputeFee(0, false)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, fee.FeeAmount)
	assert.Equal(t, 0.0, fee.NetAmount)
}

func TestComputeFee_NegativeAmount(t *testing.T) {
	_, err := ComputeFee(-10, false)
	assert.Error(t, err)
}
