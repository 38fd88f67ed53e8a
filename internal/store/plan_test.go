package store

import (
	"errors"
	"testing"
	"time"

	"mn-electronics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchFixture(id int64, remaining int, cost int64, day int) models.InventoryBatch {
	return models.InventoryBatch{
		ID:          id,
		ItemID:      1,
		Remaining:   remaining,
		CostPerUnit: cost,
		PurchasedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
	}
}

func TestPlanConsumptionDrainsOldestFirst(t *testing.T) {
	batches := []models.InventoryBatch{
		batchFixture(1, 5, 100, 0),
		batchFixture(2, 3, 120, 1),
		batchFixture(3, 10, 90, 2),
	}

	lines, err := PlanConsumption(1, batches, 6)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, int64(1), lines[0].BatchID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, int64(100), lines[0].CostPerUnit)
	assert.Equal(t, int64(500), lines[0].LineTotal)

	assert.Equal(t, int64(2), lines[1].BatchID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, int64(120), lines[1].CostPerUnit)
	assert.Equal(t, int64(120), lines[1].LineTotal)
}

func TestPlanConsumptionExactExhaustion(t *testing.T) {
	batches := []models.InventoryBatch{
		batchFixture(1, 5, 100, 0),
		batchFixture(2, 3, 120, 1),
	}

	lines, err := PlanConsumption(1, batches, 8)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	assert.Equal(t, 8, total)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 3, lines[1].Quantity)
}

func TestPlanConsumptionInsufficientStock(t *testing.T) {
	batches := []models.InventoryBatch{
		batchFixture(1, 5, 100, 0),
		batchFixture(2, 3, 120, 1),
	}

	lines, err := PlanConsumption(1, batches, 9)
	assert.Nil(t, lines)

	var insufficient *models.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 9, insufficient.Requested)
	assert.Equal(t, 8, insufficient.Available)
	assert.Equal(t, 1, insufficient.Shortfall())
}

func TestPlanConsumptionInvalidQuantity(t *testing.T) {
	batches := []models.InventoryBatch{batchFixture(1, 5, 100, 0)}

	for _, qty := range []int{0, -3} {
		lines, err := PlanConsumption(1, batches, qty)
		assert.Nil(t, lines)

		var invalid *models.InvalidQuantityError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, qty, invalid.Requested)
	}
}

func TestPlanConsumptionSkipsEmptyBatches(t *testing.T) {
	batches := []models.InventoryBatch{
		batchFixture(1, 0, 100, 0),
		batchFixture(2, 4, 120, 1),
	}

	lines, err := PlanConsumption(1, batches, 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].BatchID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestPlanConsumptionTieBrokenByBatchID(t *testing.T) {
	// Same purchase timestamp; caller orders by (purchased_at, id) so the
	// lower ID comes first in the slice.
	batches := []models.InventoryBatch{
		batchFixture(7, 2, 100, 0),
		batchFixture(9, 2, 110, 0),
	}

	lines, err := PlanConsumption(1, batches, 3)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(7), lines[0].BatchID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(9), lines[1].BatchID)
	assert.Equal(t, 1, lines[1].Quantity)
}
