package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mn-electronics/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateInventoryItem creates a new inventory item
func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (name, stock_limit)
		VALUES ($1, $2)
		RETURNING id, updated_at`

	return s.db.GetContext(ctx, item, query, item.Name, item.StockLimit)
}

// GetInventoryItemByID retrieves an inventory item by ID
func (s *Store) GetInventoryItemByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "inventory item", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetInventoryItems retrieves all inventory items
func (s *Store) GetInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM inventory_items ORDER BY id")
	return items, err
}

// CreateInventoryBatch registers a purchase lot for an item
func (s *Store) CreateInventoryBatch(ctx context.Context, batch *models.InventoryBatch) error {
	query := `
		INSERT INTO inventory_batches (item_id, remaining, cost_per_unit, purchased_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return s.db.GetContext(ctx, &batch.ID, query,
		batch.ItemID, batch.Remaining, batch.CostPerUnit, batch.PurchasedAt)
}

// GetBatchesByItemID retrieves non-empty batches for an item in consumption order
func (s *Store) GetBatchesByItemID(ctx context.Context, itemID int64) ([]models.InventoryBatch, error) {
	var batches []models.InventoryBatch
	err := s.db.SelectContext(ctx, &batches,
		"SELECT * FROM inventory_batches WHERE item_id = $1 AND remaining > 0 ORDER BY purchased_at, id",
		itemID)
	return batches, err
}

// GetAvailableStock returns the total remaining quantity across all batches
func (s *Store) GetAvailableStock(ctx context.Context, itemID int64) (int, error) {
	var available int
	err := s.db.GetContext(ctx, &available,
		"SELECT COALESCE(SUM(remaining), 0) FROM inventory_batches WHERE item_id = $1", itemID)
	return available, err
}

// PlanConsumption walks batches in (purchased_at, id) ascending order and
// allocates the requested quantity oldest-first. Cost per unit is snapshotted
// from each batch. The input slice must already be sorted in consumption order.
func PlanConsumption(itemID int64, batches []models.InventoryBatch, requested int) ([]models.ConsumptionLine, error) {
	if requested <= 0 {
		return nil, &models.InvalidQuantityError{Requested: requested}
	}

	lines := make([]models.ConsumptionLine, 0, len(batches))
	remaining := requested

	for _, batch := range batches {
		if remaining == 0 {
			break
		}
		if batch.Remaining <= 0 {
			continue
		}

		take := remaining
		if batch.Remaining < take {
			take = batch.Remaining
		}

		lines = append(lines, models.ConsumptionLine{
			BatchID:     batch.ID,
			Quantity:    take,
			CostPerUnit: batch.CostPerUnit,
			LineTotal:   int64(take) * batch.CostPerUnit,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, &models.InsufficientStockError{
			ItemID:    itemID,
			Requested: requested,
			Available: requested - remaining,
		}
	}

	return lines, nil
}

// ConsumeFIFO deducts the requested quantity from the item's batches
// oldest-first inside a single transaction. The FOR UPDATE lock on the
// batch rows serializes concurrent consumers of the same item, so a batch
// can never be driven below zero. Either every decrement and every
// job_used_inventory upsert commits, or none do.
func (s *Store) ConsumeFIFO(ctx context.Context, jobID, itemID int64, quantity int) ([]models.ConsumptionLine, error) {
	if quantity <= 0 {
		return nil, &models.InvalidQuantityError{Requested: quantity}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)", itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &models.NotFoundError{Entity: "inventory item", ID: itemID}
	}

	var batches []models.InventoryBatch
	err = tx.SelectContext(ctx, &batches,
		"SELECT * FROM inventory_batches WHERE item_id = $1 AND remaining > 0 ORDER BY purchased_at, id FOR UPDATE",
		itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock batches: %w", err)
	}

	lines, err := PlanConsumption(itemID, batches, quantity)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		_, err = tx.ExecContext(ctx,
			"UPDATE inventory_batches SET remaining = remaining - $1 WHERE id = $2",
			line.Quantity, line.BatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement batch %d: %w", line.BatchID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO job_used_inventory (job_id, item_id, batch_id, quantity, total_cost)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (job_id, item_id, batch_id) DO UPDATE SET
				quantity = job_used_inventory.quantity + EXCLUDED.quantity,
				total_cost = job_used_inventory.total_cost + EXCLUDED.total_cost`,
			jobID, itemID, line.BatchID, line.Quantity, line.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to record used inventory: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE inventory_items SET updated_at = NOW() WHERE id = $1", itemID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return lines, nil
}

// GetUsedInventoryByJobID retrieves all parts drawn for a job
func (s *Store) GetUsedInventoryByJobID(ctx context.Context, jobID int64) ([]models.JobUsedInventory, error) {
	var used []models.JobUsedInventory
	err := s.db.SelectContext(ctx, &used,
		"SELECT * FROM job_used_inventory WHERE job_id = $1 ORDER BY item_id, batch_id", jobID)
	return used, err
}

// SumUsedInventoryCost returns the total parts cost recorded for a job
func (s *Store) SumUsedInventoryCost(ctx context.Context, jobID int64) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_cost), 0) FROM job_used_inventory WHERE job_id = $1", jobID)
	return total, err
}
