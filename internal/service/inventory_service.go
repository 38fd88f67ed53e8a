package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mn-electronics/internal/broker"
	"mn-electronics/internal/models"
	"mn-electronics/internal/redisclient"
	"mn-electronics/internal/store"
	"mn-electronics/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService handles inventory items, purchase batches and FIFO
// consumption of parts by repair jobs
type InventoryService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *InventoryService {
	return &InventoryService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateItemRequest represents a request to create an inventory item
type CreateItemRequest struct {
	Name       string `json:"name" binding:"required"`
	StockLimit int    `json:"stock_limit" binding:"required,min=1"`
}

// RegisterBatchRequest represents a purchase restock for an item
type RegisterBatchRequest struct {
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	CostPerUnit int64  `json:"cost_per_unit" binding:"required,min=0"`
	PurchasedAt string `json:"purchased_at,omitempty"` // RFC 3339; defaults to now
}

// ConsumeRequest represents a request to draw parts for a job
type ConsumeRequest struct {
	JobID    int64 `json:"job_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required"`
}

// ItemWithStock is an inventory item with its current available total
type ItemWithStock struct {
	models.InventoryItem
	Available int `json:"available"`
}

// CreateItem creates a new inventory item
func (is *InventoryService) CreateItem(ctx context.Context, req *CreateItemRequest) (*models.InventoryItem, error) {
	item := &models.InventoryItem{
		Name:       req.Name,
		StockLimit: req.StockLimit,
	}

	if err := is.store.CreateInventoryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	is.logger.Info("Inventory item created",
		zap.Int64("item_id", item.ID),
		zap.String("name", item.Name))
	return item, nil
}

// RegisterBatch records a purchase lot for an item
func (is *InventoryService) RegisterBatch(ctx context.Context, itemID int64, req *RegisterBatchRequest) (*models.InventoryBatch, error) {
	if _, err := is.store.GetInventoryItemByID(ctx, itemID); err != nil {
		return nil, err
	}

	purchasedAt := time.Now()
	if req.PurchasedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PurchasedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid purchased_at: %w", err)
		}
		purchasedAt = parsed
	}

	batch := &models.InventoryBatch{
		ItemID:      itemID,
		Remaining:   req.Quantity,
		CostPerUnit: req.CostPerUnit,
		PurchasedAt: purchasedAt,
	}

	if err := is.store.CreateInventoryBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to register batch: %w", err)
	}

	is.refreshStockCache(ctx, itemID)

	is.logger.Info("Inventory batch registered",
		zap.Int64("item_id", itemID),
		zap.Int64("batch_id", batch.ID),
		zap.Int("quantity", batch.Remaining))
	return batch, nil
}

// ConsumeParts draws the requested quantity for a job, oldest batch
// first, and returns the per-batch consumption lines
func (is *InventoryService) ConsumeParts(ctx context.Context, itemID int64, req *ConsumeRequest) ([]models.ConsumptionLine, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.ConsumeParts")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ConsumptionLatency.Observe(time.Since(start).Seconds())
	}()

	if req.Quantity <= 0 {
		util.ConsumptionFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, &models.InvalidQuantityError{Requested: req.Quantity}
	}

	if _, err := is.store.GetJobByID(ctx, req.JobID); err != nil {
		util.ConsumptionFailedTotal.WithLabelValues("job_not_found").Inc()
		return nil, err
	}

	lines, err := is.store.ConsumeFIFO(ctx, req.JobID, itemID, req.Quantity)
	if err != nil {
		var insufficient *models.InsufficientStockError
		var notFound *models.NotFoundError
		switch {
		case errors.As(err, &insufficient):
			util.ConsumptionFailedTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.As(err, &notFound):
			util.ConsumptionFailedTotal.WithLabelValues("item_not_found").Inc()
		default:
			util.ConsumptionFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	util.PartsConsumedTotal.Add(float64(req.Quantity))
	is.logger.Info("Parts consumed",
		zap.Int64("job_id", req.JobID),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", req.Quantity),
		zap.Int("batches", len(lines)))

	event := &models.PartsConsumedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePartsConsumed,
			Timestamp: time.Now(),
		},
		JobID:  req.JobID,
		ItemID: itemID,
		Lines:  lines,
	}

	if err := is.eventPublisher.PublishPartsConsumed(ctx, event); err != nil {
		is.logger.Error("Failed to publish PartsConsumed event", zap.Error(err))
	}

	is.refreshStockCache(ctx, itemID)

	return lines, nil
}

// GetItem retrieves an item with its available total. The redis cache
// serves reads when warm; the database is the source of truth.
func (is *InventoryService) GetItem(ctx context.Context, itemID int64) (*ItemWithStock, error) {
	item, err := is.store.GetInventoryItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	available, err := is.AvailableStock(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return &ItemWithStock{InventoryItem: *item, Available: available}, nil
}

// ListItems retrieves all items with their available totals
func (is *InventoryService) ListItems(ctx context.Context) ([]ItemWithStock, error) {
	items, err := is.store.GetInventoryItems(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ItemWithStock, 0, len(items))
	for _, item := range items {
		available, err := is.AvailableStock(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, ItemWithStock{InventoryItem: item, Available: available})
	}
	return result, nil
}

// AvailableStock returns the total remaining quantity for an item
func (is *InventoryService) AvailableStock(ctx context.Context, itemID int64) (int, error) {
	if is.redis != nil {
		available, found, err := is.redis.GetAvailableStock(ctx, itemID)
		if err != nil {
			is.logger.Warn("Stock cache read failed, falling back to DB",
				zap.Int64("item_id", itemID),
				zap.Error(err))
		} else if found {
			return available, nil
		}
	}

	available, err := is.store.GetAvailableStock(ctx, itemID)
	if err != nil {
		return 0, err
	}

	if is.redis != nil {
		if err := is.redis.SetAvailableStock(ctx, itemID, available); err != nil {
			is.logger.Warn("Failed to warm stock cache", zap.Int64("item_id", itemID), zap.Error(err))
		}
	}

	return available, nil
}

// refreshStockCache recomputes the cached total from the database.
// Cache failures only cost a later DB read.
func (is *InventoryService) refreshStockCache(ctx context.Context, itemID int64) {
	if is.redis == nil {
		return
	}

	available, err := is.store.GetAvailableStock(ctx, itemID)
	if err != nil {
		is.logger.Warn("Failed to recompute stock for cache",
			zap.Int64("item_id", itemID),
			zap.Error(err))
		// Drop the stale entry so reads fall through to the database.
		if err := is.redis.InvalidateStock(ctx, itemID); err != nil {
			is.logger.Warn("Failed to invalidate stock cache",
				zap.Int64("item_id", itemID),
				zap.Error(err))
		}
		return
	}

	if err := is.redis.SetAvailableStock(ctx, itemID, available); err != nil {
		is.logger.Warn("Failed to refresh stock cache",
			zap.Int64("item_id", itemID),
			zap.Error(err))
	}
}

// GetUsedParts retrieves the recorded consumption lines for a job
func (is *InventoryService) GetUsedParts(ctx context.Context, jobID int64) ([]models.JobUsedInventory, error) {
	if _, err := is.store.GetJobByID(ctx, jobID); err != nil {
		return nil, err
	}
	return is.store.GetUsedInventoryByJobID(ctx, jobID)
}
