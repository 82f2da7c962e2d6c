package gormdb

import (
	"context"
	"fmt"
	"time"

	"hexagonal/infrastructure/persistence"
	"hexagonal/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// OutboxRepository GORM implementation of the outbox table
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository Create outbox repository
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *OutboxRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// SaveAll Save outbox rows atomically
func (r *OutboxRepository) SaveAll(ctx context.Context, rows []*po.OutboxEventPO) error {
	if len(rows) == 0 {
		return nil
	}
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, rows)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, rows)
	})
}

func (r *OutboxRepository) saveWithTx(tx *gorm.DB, rows []*po.OutboxEventPO) error {
	if err := tx.Create(rows).Error; err != nil {
		return fmt.Errorf("failed to save event to outbox: %w", err)
	}
	return nil
}

// GetPendingEvents Get pending events for processing, oldest first
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var events []*po.OutboxEventPO
	err := r.getDB(ctx).
		Where("status = ?", string(po.EventStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

// MarkEventProcessing Mark event as being processed
// Used by OutboxWorker to prevent concurrent processing
func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) error {
	result := r.getDB(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ? AND status = ?", eventID, string(po.EventStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(po.EventStatusProcessing),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found or already being processed: %s", eventID)
	}
	return nil
}

// MarkEventPublished Mark event as successfully published
func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	result := r.getDB(ctx).Model(&po.OutboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     string(po.EventStatusPublished),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found: %s", eventID)
	}
	return nil
}

// MarkEventFailed Mark event as failed to publish
// The event goes back to PENDING until maxRetries attempts are used up
func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) (po.EventStatus, error) {
	db := r.getDB(ctx)

	var event po.OutboxEventPO
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		return "", fmt.Errorf("failed to find event: %w", err)
	}

	retryCount := event.RetryCount + 1
	status := po.EventStatusFailed
	if retryCount < maxRetries {
		status = po.EventStatusPending
	}

	err := db.Model(&po.OutboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":      string(status),
			"retry_count": retryCount,
			"updated_at":  time.Now(),
		}).Error
	return status, err
}

// CountByStatus 健康检查与测试使用
func (r *OutboxRepository) CountByStatus(ctx context.Context, status po.EventStatus) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&po.OutboxEventPO{}).Where("status = ?", string(status)).Count(&count).Error
	return count, err
}
