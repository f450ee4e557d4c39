package database

import (
	"context"
	"encoding/json"
	"time"

	"simkas/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox must run on the same tx as the business write.
func insertOutbox(tx *gorm.DB, event string, aggregateID uint64, fields map[string]any) error {
	body := map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tx.Create(&model.OutboxEvent{
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List returns pending events in id order.
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.OutboxEvent, error) {
	var list []model.OutboxEvent
	if err := r.DB.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry_count": gorm.Expr("retry_count + 1")}).Error
}

// Requeue moves failed events with retry_count < maxRetries back to pending.
func (r *OutboxRepository) Requeue(ctx context.Context, maxRetries int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("status = ? AND retry_count < ?", model.OutboxFailed, maxRetries).
		Update("status", model.OutboxPending)
	return res.RowsAffected, res.Error
}
