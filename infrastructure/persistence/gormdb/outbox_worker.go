package gormdb

import (
	"context"
	"fmt"
	"time"

	"hexagonal/pkg/logger"
	"hexagonal/pkg/metrics"

	"go.uber.org/zap"
)

// OutboxPublisher 消息中间件抽象
type OutboxPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}

// LoggingOutboxPublisher 只打日志，没有接入消息中间件时使用
type LoggingOutboxPublisher struct{}

func (p *LoggingOutboxPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	logger.Info("Outbox event published",
		zap.String("event_type", eventType),
		zap.ByteString("payload", payload),
	)
	return nil
}

type OutboxWorker struct {
	repository   *OutboxRepository
	publisher    OutboxPublisher
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewOutboxWorker(
	repository *OutboxRepository,
	publisher OutboxPublisher,
	pollInterval time.Duration,
	batchSize int,
	maxRetries int,
) (*OutboxWorker, error) {
	if repository == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &OutboxWorker{
		repository:   repository,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

// Run polls until ctx is cancelled
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays one batch and returns how many rows were published
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.repository.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if err := w.repository.MarkEventProcessing(ctx, event.ID); err != nil {
			metrics.OutboxRelayed.WithLabelValues("skipped").Inc()
			logger.Warn("Skip outbox event due to lock contention",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		if err := w.publisher.Publish(ctx, event.EventType, event.Payload); err != nil {
			status, failErr := w.repository.MarkEventFailed(ctx, event.ID, w.maxRetries)
			if failErr != nil {
				logger.Error("Failed to mark outbox event as failed",
					zap.String("event_id", event.ID),
					zap.Error(failErr),
				)
			}
			metrics.OutboxRelayed.WithLabelValues("error").Inc()
			logger.Warn("Outbox event publication failed",
				zap.String("event_id", event.ID),
				zap.String("status", string(status)),
				zap.Error(err),
			)
			continue
		}

		if err := w.repository.MarkEventPublished(ctx, event.ID); err != nil {
			logger.Error("Failed to mark outbox event as published",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.OutboxRelayed.WithLabelValues("ok").Inc()
		published++
	}

	return published, nil
}

