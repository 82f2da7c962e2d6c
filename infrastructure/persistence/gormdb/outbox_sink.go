package gormdb

import (
	"context"

	"hexagonal/domain/shared"
	"hexagonal/infrastructure/persistence/gormdb/po"
)

// OutboxSink 把事件写入 outbox_events 表，由 OutboxWorker 异步转发
// 一个聚合根的一批事件在同一个事务里写入：要么全部成功，要么全部保留在聚合根上
type OutboxSink struct {
	repository *OutboxRepository
}

func NewOutboxSink(repository *OutboxRepository) *OutboxSink {
	return &OutboxSink{repository: repository}
}

func (s *OutboxSink) Publish(ctx context.Context, source shared.EventSource, events []shared.DomainEvent) error {
	rows := make([]*po.OutboxEventPO, 0, len(events))
	for _, event := range events {
		row, err := po.FromEnvelope(shared.Envelope{
			AggregateKind: source.DeclaredKind(),
			AggregateID:   source.IdentifierString(),
			Event:         event,
		})
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return s.repository.SaveAll(ctx, rows)
}

var _ shared.EventSink = (*OutboxSink)(nil)
