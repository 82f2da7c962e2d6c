package gormdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb/po"
)

type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	received map[string][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.received == nil {
		p.received = make(map[string][]byte)
	}
	p.received[eventType] = payload
	return nil
}

func TestOutboxSinkAndWorker(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	outbox := NewOutboxRepository(db)
	repo := NewUserRepository(db, userGenerator(), NewOutboxSink(outbox))

	u := newUser(t, "Hana", "hana@example.com", 31)
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(u.PendingEvents()) != 0 {
		t.Error("events written to the outbox must be cleared")
	}

	pending, err := outbox.GetPendingEvents(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending row, got %d (%v)", len(pending), err)
	}
	row := pending[0]
	if row.EventType != "user.created" || row.AggregateKind != user.AggregateKind || row.AggregateID != u.IdentifierString() {
		t.Errorf("unexpected outbox row %+v", row)
	}
	payload, err := row.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if payload.AggregateID != "1" || payload.EventName != "user.created" || payload.OccurredOn.IsZero() {
		t.Errorf("unexpected payload %+v", payload)
	}

	publisher := &recordingPublisher{}
	worker, err := NewOutboxWorker(outbox, publisher, time.Second, 10, 3)
	if err != nil {
		t.Fatalf("NewOutboxWorker: %v", err)
	}
	n, err := worker.ProcessBatch(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ProcessBatch: %d %v", n, err)
	}
	if _, ok := publisher.received["user.created"]; !ok {
		t.Error("publisher did not receive the event")
	}
	if count, _ := outbox.CountByStatus(ctx, po.EventStatusPublished); count != 1 {
		t.Errorf("expected 1 published row, got %d", count)
	}
	t.Log("✓ outbox relay passed")
}

func TestOutboxWorkerRetries(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	outbox := NewOutboxRepository(db)
	repo := NewUserRepository(db, userGenerator(), NewOutboxSink(outbox))
	if err := repo.Save(ctx, newUser(t, "Ivo", "ivo@example.com", 22)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	publisher := &recordingPublisher{err: errors.New("broker unavailable")}
	worker, err := NewOutboxWorker(outbox, publisher, time.Second, 10, 2)
	if err != nil {
		t.Fatalf("NewOutboxWorker: %v", err)
	}

	tests := []struct {
		name string
		want po.EventStatus
	}{
		{"first failure goes back to pending", po.EventStatusPending},
		{"retries exhausted", po.EventStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n, err := worker.ProcessBatch(ctx); err != nil || n != 0 {
				t.Fatalf("ProcessBatch: %d %v", n, err)
			}
			if count, _ := outbox.CountByStatus(ctx, tt.want); count != 1 {
				t.Errorf("expected 1 row in %s, got %d", tt.want, count)
			}
		})
	}
}

func TestNewOutboxWorkerValidation(t *testing.T) {
	outbox := NewOutboxRepository(nil)
	publisher := &LoggingOutboxPublisher{}

	tests := []struct {
		name      string
		repo      *OutboxRepository
		publisher OutboxPublisher
		interval  time.Duration
		batch     int
		retries   int
	}{
		{"missing repository", nil, publisher, time.Second, 1, 1},
		{"missing publisher", outbox, nil, time.Second, 1, 1},
		{"zero interval", outbox, publisher, 0, 1, 1},
		{"zero batch", outbox, publisher, time.Second, 0, 1},
		{"zero retries", outbox, publisher, time.Second, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOutboxWorker(tt.repo, tt.publisher, tt.interval, tt.batch, tt.retries); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
