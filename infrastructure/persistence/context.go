package persistence

import (
	"context"
	"sync"

	"hexagonal/domain/shared"

	"gorm.io/gorm"
)

// txKey is the context key for storing the transaction
type txKey struct{}

// trackerKey is the context key for the aggregates saved inside a unit of work
type trackerKey struct{}

// requestIDKey is the context key for the request id carried into SQL logs
type requestIDKey struct{}

// TxFromContext retrieves the GORM transaction from context
// Returns nil if no transaction is present
func TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// ContextWithTx returns a new context with the GORM transaction attached
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Tracker 记录一个工作单元内保存过的聚合根，提交后由 UnitOfWork 统一发布事件
type Tracker struct {
	mu         sync.Mutex
	aggregates []shared.AggregateRoot
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Track 登记聚合根；同一实例只登记一次
func (t *Tracker) Track(aggregate shared.AggregateRoot) {
	if aggregate == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.aggregates {
		if a == aggregate {
			return
		}
	}
	t.aggregates = append(t.aggregates, aggregate)
}

// Aggregates 按登记顺序返回副本
func (t *Tracker) Aggregates() []shared.AggregateRoot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]shared.AggregateRoot, len(t.aggregates))
	copy(out, t.aggregates)
	return out
}

// ContextWithTracker attaches the unit-of-work tracker
func ContextWithTracker(ctx context.Context, tracker *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, tracker)
}

// TrackerFromContext returns nil outside a unit of work
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}

// ContextWithRequestID attaches the request id so SQL logs can be correlated
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns "" when no request id is present
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
