package gormdb

import (
	"context"
	"fmt"
	"sync"

	"hexagonal/domain/shared"
	"hexagonal/infrastructure/persistence"
	"hexagonal/infrastructure/persistence/retry"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork implements the Unit of Work pattern with GORM
//
// Execute 的顺序：
//  1. 开启事务，把事务和聚合跟踪器放入 context
//  2. 执行业务函数；Store.Save 与 Register* 都登记到本次尝试的跟踪器
//  3. 提交
//  4. 提交成功后对登记的聚合根执行事件发布协议（PublishPending）
//
// 业务函数或提交失败时不会发布任何事件，聚合根的事件缓冲区保持不变。
// 重试时每次尝试使用新的跟踪器，回滚的尝试中登记的聚合根不会被发布。
// Execute 之前调用 Register* 登记的聚合根只在提交成功后发布一次。
type UnitOfWork struct {
	db          *gorm.DB
	sink        shared.EventSink
	retryConfig retry.Config

	mu         sync.Mutex
	registered []shared.AggregateRoot
	attempt    *persistence.Tracker // 正在执行的尝试；为 nil 时登记到 registered
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, sink shared.EventSink) *UnitOfWork {
	return &UnitOfWork{
		db:          db,
		sink:        sink,
		retryConfig: retry.DefaultConfig,
	}
}

// SetRetryConfig updates the retry configuration for this UnitOfWork
func (u *UnitOfWork) SetRetryConfig(config retry.Config) {
	u.retryConfig = config
}

// Execute runs fn inside a transaction, retrying on conflicts and deadlocks.
// A *PublicationError means the transaction committed and only event publication
// failed; it is never retried.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	registered := u.takeRegistered()
	var tracker *persistence.Tracker

	executeOnce := func(ctx context.Context) error {
		tracker = persistence.NewTracker()
		u.setAttempt(tracker)

		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}

		txCtx := persistence.ContextWithTx(ctx, tx)
		txCtx = persistence.ContextWithTracker(txCtx, tracker)

		if err := u.run(txCtx, fn); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	err := retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
	u.setAttempt(nil)
	if err != nil {
		return err
	}

	var aggregates []shared.AggregateRoot
	if tracker != nil {
		aggregates = tracker.Aggregates()
	}
	aggregates = append(aggregates, registered...)
	if err := PublishPending(ctx, u.sink, aggregates); err != nil {
		logger.Error("Transaction committed but events were not published", zap.Error(err))
		return err
	}
	return nil
}

// run 业务函数 panic 时也要回滚
func (u *UnitOfWork) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unit of work panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// PublishPending 重新发布上一次 Execute 未发布成功的事件
func (u *UnitOfWork) PublishPending(ctx context.Context, aggregates ...shared.AggregateRoot) error {
	return PublishPending(ctx, u.sink, aggregates)
}

// RegisterNew registers a newly created aggregate root for event publication
func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.register(aggregate)
}

// RegisterDirty registers a modified aggregate root for event publication
func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.register(aggregate)
}

// RegisterRemoved registers a deleted aggregate root for event publication
func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.register(aggregate)
}

func (u *UnitOfWork) register(aggregate shared.AggregateRoot) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.attempt != nil {
		u.attempt.Track(aggregate)
		return
	}
	u.registered = append(u.registered, aggregate)
}

func (u *UnitOfWork) setAttempt(tracker *persistence.Tracker) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.attempt = tracker
}

// takeRegistered 取出并清空 Execute 之前的登记列表
func (u *UnitOfWork) takeRegistered() []shared.AggregateRoot {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.registered
	u.registered = nil
	return out
}

// Registered returns the aggregates registered outside Execute, waiting for the next one.
// Registrations made inside fn belong to the running attempt and are not listed.
func (u *UnitOfWork) Registered() []shared.AggregateRoot {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]shared.AggregateRoot, len(u.registered))
	copy(out, u.registered)
	return out
}

// Compile-time check that UnitOfWork implements shared.UnitOfWork
var _ shared.UnitOfWork = (*UnitOfWork)(nil)
