package shared

import "context"

// UnitOfWork 管理事务边界与聚合事件发布。
// Execute 提交成功后才读取已登记聚合的 PendingEvents，交给 EventSink，
// 发布成功后调用 ClearEvents。
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

type UnitOfWorkFactory interface {
	New() UnitOfWork
}
