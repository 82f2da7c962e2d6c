package shared

// AggregateRoot 聚合根接口
// 聚合根是DDD的核心概念，它是聚合的入口点，维护聚合的一致性边界
// 特性：
// 1. 有全局唯一标识（首次保存时分配）
// 2. 维护聚合内部的不变量
// 3. 所有修改必须通过聚合根进行
// 4. 缓存业务操作中登记的领域事件，保存成功后由持久化机制取走并发布
type AggregateRoot interface {
	Entity

	// PendingEvents 返回待发布事件的只读副本（按登记顺序）
	PendingEvents() []DomainEvent

	// ClearEvents 清空事件缓冲区，幂等
	ClearEvents()
}

// BaseAggregateRoot 聚合根基类
//
// 事件生命周期：
//  1. 业务方法通过 RegisterEvent 登记事件（可以零次或多次，允许重复）
//  2. 事务提交成功后，UnitOfWork 调用 PendingEvents 并交给 EventSink
//  3. 发布成功后 UnitOfWork 调用 ClearEvents；保存或发布失败时事件保留在缓冲区
//
// 事件缓冲区不加锁：同一个聚合实例同一时刻只应属于一个工作单元（一个请求/事务）
type BaseAggregateRoot[ID DomainObjectID] struct {
	BaseEntity[ID]
	events []DomainEvent
}

// NewBaseAggregateRoot 创建瞬态聚合根基类
func NewBaseAggregateRoot[ID DomainObjectID](kind string) BaseAggregateRoot[ID] {
	return BaseAggregateRoot[ID]{BaseEntity: NewBaseEntity[ID](kind)}
}

// RegisterEvent 登记领域事件，nil 事件返回 ErrInvalidArgument
func (a *BaseAggregateRoot[ID]) RegisterEvent(event DomainEvent) error {
	if event == nil || isAbsent(event) {
		return NewInvalidArgumentError(a.kind, "event", "cannot register a nil domain event")
	}
	a.events = append(a.events, event)
	return nil
}

// PendingEvents 返回事件副本，修改返回值不会影响缓冲区
func (a *BaseAggregateRoot[ID]) PendingEvents() []DomainEvent {
	if len(a.events) == 0 {
		return nil
	}
	events := make([]DomainEvent, len(a.events))
	copy(events, a.events)
	return events
}

// ClearEvents 清空事件缓冲区
func (a *BaseAggregateRoot[ID]) ClearEvents() {
	a.events = nil
}

// IsAggregateRoot 类型标记函数
// 用于编译时检查某个类型是否实现了AggregateRoot接口
// 使用方法：var _ = shared.IsAggregateRoot(&User{})
func IsAggregateRoot(agg AggregateRoot) AggregateRoot {
	return agg
}
