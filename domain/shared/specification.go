package shared

import "context"

// Specification 业务规则的谓词，T 通常是聚合根指针类型
// 内存判断用 IsSatisfiedBy；仓储实现可以把已知的规格翻译成查询条件
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, candidate T) bool
}

// AndSpecification 逻辑与
type AndSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return spec.Left.IsSatisfiedBy(ctx, candidate) && spec.Right.IsSatisfiedBy(ctx, candidate)
}

func And[T any](left, right Specification[T]) Specification[T] {
	return AndSpecification[T]{Left: left, Right: right}
}

// NotSpecification 逻辑非
type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, candidate)
}

func Not[T any](inner Specification[T]) Specification[T] {
	return NotSpecification[T]{Spec: inner}
}
