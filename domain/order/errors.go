/*
Package order - 订单领域错误定义

设计原则:
1. 使用哨兵错误(sentinel errors)支持 errors.Is() 类型安全判断
2. 每个错误同时归入 shared 的通用类别（ErrInvalidArgument / ErrIllegalState / ErrNotFound），
   接口层按类别映射 HTTP 状态码
3. 错误构造函数在创建时捕获堆栈

堆栈捕获:
- NewXxxError 构造函数内部调用 shared.CaptureStack(3)
- skip=3 跳过：runtime.Callers, CaptureStack, NewXxxError
*/
package order

import (
	"errors"

	"hexagonal/domain/shared"
)

// ============================================================================
// 订单领域哨兵错误 (Sentinel Errors)
// ============================================================================

var (
	// ErrInvalidOrderState 无效的订单状态转换
	// 例如：已取消的订单不能确认
	ErrInvalidOrderState = errors.New("invalid order state transition")

	// ErrInvalidOrder 订单数据不合法
	ErrInvalidOrder = errors.New("invalid order")

	// ErrEmptyOrderItems 订单项为空
	ErrEmptyOrderItems = errors.New("order must have at least one item")

	// ErrUserCannotPlaceOrder 用户无法下单
	// 例如：用户未激活、被禁用等
	ErrUserCannotPlaceOrder = errors.New("user cannot place order")

	ErrInvalidQuantity             = errors.New("quantity must be positive")
	ErrOrderTotalAmountNotPositive = errors.New("order total amount must be positive")
	ErrCannotModifyNonPendingOrder = errors.New("can only modify pending orders")
	ErrItemNotFound                = errors.New("item not found")
)

// ============================================================================
// 订单领域错误构造函数
// ============================================================================

// NewOrderNotFoundError 创建订单未找到错误（带堆栈）
// 返回的错误支持:
//   - errors.Is(err, shared.ErrNotFound)
//   - err.(shared.Stacker).Stack() 获取堆栈
func NewOrderNotFoundError(orderID string) error {
	return &orderDomainError{
		sentinel: shared.ErrNotFound,
		entity:   "order",
		message:  "order not found: " + orderID,
		stack:    shared.CaptureStack(3),
	}
}

// NewInvalidOrderStateError 创建无效状态转换错误
func NewInvalidOrderStateError(currentState, targetState string) error {
	return &orderDomainError{
		sentinel: ErrInvalidOrderState,
		category: shared.ErrIllegalState,
		entity:   "order",
		field:    "status",
		message:  "cannot transition from " + currentState + " to " + targetState,
		stack:    shared.CaptureStack(3),
	}
}

// NewInvalidOrderError 创建订单字段非法错误
func NewInvalidOrderError(field, reason string) error {
	return &orderDomainError{
		sentinel: ErrInvalidOrder,
		category: shared.ErrInvalidArgument,
		entity:   "order",
		field:    field,
		message:  reason,
		stack:    shared.CaptureStack(3),
	}
}

// NewEmptyOrderItemsError 创建订单项为空错误
func NewEmptyOrderItemsError() error {
	return &orderDomainError{
		sentinel: ErrEmptyOrderItems,
		category: shared.ErrInvalidArgument,
		entity:   "order",
		field:    "items",
		message:  "order must have at least one item",
		stack:    shared.CaptureStack(3),
	}
}

// NewUserCannotPlaceOrderError 创建用户无法下单错误
func NewUserCannotPlaceOrderError(userID, reason string) error {
	return &orderDomainError{
		sentinel: ErrUserCannotPlaceOrder,
		category: shared.ErrIllegalState,
		entity:   "order",
		message:  "user " + userID + " cannot place order: " + reason,
		stack:    shared.CaptureStack(3),
	}
}

// ============================================================================
// 订单领域错误结构体（内部使用）
// ============================================================================

type orderDomainError struct {
	sentinel error     // 哨兵错误，用于 errors.Is()
	category error     // shared 通用类别（可选）
	entity   string    // 实体名
	field    string    // 字段名（可选）
	message  string    // 错误消息
	stack    []uintptr // 调用栈
}

func (e *orderDomainError) Error() string {
	return e.message
}

func (e *orderDomainError) Unwrap() []error {
	if e.category == nil {
		return []error{e.sentinel}
	}
	return []error{e.sentinel, e.category}
}

// Stack 实现 shared.Stacker 接口
func (e *orderDomainError) Stack() []string { return shared.FormatStack(e.stack) }

func (e *orderDomainError) Field() string { return e.field }
