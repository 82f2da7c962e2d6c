/*
Package shared - 领域层共享错误定义

设计原则:
1. 领域层定义哨兵错误(sentinel errors)，用于 errors.Is() 类型安全判断
2. DomainError 在创建时捕获堆栈，但延迟格式化（按需打印）
3. 领域错误不包含 HTTP 状态码等传输层概念
4. 所有错误都在误用发生点同步返回，领域层不做任何重试

错误分类:
- ErrInvalidArgument: 值对象包装了缺失值、字节缓冲区长度错误
- ErrParse: 标识符文本格式错误
- ErrIllegalState: 在瞬态实体上请求标识符、重复分配不同标识符
- ErrOptimisticLockConflict: 写入时版本已过期（由持久化引擎抛出，这里只传播）
- ErrUnsupportedConversion: 编解码器遇到无法识别的原始类型
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ============================================================================
// 哨兵错误 (Sentinel Errors)
// 用于 errors.Is() 判断错误类型，不携带具体信息
// ============================================================================

var (
	// ErrNotFound 资源未找到
	ErrNotFound = errors.New("not found")

	// ErrConflict 资源冲突（如唯一约束冲突）
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument 无效参数（缺失的包装值、长度错误的字节缓冲区）
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrParse 文本形式的标识符无法解析
	ErrParse = errors.New("parse error")

	// ErrIllegalState 对象当前状态不允许该操作
	ErrIllegalState = errors.New("illegal state")

	// ErrOptimisticLockConflict 乐观锁冲突：写入时版本号已过期
	ErrOptimisticLockConflict = errors.New("optimistic lock conflict")

	// ErrUnsupportedConversion 编解码器不支持的原始类型
	ErrUnsupportedConversion = errors.New("unsupported conversion")
)

// ============================================================================
// 领域错误结构体 (Domain Error)
// 携带业务上下文和发生点堆栈，支持 errors.Is() 和 errors.As()
// ============================================================================

// DomainError 领域错误 - 携带业务上下文和堆栈的结构化错误
type DomainError struct {
	// Err 底层哨兵错误，用于 errors.Is() 判断
	Err error

	// Entity 发生错误的实体或值对象名称（如 "order", "UserID"）
	Entity string

	// Message 人类可读的错误描述
	Message string

	// Field 可选：发生错误的字段名
	Field string

	// Cause 可选：底层原因（如 uuid 解析错误、驱动错误）
	Cause error

	// stack 调用栈帧（私有），在创建时捕获，按需格式化
	stack []uintptr
}

// Error 实现 error 接口
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 实现错误链，同时暴露哨兵错误和底层原因
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Stack 按需格式化堆栈（只在打印日志时调用）
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// ============================================================================
// 堆栈捕获辅助函数
// ============================================================================

// CaptureStack 捕获当前调用栈（导出供子领域包使用）
// skip: 跳过的帧数（通常为 3：Callers, CaptureStack, NewXxxError）
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack 格式化堆栈帧为字符串切片
// 过滤 runtime 内部帧，最多返回 10 帧
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// ============================================================================
// 领域错误构造函数
// ============================================================================

func newDomainError(sentinel error, entity, field, message string, cause error) *DomainError {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Field:   field,
		Message: message,
		Cause:   cause,
		stack:   CaptureStack(4),
	}
}

// NewNotFoundError 创建"未找到"领域错误
func NewNotFoundError(entity, id string) error {
	return newDomainError(ErrNotFound, entity, "", entity+" not found: "+id, nil)
}

// NewConflictError 创建"冲突"领域错误
func NewConflictError(entity, message string) error {
	return newDomainError(ErrConflict, entity, "", message, nil)
}

// NewInvalidArgumentError 创建"无效参数"领域错误
func NewInvalidArgumentError(entity, field, reason string) error {
	return newDomainError(ErrInvalidArgument, entity, field, reason, nil)
}

// NewParseError 创建"解析失败"领域错误，cause 为底层解析错误
func NewParseError(entity, input string, cause error) error {
	return newDomainError(ErrParse, entity, "", fmt.Sprintf("cannot parse %s from %q", entity, input), cause)
}

// NewIllegalStateError 创建"非法状态"领域错误
func NewIllegalStateError(entity, reason string) error {
	return newDomainError(ErrIllegalState, entity, "", reason, nil)
}

// NewOptimisticLockError 创建乐观锁冲突错误
// 由持久化适配器在 "WHERE version = ?" 未命中任何行时返回
func NewOptimisticLockError(entity, id string, version int64) error {
	return newDomainError(ErrOptimisticLockConflict, entity, "version",
		fmt.Sprintf("%s %s was modified by another transaction (stale version %d)", entity, id, version), nil)
}

// NewUnsupportedConversionError 创建"不支持的转换"领域错误
func NewUnsupportedConversionError(entity string, raw any) error {
	return newDomainError(ErrUnsupportedConversion, entity, "",
		fmt.Sprintf("cannot convert %T to or from %s", raw, entity), nil)
}

// ============================================================================
// Stacker 接口
// 用于 API 层统一提取堆栈
// ============================================================================

// Stacker 可提供堆栈的错误接口
type Stacker interface {
	Stack() []string
}

// NewUnsupportedFormError 编解码器无法写出指定的存储形式
func NewUnsupportedFormError(entity, form string) error {
	return newDomainError(ErrUnsupportedConversion, entity, "form",
		fmt.Sprintf("%s cannot be stored in %s form", entity, form), nil)
}
