package errors

import (
	"errors"
	"fmt"
	"net/http"

	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
)

// ErrorCode 错误码
type ErrorCode string

const (
	// 通用错误码
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// 持久化错误码
	CodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	CodeIllegalState           ErrorCode = "ILLEGAL_STATE"

	// 业务错误码
	CodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	CodeUserNotActive     ErrorCode = "USER_NOT_ACTIVE"
	CodeEmailExists       ErrorCode = "EMAIL_EXISTS"
	CodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	CodeInvalidOrderState ErrorCode = "INVALID_ORDER_STATE"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode 返回对应的HTTP状态码
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeUserNotFound, CodeOrderNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeEmailExists, CodeConcurrentModification:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeUserNotActive, CodeInvalidOrderState, CodeIllegalState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 常用错误构造函数

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// 业务错误

func UserNotFound() *AppError {
	return New(CodeUserNotFound, "user not found")
}

func UserNotActive() *AppError {
	return New(CodeUserNotActive, "user is not active")
}

func EmailExists() *AppError {
	return New(CodeEmailExists, "email already exists")
}

func OrderNotFound() *AppError {
	return New(CodeOrderNotFound, "order not found")
}

func InvalidOrderState(message string) *AppError {
	return New(CodeInvalidOrderState, message)
}

// Is 检查是否为特定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return MapDomainError(err)
}

// MapDomainError 将领域错误映射为应用错误
// 按哨兵错误判断，领域专属错误优先于通用分类
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	// 已经是 AppError
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	switch {
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return Wrap(err, CodeEmailExists, msg)
	case errors.Is(err, user.ErrUserNotActive),
		errors.Is(err, user.ErrUserTooYoung),
		errors.Is(err, order.ErrUserCannotPlaceOrder):
		return Wrap(err, CodeUserNotActive, msg)
	case errors.Is(err, order.ErrInvalidOrderState),
		errors.Is(err, order.ErrCannotModifyNonPendingOrder):
		return Wrap(err, CodeInvalidOrderState, msg)
	case errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidAge),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrOrderTotalAmountNotPositive),
		errors.Is(err, order.ErrItemNotFound):
		return Wrap(err, CodeValidation, msg)
	}

	return FromDomainError(err)
}

// FromDomainError 按 domain/shared 的错误分类映射
//
//	ErrInvalidArgument / ErrParse        → 400
//	ErrNotFound                          → 404
//	ErrOptimisticLockConflict / Conflict → 409
//	ErrIllegalState                      → 422
//	ErrUnsupportedConversion / 其他      → 500
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrParse):
		return Wrap(err, CodeBadRequest, msg)
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, shared.ErrOptimisticLockConflict):
		return Wrap(err, CodeConcurrentModification, "resource was modified concurrently, please reload and retry")
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, msg)
	case errors.Is(err, shared.ErrIllegalState):
		return Wrap(err, CodeIllegalState, msg)
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
