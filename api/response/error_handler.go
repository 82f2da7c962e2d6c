package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"hexagonal/domain/shared"
	"hexagonal/pkg/errors"
	"hexagonal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// httpStatusMap 错误码到 HTTP 状态码的映射，只在 API 层使用
var httpStatusMap = map[errors.ErrorCode]int{
	errors.CodeInternal:   http.StatusInternalServerError,
	errors.CodeBadRequest: http.StatusBadRequest,
	errors.CodeNotFound:   http.StatusNotFound,
	errors.CodeConflict:   http.StatusConflict,
	errors.CodeForbidden:  http.StatusForbidden,
	errors.CodeValidation: http.StatusBadRequest,

	errors.CodeConcurrentModification: http.StatusConflict,
	errors.CodeIllegalState:           http.StatusUnprocessableEntity,

	errors.CodeOrderNotFound:     http.StatusNotFound,
	errors.CodeInvalidOrderState: http.StatusUnprocessableEntity,

	errors.CodeUserNotFound:   http.StatusNotFound,
	errors.CodeUserNotActive:  http.StatusForbidden,
	errors.CodeEmailExists:    http.StatusConflict,
	errors.CodeTooManyRequest: http.StatusTooManyRequests,
}

func mapErrorCodeToHTTPStatus(appErr *errors.AppError) int {
	if status, ok := httpStatusMap[appErr.Code]; ok {
		return status
	}
	return appErr.HTTPStatusCode()
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestID 返回中间件写入的请求 ID
func GetRequestID(c *gin.Context) string {
	return getRequestID(c)
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError 处理参数绑定等框架层错误。
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := getRequestID(c)

	logger.Warn(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.JSON(code, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleAppError 按应用错误码自动映射 HTTP 状态码。
// 5xx 记录 Error 级别并带堆栈，4xx 只记录 Warn
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)
	appErr := errors.AsAppError(err)
	httpStatus := mapErrorCodeToHTTPStatus(appErr)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	userMessage := appErr.Message
	if httpStatus >= http.StatusInternalServerError {
		fields = append(fields, zap.Strings("stack", extractStack(err)))
		logger.Error(appErr.Message, fields...)
		userMessage = "internal server error"
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	c.JSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// extractStack 优先取错误发生点的堆栈，否则在处理点捕获
func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
