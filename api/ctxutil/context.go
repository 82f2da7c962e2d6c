package ctxutil

import (
	"context"

	"hexagonal/api/response"
	"hexagonal/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// WithRequestID 把 gin 中的请求 ID 带进 context，仓储的 SQL 日志和应用层日志据此关联
func WithRequestID(ctx *gin.Context) context.Context {
	requestID := response.GetRequestID(ctx)
	return persistence.ContextWithRequestID(ctx.Request.Context(), requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}
