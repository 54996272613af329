package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snuggli/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID 为每个请求分配 ID，写入响应头并附加到日志上下文。
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		if log != nil {
			c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), reqID))
		}
		c.Next()
	}
}

// RequestLogger 记录请求的起止、状态码与耗时。
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
		c.Request = c.Request.WithContext(ctx)
		start := time.Now()

		c.Next()

		ctx = log.WithFields(c.Request.Context(), map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		log.Info(ctx, "request.complete")
	}
}
