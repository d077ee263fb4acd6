package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey 请求ID在gin上下文中的键
const requestIDKey = "request_id"

// RequestID 请求ID中间件
//
// 为每个请求分配唯一追踪ID：调用方可通过X-Request-ID头传入自己的ID，
// 没有时生成新的uuid。ID注入上下文并回写响应头，
// 访问日志和错误响应通过它关联同一次请求。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// GetRequestID 从上下文获取请求ID（与RequestID中间件配合）
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
