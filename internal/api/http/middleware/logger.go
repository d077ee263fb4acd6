package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	infralog "github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// AccessLog 访问日志中间件
//
// 记录每个请求的方法、路径、状态码和延迟（复用系统统一日志接口）。
// ⚠️ 不记录请求体：证明请求的witness字段是用户的秘密输入，
// 任何日志路径都不允许接触它。
type AccessLog struct {
	logger infralog.Logger
}

// NewAccessLog 创建访问日志中间件
func NewAccessLog(logger infralog.Logger) *AccessLog {
	return &AccessLog{logger: logger}
}

// Middleware 返回Gin中间件
func (m *AccessLog) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		requestID := GetRequestID(c)

		// 优先使用底层zap记录器输出结构化日志
		zl := m.logger.GetZapLogger()
		if zl != nil {
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Duration("latency", latency),
				zap.String("client_ip", c.ClientIP()),
			}
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("errors", c.Errors.String()))
			}
			switch {
			case status >= 500:
				zl.Error("HTTP request", fields...)
			case status >= 400:
				zl.Warn("HTTP request", fields...)
			default:
				zl.Info("HTTP request", fields...)
			}
			return
		}

		// 回退：无底层zap时输出文本日志
		msg := fmt.Sprintf("HTTP request | id=%s method=%s path=%s status=%d latency=%s ip=%s",
			requestID, c.Request.Method, path, status, latency, c.ClientIP())
		switch {
		case status >= 500:
			m.logger.Error(msg)
		case status >= 400:
			m.logger.Warn(msg)
		default:
			m.logger.Info(msg)
		}
	}
}
