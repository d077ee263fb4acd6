// Package handlers 实现本地HTTP服务的API处理器
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zkredit/v1/internal/api/http/middleware"
	"github.com/zkredit/v1/internal/core/proofsys"
)

// ==================== 📋 标准API响应结构 ====================

// StandardAPIResponse 标准API响应格式
// ✅ 统一所有handler的响应格式，提供一致的调用体验
type StandardAPIResponse struct {
	Success   bool        `json:"success"`              // 操作是否成功
	Data      interface{} `json:"data,omitempty"`       // 响应数据（成功时）
	Error     *APIError   `json:"error,omitempty"`      // 错误信息（失败时）
	RequestID string      `json:"request_id,omitempty"` // 请求追踪ID
}

// APIError 标准错误结构
type APIError struct {
	Code    string `json:"code"`              // 错误代码（用于程序化处理）
	Message string `json:"message"`           // 用户友好的错误消息
	Details string `json:"details,omitempty"` // 详细错误信息（调试用）
}

// ==================== 🎯 通用错误代码常量 ====================

// 请求相关错误
const (
	ErrorCodeInvalidRequest = "INVALID_REQUEST"
	ErrorCodeInvalidJSON    = "INVALID_JSON"
	ErrorCodeInvalidWitness = "INVALID_WITNESS"
)

// 谓词与方案相关错误
const (
	ErrorCodePredicateNotSupported = "PREDICATE_NOT_SUPPORTED"
	ErrorCodeSchemeNotSupported    = "SCHEME_NOT_SUPPORTED"
	ErrorCodeCapacityExceeded      = "CAPACITY_EXCEEDED"
)

// 系统状态相关错误
const (
	ErrorCodeNotInitialized     = "SYSTEM_NOT_INITIALIZED"
	ErrorCodeAlreadyInitialized = "ALREADY_INITIALIZED"
)

// 执行相关错误
const (
	ErrorCodeKeyGenerationFailed   = "KEY_GENERATION_FAILED"
	ErrorCodeProofGenerationFailed = "PROOF_GENERATION_FAILED"
	ErrorCodeTaskNotFound          = "TASK_NOT_FOUND"
	ErrorCodeQueueFull             = "QUEUE_FULL"
	ErrorCodeTimeout               = "TIMEOUT"
	ErrorCodeInternalError         = "INTERNAL_ERROR"
)

// ==================== 响应辅助函数 ====================

// respondOK 写入成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, StandardAPIResponse{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

// respondError 写入错误响应
func respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, StandardAPIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		RequestID: middleware.GetRequestID(c),
	})
}

// respondProofError 按证明系统的错误分类写入响应
//
// 📋 **映射规则**：
//   - 输入畸形/未知谓词/容量超限 → 400（调用方问题）
//   - 系统未初始化/重复初始化 → 409（状态冲突，调用方可恢复）
//   - 超时 → 504
//   - 密钥/证明生成失败及其余 → 500（系统问题）
func respondProofError(c *gin.Context, err error, message string) {
	status, code := classifyProofError(err)
	respondError(c, status, code, message, err.Error())
}

// classifyProofError 将证明系统错误映射为HTTP状态码和错误代码
func classifyProofError(err error) (int, string) {
	switch {
	case errors.Is(err, proofsys.ErrUnknownWitness):
		return http.StatusBadRequest, ErrorCodeInvalidWitness
	case errors.Is(err, proofsys.ErrMalformedInput):
		return http.StatusBadRequest, ErrorCodeInvalidRequest
	case errors.Is(err, proofsys.ErrUnsupportedPredicate):
		return http.StatusBadRequest, ErrorCodePredicateNotSupported
	case errors.Is(err, proofsys.ErrUnsupportedScheme):
		return http.StatusBadRequest, ErrorCodeSchemeNotSupported
	case errors.Is(err, proofsys.ErrCapacityExceeded):
		return http.StatusBadRequest, ErrorCodeCapacityExceeded
	case errors.Is(err, proofsys.ErrSystemNotInitialized):
		return http.StatusConflict, ErrorCodeNotInitialized
	case errors.Is(err, proofsys.ErrAlreadyInitialized):
		return http.StatusConflict, ErrorCodeAlreadyInitialized
	case errors.Is(err, proofsys.ErrKeyGenerationFailure):
		return http.StatusInternalServerError, ErrorCodeKeyGenerationFailed
	case errors.Is(err, proofsys.ErrProofGenerationFailure):
		return http.StatusInternalServerError, ErrorCodeProofGenerationFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorCodeTimeout
	default:
		return http.StatusInternalServerError, ErrorCodeInternalError
	}
}
