package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zkredit/v1/internal/core/proofsys"
	infralog "github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"
)

// ProofHandler 证明生成与验证处理器
//
// ⚠️ 隐私边界：请求体中的witness字段是调用方的秘密输入，
// 只在内存中参与证明生成，不落日志、不进响应、不入缓存。
type ProofHandler struct {
	manager        *proofsys.Manager
	logger         infralog.Logger
	requestTimeout time.Duration
}

// NewProofHandler 创建证明处理器
//
// requestTimeout限制单次证明生成的总时长（0表示不限制）。
// 验证是亚秒级操作，不单独限时。
func NewProofHandler(manager *proofsys.Manager, requestTimeout time.Duration, logger infralog.Logger) *ProofHandler {
	return &ProofHandler{
		manager:        manager,
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

// Generate 处理 POST /api/v1/proofs
func (h *ProofHandler) Generate(c *gin.Context) {
	var req types.ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	ctx := c.Request.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	artifact, err := h.manager.Prove(ctx, &req)
	if err != nil {
		respondProofError(c, err, "证明生成失败")
		return
	}
	respondOK(c, artifact)
}

// VerifyResponse 验证响应体
type VerifyResponse struct {
	// Verified 证明与声称结果是否通过密码学核验
	// false是正常结论（证明无效或声称不符），不是错误
	Verified bool `json:"verified"`
}

// Verify 处理 POST /api/v1/proofs/verify
func (h *ProofHandler) Verify(c *gin.Context) {
	var req types.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	verified, err := h.manager.Verify(c.Request.Context(), &req)
	if err != nil {
		// (false, err)：无法完成验证（输入畸形、未初始化等）
		respondProofError(c, err, "无法完成验证")
		return
	}

	// (true, nil)和(false, nil)都是200：验证得出了结论
	respondOK(c, VerifyResponse{Verified: verified})
}

// MockRequest 模拟评估请求体
type MockRequest struct {
	Predicate string            `json:"predicate"` // 谓词标识符
	Params    map[string]string `json:"params"`    // 公开参数
	Witness   map[string]string `json:"witness"`   // 秘密输入

	// Claimed 声称的谓词结果（nil等同于true）
	Claimed *bool `json:"claimed,omitempty"`
}

// MockResponse 模拟评估响应体
type MockResponse struct {
	// Consistent 约束满足且计算结果与声称一致（该声称的真实证明会通过验证且语义正确）
	Consistent bool `json:"consistent"`

	Satisfied            bool `json:"satisfied"`             // 谓词计算结果
	ConstraintsSatisfied bool `json:"constraints_satisfied"` // 约束系统是否满足
	Mismatch             bool `json:"mismatch"`              // 约束满足但声称成立与计算结果矛盾
}

// Mock 处理 POST /api/v1/mock（调试用，不生成真实证明）
func (h *ProofHandler) Mock(c *gin.Context) {
	var req MockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	result, err := h.manager.MockEvaluateDetailed(c.Request.Context(), &types.ProofRequest{
		Predicate: req.Predicate,
		Params:    req.Params,
		Witness:   req.Witness,
	})
	if err != nil {
		respondProofError(c, err, "模拟评估失败")
		return
	}

	claimed := req.Claimed == nil || *req.Claimed
	respondOK(c, MockResponse{
		Consistent:           result.ConstraintsSatisfied && result.Satisfied == claimed,
		Satisfied:            result.Satisfied,
		ConstraintsSatisfied: result.ConstraintsSatisfied,
		Mismatch:             result.Mismatch,
	})
}
