package handlers

import (
	"encoding/base64"
	"errors"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zkredit/v1/internal/core/predicate"
	"github.com/zkredit/v1/internal/core/proofsys"
	cryptointf "github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	infralog "github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// CommitmentHandler 身份承诺辅助处理器
//
// 为承诺谓词准备输入：把原始身份数据和随机数折算成标量域内的承诺值。
// 调用方把承诺值交给验证方，把承诺的原像作为witness用于后续证明。
type CommitmentHandler struct {
	manager *proofsys.Manager
	hasher  cryptointf.HashManager
	logger  infralog.Logger
}

// NewCommitmentHandler 创建承诺处理器
func NewCommitmentHandler(manager *proofsys.Manager, hasher cryptointf.HashManager, logger infralog.Logger) *CommitmentHandler {
	return &CommitmentHandler{
		manager: manager,
		hasher:  hasher,
		logger:  logger,
	}
}

// CommitmentRequest 承诺计算请求体
type CommitmentRequest struct {
	// Data 原始身份数据（base64编码，任意字节）
	Data string `json:"data"`

	// Nonce 盲化随机数（十进制字符串）
	Nonce string `json:"nonce"`

	// Algo 摘要模式（可选）：sha256（默认）或keccak256（对齐以太坊生态）
	Algo string `json:"algo,omitempty"`
}

// CommitmentResponse 承诺计算响应体
type CommitmentResponse struct {
	// Commitment 承诺值的十进制表示（承诺谓词的commitment参数直接使用）
	Commitment string `json:"commitment"`

	// Fingerprint 承诺值的Base58短指纹（日志与人工比对用）
	Fingerprint string `json:"fingerprint"`
}

// Compute 处理 POST /api/v1/commitments
func (h *CommitmentHandler) Compute(c *gin.Context) {
	var req CommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "data不是有效的base64", err.Error())
		return
	}
	if len(data) == 0 {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "data不能为空", "")
		return
	}

	nonce, ok := new(big.Int).SetString(req.Nonce, 10)
	if !ok {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "nonce不是十进制整数", req.Nonce)
		return
	}

	algo := req.Algo
	if algo == "" {
		algo = predicate.DigestSHA256
	}

	field := h.manager.ScalarField()
	commitment, err := predicate.ComputeCommitmentDigest(h.hasher, algo, field, data, nonce)
	if err != nil {
		if errors.Is(err, predicate.ErrUnknownDigest) {
			respondError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "不支持的摘要模式", req.Algo)
			return
		}
		respondError(c, http.StatusInternalServerError, ErrorCodeInternalError, "承诺计算失败", err.Error())
		return
	}

	respondOK(c, CommitmentResponse{
		Commitment:  commitment.String(),
		Fingerprint: predicate.Fingerprint(h.hasher, field, commitment),
	})
}
