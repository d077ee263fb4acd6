package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zkredit/v1/internal/core/proofsys"
	infralog "github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// SystemHandler 系统生命周期处理器
//
// 负责证明系统的初始化与状态查询。初始化是进程级重操作
// （可信设置生成或从keystore恢复），由Manager内部串行化，
// 并发请求会在锁上排队而不是产生竞争。
type SystemHandler struct {
	manager *proofsys.Manager
	logger  infralog.Logger
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(manager *proofsys.Manager, logger infralog.Logger) *SystemHandler {
	return &SystemHandler{
		manager: manager,
		logger:  logger,
	}
}

// InitializeRequest 初始化请求体
type InitializeRequest struct {
	// Predicate 要初始化的谓词；空或"all"表示全部内置谓词
	Predicate string `json:"predicate"`

	// RowExponent 行数指数k；0表示按配置或设备档位自动选择
	RowExponent int `json:"row_exponent"`
}

// Initialize 处理 POST /api/v1/system/initialize
func (h *SystemHandler) Initialize(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	ctx := c.Request.Context()

	// 空谓词或"all"：初始化全部内置谓词（与FFI边界的单次设置语义一致）
	if req.Predicate == "" || req.Predicate == "all" {
		summaries, err := h.manager.InitializeAll(ctx, req.RowExponent)
		if err != nil {
			respondProofError(c, err, "系统初始化失败")
			return
		}
		respondOK(c, gin.H{"setups": summaries})
		return
	}

	summary, err := h.manager.Initialize(ctx, req.Predicate, req.RowExponent)
	if err != nil {
		respondProofError(c, err, "谓词初始化失败")
		return
	}
	respondOK(c, summary)
}

// Status 处理 GET /api/v1/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	respondOK(c, h.manager.Status())
}

// Device 处理 GET /api/v1/system/device
//
// 返回当前设备档位及其推荐参数，调用方据此决定k和批量规模。
func (h *SystemHandler) Device(c *gin.Context) {
	tier := h.manager.DeviceTier()
	k := tier.RecommendedRowExponent()

	respondOK(c, gin.H{
		"tier":                     string(tier),
		"recommended_row_exponent": k,
		"optimal_batch_size":       tier.OptimalBatchSize(),
		"recommended_workers":      tier.RecommendedWorkerCount(),
		"estimated_proof_time_ms":  tier.EstimateProofTimeMs(k),
		"estimated_memory_mb":      proofsys.EstimateMemoryUsageMB(k),
		"mobile_suitable":          proofsys.IsMobileSuitable(k),
	})
}
