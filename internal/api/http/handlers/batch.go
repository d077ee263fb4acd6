package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zkredit/v1/internal/api/http/middleware"
	"github.com/zkredit/v1/internal/core/proofsys"
	infralog "github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"
)

// BatchHandler 批量证明任务处理器
//
// 任务异步执行：提交返回任务ID，调用方轮询状态端点获取终态工件。
type BatchHandler struct {
	batch  *proofsys.BatchService
	logger infralog.Logger
}

// NewBatchHandler 创建批量任务处理器
func NewBatchHandler(batch *proofsys.BatchService, logger infralog.Logger) *BatchHandler {
	return &BatchHandler{
		batch:  batch,
		logger: logger,
	}
}

// SubmitTaskRequest 单任务提交请求体
type SubmitTaskRequest struct {
	Request  *types.ProofRequest `json:"request"`  // 证明请求
	Priority int                 `json:"priority"` // 任务优先级（大者先执行）
}

// SubmitBatchRequest 批量提交请求体
type SubmitBatchRequest struct {
	Requests []*types.ProofRequest `json:"requests"` // 证明请求列表
	Priority int                   `json:"priority"` // 整批共用的优先级
}

// Submit 处理 POST /api/v1/batch/tasks
func (h *BatchHandler) Submit(c *gin.Context) {
	var req SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	taskID, err := h.batch.Submit(req.Request, req.Priority)
	if err != nil {
		h.respondBatchError(c, err, "任务提交失败")
		return
	}

	c.JSON(http.StatusAccepted, StandardAPIResponse{
		Success:   true,
		Data:      gin.H{"task_id": taskID},
		RequestID: middleware.GetRequestID(c),
	})
}

// SubmitBatch 处理 POST /api/v1/batch/tasks/bulk
func (h *BatchHandler) SubmitBatch(c *gin.Context) {
	var req SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "请求体解析失败", err.Error())
		return
	}

	taskIDs, err := h.batch.SubmitBatch(req.Requests, req.Priority)
	if err != nil {
		// 部分成功也原样返回已入队的ID，调用方可据此只重提失败的部分
		c.JSON(http.StatusBadRequest, StandardAPIResponse{
			Success: false,
			Data:    gin.H{"task_ids": taskIDs},
			Error: &APIError{
				Code:    ErrorCodeInvalidRequest,
				Message: "批量提交未全部完成",
				Details: err.Error(),
			},
			RequestID: middleware.GetRequestID(c),
		})
		return
	}

	c.JSON(http.StatusAccepted, StandardAPIResponse{
		Success:   true,
		Data:      gin.H{"task_ids": taskIDs},
		RequestID: middleware.GetRequestID(c),
	})
}

// GetTask 处理 GET /api/v1/batch/tasks/:id
func (h *BatchHandler) GetTask(c *gin.Context) {
	taskID := c.Param("id")

	status, err := h.batch.Status(taskID)
	if err != nil {
		respondError(c, http.StatusNotFound, ErrorCodeTaskNotFound, "任务不存在或已过保留期", err.Error())
		return
	}
	respondOK(c, status)
}

// CancelTask 处理 DELETE /api/v1/batch/tasks/:id
func (h *BatchHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.batch.Cancel(taskID); err != nil {
		h.respondBatchError(c, err, "任务取消失败")
		return
	}
	respondOK(c, gin.H{"task_id": taskID, "cancelled": true})
}

// GetStats 处理 GET /api/v1/batch/stats
func (h *BatchHandler) GetStats(c *gin.Context) {
	respondOK(c, gin.H{
		"queue_depth": h.batch.QueueDepth(),
		"stats":       h.batch.GetStats(),
	})
}

// respondBatchError 批量服务错误的HTTP映射
//
// 队列满映射为429（背压信号，调用方应退避后重试），
// 任务不存在映射为404，其余沿用证明系统的通用分类。
func (h *BatchHandler) respondBatchError(c *gin.Context, err error, message string) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "队列已满"):
		respondError(c, http.StatusTooManyRequests, ErrorCodeQueueFull, message, msg)
	case strings.Contains(msg, "任务不存在"):
		respondError(c, http.StatusNotFound, ErrorCodeTaskNotFound, message, msg)
	default:
		respondProofError(c, err, message)
	}
}
