package proofsys

import (
	"time"

	"github.com/google/uuid"

	"github.com/zkredit/v1/pkg/types"
)

// ============================================================================
// 批量证明任务定义
// ============================================================================
//
// 🎯 **设计目的**：
// 定义批量证明生成任务的结构和状态机，支持异步生成和状态查询。
//
// 🏗️ **实现策略**：
// - 任务封装完整的证明请求和调度元数据
// - 任务状态支持查询和更新
// - 支持任务优先级和超时机制
//
// ⚠️ **注意**：
// - 任务字段由所属队列的锁保护，状态变更必须经过队列方法
// - Witness随任务在内存中停留至任务执行完毕，队列不落盘任务
//
// ============================================================================

// ProofTask 批量证明生成任务
//
// 🎯 **核心职责**：
// - 封装证明生成所需的全部输入
// - 维护任务状态机和调度元数据
type ProofTask struct {
	// 任务ID（唯一标识）
	TaskID string

	// 证明生成请求
	Request *types.ProofRequest

	// 任务优先级（数字越大优先级越高）
	Priority int

	// 任务状态
	Status TaskStatus

	// 任务创建时间
	CreatedAt time.Time

	// 任务开始时间
	StartedAt time.Time

	// 任务完成时间
	CompletedAt time.Time

	// 任务超时时间
	TimeoutAt time.Time

	// 生成的证明工件（完成时填充）
	Artifact *types.ProofArtifact

	// 错误信息（失败时填充）
	Err error

	// 重试次数
	RetryCount int

	// 最大重试次数
	MaxRetries int
}

// TaskStatus 任务状态
type TaskStatus string

const (
	// TaskStatusPending 待处理
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusRunning 运行中
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusCompleted 已完成
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed 失败
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusTimeout 超时
	TaskStatusTimeout TaskStatus = "timeout"

	// TaskStatusCancelled 已取消
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsTerminal 判断状态是否为终态
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusTimeout, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// NewProofTask 创建批量证明生成任务
//
// 📋 **参数**：
//   - request: 证明生成请求
//   - priority: 任务优先级（默认0）
//   - timeout: 任务超时时间（默认5分钟）
//
// 证明生成是确定性计算：输入不变则重试结果不变，
// 因此MaxRetries默认为0，只有调用方显式提高才会触发重试。
func NewProofTask(request *types.ProofRequest, priority int, timeout time.Duration) *ProofTask {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	now := time.Now()
	return &ProofTask{
		TaskID:    uuid.NewString(),
		Request:   request,
		Priority:  priority,
		Status:    TaskStatusPending,
		CreatedAt: now,
		TimeoutAt: now.Add(timeout),
	}
}

// IsExpired 检查任务是否已过期
func (t *ProofTask) IsExpired() bool {
	return time.Now().After(t.TimeoutAt)
}

// CanRetry 检查任务是否可以重试
func (t *ProofTask) CanRetry() bool {
	return t.Status == TaskStatusFailed && t.RetryCount < t.MaxRetries
}

// MarkRunning 标记任务为运行中
func (t *ProofTask) MarkRunning() {
	t.Status = TaskStatusRunning
	t.StartedAt = time.Now()
}

// MarkCompleted 标记任务为已完成
func (t *ProofTask) MarkCompleted(artifact *types.ProofArtifact) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = time.Now()
	t.Artifact = artifact
}

// MarkFailed 标记任务为失败
func (t *ProofTask) MarkFailed(err error) {
	t.Status = TaskStatusFailed
	t.CompletedAt = time.Now()
	t.Err = err
	t.RetryCount++
}

// MarkTimeout 标记任务为超时
func (t *ProofTask) MarkTimeout() {
	t.Status = TaskStatusTimeout
	t.CompletedAt = time.Now()
}

// MarkCancelled 标记任务为已取消
func (t *ProofTask) MarkCancelled() {
	t.Status = TaskStatusCancelled
	t.CompletedAt = time.Now()
}

// GetDuration 获取任务执行时长
func (t *ProofTask) GetDuration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}

	endTime := t.CompletedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}

	return endTime.Sub(t.StartedAt)
}

// GetWaitTime 获取任务等待时长
func (t *ProofTask) GetWaitTime() time.Duration {
	if t.StartedAt.IsZero() {
		return time.Since(t.CreatedAt)
	}
	return t.StartedAt.Sub(t.CreatedAt)
}

// Snapshot 生成任务状态快照（API响应载荷）
//
// ⚠️ 任务字段由队列锁保护，必须经由队列的Snapshot方法调用
func (t *ProofTask) Snapshot() *types.BatchTaskStatus {
	snapshot := &types.BatchTaskStatus{
		TaskID:     t.TaskID,
		Status:     string(t.Status),
		Priority:   t.Priority,
		CreatedAt:  t.CreatedAt.Unix(),
		WaitTimeMs: uint64(t.GetWaitTime().Milliseconds()),
		DurationMs: uint64(t.GetDuration().Milliseconds()),
		RetryCount: t.RetryCount,
	}
	if t.Request != nil {
		snapshot.Predicate = t.Request.Predicate
	}
	if !t.StartedAt.IsZero() {
		snapshot.StartedAt = t.StartedAt.Unix()
	}
	if !t.CompletedAt.IsZero() {
		snapshot.CompletedAt = t.CompletedAt.Unix()
	}
	if t.Err != nil {
		snapshot.Error = t.Err.Error()
	}
	if t.Status == TaskStatusCompleted {
		snapshot.Artifact = t.Artifact
	}
	return snapshot
}
