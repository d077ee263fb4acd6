package proofsys

import (
	"fmt"

	batchconfig "github.com/zkredit/v1/internal/config/batch"
	"github.com/zkredit/v1/internal/core/predicate"
	"github.com/zkredit/v1/pkg/constants/events"
	eventintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/event"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"
)

// BatchService 批量证明服务
//
// 🎯 **设计理念**：队列+工作协程池的组合外观
// 机构侧离线预生成等批量场景通过该服务提交任务、轮询状态、获取工件。
//
// 📋 **并发度策略**：
//   - 显式配置WorkerCount时使用固定协程池
//   - 自动模式按设备档位确定上限，空闲时缩容到1个
type BatchService struct {
	queue   *ProofTaskQueue
	pool    *ProofWorkerPool
	options *batchconfig.BatchOptions
	logger  log.Logger
}

// NewBatchService 创建批量证明服务
//
// callback在每个任务到达终态时调用（可为nil）。
func NewBatchService(
	manager *Manager,
	options *batchconfig.BatchOptions,
	callback ProofCallback,
	logger log.Logger,
) *BatchService {
	if options == nil {
		options = batchconfig.New(nil).GetOptions()
	}

	// 并发度解析：显式配置固定池，自动模式按设备档位弹性伸缩
	minWorkers := 1
	workerCount := options.WorkerCount
	maxWorkers := workerCount
	if workerCount <= 0 {
		workerCount = manager.DeviceTier().RecommendedWorkerCount()
		maxWorkers = workerCount
	} else {
		minWorkers = workerCount
	}

	queue := NewProofTaskQueue(options.QueueSize, logger)
	pool := NewProofWorkerPool(queue, manager, callback, workerCount, minWorkers, maxWorkers, logger)

	return &BatchService{
		queue:   queue,
		pool:    pool,
		options: options,
		logger:  logger,
	}
}

// Start 启动批量证明服务
func (s *BatchService) Start() {
	s.queue.Start()
	s.pool.Start()
}

// Stop 停止批量证明服务（等待执行中的任务完成）
func (s *BatchService) Stop() {
	s.pool.Stop()
	s.queue.Stop()
}

// Submit 提交单个证明任务
//
// 📋 **返回值**：
//   - string: 任务ID（用于状态轮询）
//   - error: 谓词未知或队列已满
func (s *BatchService) Submit(request *types.ProofRequest, priority int) (string, error) {
	if request == nil {
		return "", WrapMalformedInputError("证明请求为空")
	}

	// 提交时即校验谓词，无效请求不进入队列
	if _, err := predicate.Resolve(request.Predicate); err != nil {
		return "", WrapUnsupportedPredicateError(request.Predicate)
	}

	task := NewProofTask(request, priority, s.options.TaskTimeout)
	if err := s.queue.Enqueue(task); err != nil {
		return "", err
	}
	return task.TaskID, nil
}

// SubmitBatch 提交一批证明任务
//
// 逐个入队，遇到首个失败停止并返回已入队的任务ID和错误。
func (s *BatchService) SubmitBatch(requests []*types.ProofRequest, priority int) ([]string, error) {
	if len(requests) == 0 {
		return nil, WrapMalformedInputError("批量请求为空")
	}

	taskIDs := make([]string, 0, len(requests))
	for i, request := range requests {
		taskID, err := s.Submit(request, priority)
		if err != nil {
			return taskIDs, fmt.Errorf("第%d个任务提交失败: %w", i+1, err)
		}
		taskIDs = append(taskIDs, taskID)
	}

	if s.logger != nil {
		s.logger.Infof("批量任务已提交: 数量=%d, priority=%d", len(taskIDs), priority)
	}
	return taskIDs, nil
}

// Status 查询任务状态快照
func (s *BatchService) Status(taskID string) (*types.BatchTaskStatus, error) {
	snapshot, exists := s.queue.Snapshot(taskID)
	if !exists {
		return nil, fmt.Errorf("任务不存在: %s", taskID)
	}
	return snapshot, nil
}

// Cancel 取消待处理任务
func (s *BatchService) Cancel(taskID string) error {
	return s.queue.CancelTask(taskID)
}

// QueueDepth 返回当前待处理任务数量
func (s *BatchService) QueueDepth() int {
	return s.queue.Len()
}

// GetStats 获取队列和协程池的统计信息
func (s *BatchService) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"queue": s.queue.GetStats(),
		"pool":  s.pool.GetStats(),
	}
}

// NewEventPublishingCallback 创建把任务终态发布到事件总线的回调
//
// 发布载荷为任务状态快照（*types.BatchTaskStatus）。
// 回调只在终态触发，按快照状态选择事件主题：只有completed发成功事件，
// failed/timeout/cancelled一律发失败事件。
// bus为nil时返回nil回调，批量服务照常工作但不发事件。
func NewEventPublishingCallback(bus eventintf.EventBus) ProofCallback {
	if bus == nil {
		return nil
	}
	return func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		if snapshot.Status == string(TaskStatusCompleted) {
			bus.Publish(events.EventTypeProofTaskCompleted, snapshot)
			return
		}
		bus.Publish(events.EventTypeProofTaskFailed, snapshot)
	}
}
