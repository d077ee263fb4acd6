package proofsys

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"
)

// ============================================================================
// 批量证明任务队列
// ============================================================================
//
// 🎯 **设计目的**：
// 实现优先级队列管理批量证明生成任务，支持任务提交、查询、取消和超时管理。
//
// 🏗️ **实现策略**：
// - 使用优先级队列（heap）实现任务调度
// - 出队后任务保留在索引中，终态任务在保留期内可查询
// - 后台检测器处理超时任务并清理过期终态任务
//
// ⚠️ **注意**：
// - 队列有容量上限，满时提交方收到明确拒绝而非无界积压
// - 任务状态变更必须经过队列方法（队列锁保护任务字段）
//
// ============================================================================

const (
	// taskRetention 终态任务的查询保留期，超过后从索引中清理
	taskRetention = 10 * time.Minute

	// timeoutCheckInterval 超时检测周期
	timeoutCheckInterval = 1 * time.Second
)

// ProofTaskQueue 批量证明任务队列
//
// 🎯 **核心职责**：
// - 管理批量证明生成任务
// - 支持优先级调度和容量上限
// - 支持任务状态查询与取消
// - 支持任务超时检测
type ProofTaskQueue struct {
	// 优先级队列（使用heap实现，只含待处理任务）
	queue *priorityQueue

	// 任务索引（taskID -> task，含执行中和保留期内的终态任务）
	tasks map[string]*ProofTask

	// 待处理任务容量上限（0表示不限制）
	maxPending int

	// 同步控制
	mutex sync.RWMutex

	// 日志记录器
	logger log.Logger

	// 超时检测器（后台goroutine）
	timeoutChecker *timeoutChecker

	// 是否已启动
	started bool
}

// NewProofTaskQueue 创建批量证明任务队列
//
// 📋 **参数**：
//   - maxPending: 待处理任务容量上限（0表示不限制）
//   - logger: 日志记录器
func NewProofTaskQueue(maxPending int, logger log.Logger) *ProofTaskQueue {
	q := &ProofTaskQueue{
		queue:      newPriorityQueue(),
		tasks:      make(map[string]*ProofTask),
		maxPending: maxPending,
		logger:     logger,
	}

	q.timeoutChecker = newTimeoutChecker(q, logger)

	return q
}

// Start 启动任务队列（启动超时检测器）
func (q *ProofTaskQueue) Start() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.started {
		return
	}

	// 每次启动换新检测器：stopCh/doneCh在上次Stop时已关闭，不可复用
	q.timeoutChecker = newTimeoutChecker(q, q.logger)
	q.timeoutChecker.Start()
	q.started = true

	if q.logger != nil {
		q.logger.Infof("✅ 批量证明任务队列已启动: 容量=%d", q.maxPending)
	}
}

// Stop 停止任务队列（停止超时检测器）
func (q *ProofTaskQueue) Stop() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if !q.started {
		return
	}

	q.timeoutChecker.Stop()
	q.started = false

	if q.logger != nil {
		q.logger.Infof("✅ 批量证明任务队列已停止")
	}
}

// Enqueue 入队任务
//
// 队列已满或任务ID重复时返回错误。
func (q *ProofTaskQueue) Enqueue(task *ProofTask) error {
	if task == nil {
		return fmt.Errorf("任务不能为空")
	}

	q.mutex.Lock()
	defer q.mutex.Unlock()

	if _, exists := q.tasks[task.TaskID]; exists {
		return fmt.Errorf("任务已存在: %s", task.TaskID)
	}

	if q.maxPending > 0 && q.queue.Len() >= q.maxPending {
		return fmt.Errorf("任务队列已满: 容量=%d", q.maxPending)
	}

	heap.Push(q.queue, task)
	q.tasks[task.TaskID] = task
	setBatchQueueDepth(q.queue.Len())

	if q.logger != nil {
		q.logger.Debugf("任务已入队: taskID=%s, predicate=%s, priority=%d",
			task.TaskID, task.Request.Predicate, task.Priority)
	}

	return nil
}

// Dequeue 出队优先级最高的待处理任务
//
// 任务保留在索引中以便状态查询；队列为空返回nil。
func (q *ProofTaskQueue) Dequeue() *ProofTask {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.queue.Len() > 0 {
		task := heap.Pop(q.queue).(*ProofTask)
		setBatchQueueDepth(q.queue.Len())

		// 堆中可能残留已被超时检测器标记的任务，跳过
		if task.Status != TaskStatusPending {
			continue
		}
		return task
	}
	return nil
}

// Peek 查看队列头部任务（不移除）
func (q *ProofTaskQueue) Peek() *ProofTask {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	if q.queue.Len() == 0 {
		return nil
	}
	return (*q.queue)[0]
}

// Len 返回待处理任务数量
func (q *ProofTaskQueue) Len() int {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return q.queue.Len()
}

// Snapshot 获取任务状态快照
func (q *ProofTaskQueue) Snapshot(taskID string) (*types.BatchTaskStatus, bool) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return nil, false
	}
	return task.Snapshot(), true
}

// MarkRunning 标记任务为运行中
func (q *ProofTaskQueue) MarkRunning(taskID string) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return fmt.Errorf("任务不存在: %s", taskID)
	}
	if task.Status != TaskStatusPending {
		return fmt.Errorf("任务状态不是待处理: %s（当前%s）", taskID, task.Status)
	}

	task.MarkRunning()
	return nil
}

// MarkCompleted 标记任务为已完成并附加证明工件
func (q *ProofTaskQueue) MarkCompleted(taskID string, artifact *types.ProofArtifact) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return fmt.Errorf("任务不存在: %s", taskID)
	}
	if task.Status.IsTerminal() {
		return nil // 已被超时检测器标记，保持首个终态
	}

	task.MarkCompleted(artifact)
	recordBatchTask(string(TaskStatusCompleted))
	return nil
}

// MarkFailed 标记任务为失败
//
// 返回值表示任务是否还可重试（重试通过Requeue触发）。
// 已处于终态（如超时）的任务不再改变状态。
func (q *ProofTaskQueue) MarkFailed(taskID string, err error) (bool, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return false, fmt.Errorf("任务不存在: %s", taskID)
	}
	if task.Status.IsTerminal() {
		return false, nil
	}

	task.MarkFailed(err)
	canRetry := task.CanRetry()
	if !canRetry {
		recordBatchTask(string(TaskStatusFailed))
	}
	return canRetry, nil
}

// MarkTimeout 标记任务为超时（执行链路的截止时间触发）
func (q *ProofTaskQueue) MarkTimeout(taskID string) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return fmt.Errorf("任务不存在: %s", taskID)
	}
	if task.Status.IsTerminal() {
		return nil
	}

	task.MarkTimeout()
	recordBatchTask(string(TaskStatusTimeout))
	return nil
}

// Requeue 重新入队失败的任务（降低优先级）
func (q *ProofTaskQueue) Requeue(taskID string) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return fmt.Errorf("任务不存在: %s", taskID)
	}
	if !task.CanRetry() {
		return fmt.Errorf("任务不可重试: %s（当前%s，重试%d/%d）",
			taskID, task.Status, task.RetryCount, task.MaxRetries)
	}

	task.Status = TaskStatusPending
	task.Priority -= 10
	heap.Push(q.queue, task)
	setBatchQueueDepth(q.queue.Len())

	if q.logger != nil {
		q.logger.Debugf("任务已重新入队: taskID=%s, retry=%d/%d", taskID, task.RetryCount, task.MaxRetries)
	}
	return nil
}

// CancelTask 取消待处理任务
//
// 只有待处理任务可以取消；执行中的证明生成无法中断。
func (q *ProofTaskQueue) CancelTask(taskID string) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	task, exists := q.tasks[taskID]
	if !exists {
		return fmt.Errorf("任务不存在: %s", taskID)
	}

	switch task.Status {
	case TaskStatusPending:
		// 从堆中移除（重建队列）
		newQueue := newPriorityQueue()
		for q.queue.Len() > 0 {
			t := heap.Pop(q.queue).(*ProofTask)
			if t.TaskID != taskID {
				heap.Push(newQueue, t)
			}
		}
		q.queue = newQueue
		setBatchQueueDepth(q.queue.Len())

		task.MarkCancelled()
		recordBatchTask(string(TaskStatusCancelled))

		if q.logger != nil {
			q.logger.Debugf("任务已取消: taskID=%s", taskID)
		}
		return nil

	case TaskStatusRunning:
		return fmt.Errorf("任务正在执行，无法取消: %s", taskID)

	default:
		return fmt.Errorf("任务已结束，无法取消: %s（当前%s）", taskID, task.Status)
	}
}

// GetStats 获取队列统计信息
func (q *ProofTaskQueue) GetStats() map[string]interface{} {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	stats := make(map[string]interface{})
	stats["queue_size"] = q.queue.Len()
	stats["total_tasks"] = len(q.tasks)

	statusCounts := make(map[string]int)
	for _, task := range q.tasks {
		statusCounts[string(task.Status)]++
	}
	stats["status_counts"] = statusCounts

	return stats
}

// ============================================================================
// 优先级队列实现（使用heap）
// ============================================================================

// priorityQueue 优先级队列（使用heap实现）
type priorityQueue []*ProofTask

// newPriorityQueue 创建优先级队列
func newPriorityQueue() *priorityQueue {
	pq := make(priorityQueue, 0)
	return &pq
}

// Len 返回队列长度
func (pq priorityQueue) Len() int {
	return len(pq)
}

// Less 比较函数（优先级高的在前，同优先级按创建时间先后）
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority > pq[j].Priority
	}
	return pq[i].CreatedAt.Before(pq[j].CreatedAt)
}

// Swap 交换元素
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

// Push 添加元素
func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*ProofTask))
}

// Pop 移除并返回最高优先级元素
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	task := old[n-1]
	*pq = old[0 : n-1]
	return task
}

// ============================================================================
// 超时检测器
// ============================================================================

// timeoutChecker 超时检测器
type timeoutChecker struct {
	queue  *ProofTaskQueue
	logger log.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// newTimeoutChecker 创建超时检测器
func newTimeoutChecker(queue *ProofTaskQueue, logger log.Logger) *timeoutChecker {
	return &timeoutChecker{
		queue:  queue,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start 启动超时检测器
func (tc *timeoutChecker) Start() {
	go tc.run()
}

// Stop 停止超时检测器
func (tc *timeoutChecker) Stop() {
	close(tc.stopCh)
	<-tc.doneCh
}

// run 超时检测主循环
func (tc *timeoutChecker) run() {
	defer close(tc.doneCh)

	ticker := time.NewTicker(timeoutCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-tc.stopCh:
			return
		case <-ticker.C:
			tc.sweep()
		}
	}
}

// sweep 标记超时任务并清理保留期外的终态任务
func (tc *timeoutChecker) sweep() {
	tc.queue.mutex.Lock()
	defer tc.queue.mutex.Unlock()

	now := time.Now()
	for taskID, task := range tc.queue.tasks {
		switch {
		case (task.Status == TaskStatusPending || task.Status == TaskStatusRunning) && task.IsExpired():
			task.MarkTimeout()
			recordBatchTask(string(TaskStatusTimeout))
			if tc.logger != nil {
				tc.logger.Warnf("任务超时: taskID=%s, predicate=%s", taskID, task.Request.Predicate)
			}

		case task.Status.IsTerminal() && now.Sub(task.CompletedAt) > taskRetention:
			delete(tc.queue.tasks, taskID)
		}
	}
}
