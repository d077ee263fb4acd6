package proofsys

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"
)

// ============================================================================
// 批量证明工作协程池
// ============================================================================
//
// 🎯 **设计目的**：
// 实现工作协程池，管理多个工作协程并发处理批量证明生成任务。
//
// 🏗️ **实现策略**：
// - 固定goroutine池（避免goroutine泄漏）
// - 按队列积压动态调整worker数量
// - worker健康状态跟踪
//
// ⚠️ **注意**：
// - 证明生成是内存密集型操作，worker上限受设备档位约束
// - 工作协程需要处理任务失败、超时和重试
//
// ============================================================================

const (
	// idlePollInterval 队列为空时worker的轮询间隔
	idlePollInterval = 100 * time.Millisecond

	// scaleUpBacklog 触发扩容的队列积压阈值
	// 单个证明生成以秒计，积压到该值说明当前并发度已跟不上提交速率
	scaleUpBacklog = 8

	// scaleCheckInterval 动态调整检查周期
	scaleCheckInterval = 30 * time.Second
)

// ProofCallback 证明任务终态回调函数
//
// 仅在任务到达终态（completed/failed/timeout/cancelled）后触发，
// 重试待决的失败不触发。快照经队列锁获取，回调方可安全留存。
//
// 📋 **参数**：
//   - snapshot: 任务终态快照
//   - artifact: 生成的证明工件（成功时非nil）
//   - err: 错误信息（失败时非nil）
type ProofCallback func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error)

// ProofWorker 批量证明工作协程
//
// 🎯 **核心职责**：
// - 从任务队列获取任务
// - 调用证明系统管理器生成证明
// - 处理任务完成、失败和重试
type ProofWorker struct {
	// 工作协程ID
	workerID int

	// 任务队列
	taskQueue *ProofTaskQueue

	// 证明系统管理器
	manager *Manager

	// 回调函数
	callback ProofCallback

	// 控制通道
	stopCh chan struct{}
	doneCh chan struct{}

	// 日志记录器
	logger log.Logger

	// 统计信息
	processedCount atomic.Int64
	successCount   atomic.Int64
	errorCount     atomic.Int64

	// 健康状态
	healthStatus    atomic.Value // WorkerHealthStatus
	lastHealthCheck atomic.Value // time.Time
}

// WorkerHealthStatus 工作协程健康状态
type WorkerHealthStatus string

const (
	// WorkerHealthHealthy 健康
	WorkerHealthHealthy WorkerHealthStatus = "healthy"

	// WorkerHealthDegraded 降级（失败率偏高）
	WorkerHealthDegraded WorkerHealthStatus = "degraded"

	// WorkerHealthUnhealthy 不健康（连续失败）
	WorkerHealthUnhealthy WorkerHealthStatus = "unhealthy"
)

// NewProofWorker 创建批量证明工作协程
func NewProofWorker(
	workerID int,
	taskQueue *ProofTaskQueue,
	manager *Manager,
	callback ProofCallback,
	logger log.Logger,
) *ProofWorker {
	worker := &ProofWorker{
		workerID:  workerID,
		taskQueue: taskQueue,
		manager:   manager,
		callback:  callback,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		logger:    logger,
	}

	worker.healthStatus.Store(WorkerHealthHealthy)
	worker.lastHealthCheck.Store(time.Now())

	return worker
}

// Start 启动工作协程
func (w *ProofWorker) Start() {
	go w.run()
}

// Stop 停止工作协程（等待当前任务处理完毕）
func (w *ProofWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// run 工作协程主循环
func (w *ProofWorker) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		default:
			task := w.taskQueue.Dequeue()
			if task == nil {
				// 队列为空，等待一段时间
				select {
				case <-w.stopCh:
					return
				case <-time.After(idlePollInterval):
					continue
				}
			}

			w.processTask(task)
		}
	}
}

// processTask 处理单个任务
func (w *ProofWorker) processTask(task *ProofTask) {
	if err := w.taskQueue.MarkRunning(task.TaskID); err != nil {
		// 任务在出队与执行之间被取消或超时
		if w.logger != nil {
			w.logger.Debugf("工作协程%d跳过任务: %v", w.workerID, err)
		}
		return
	}

	// 任务截止时间即执行上下文的超时
	ctx, cancel := context.WithDeadline(context.Background(), task.TimeoutAt)
	defer cancel()

	artifact, err := w.manager.Prove(ctx, task.Request)
	w.processedCount.Add(1)

	if err != nil {
		w.errorCount.Add(1)

		if errors.Is(err, context.DeadlineExceeded) {
			w.taskQueue.MarkTimeout(task.TaskID)
		} else {
			canRetry, markErr := w.taskQueue.MarkFailed(task.TaskID, err)
			if markErr == nil && canRetry {
				if requeueErr := w.taskQueue.Requeue(task.TaskID); requeueErr != nil {
					if w.logger != nil {
						w.logger.Errorf("工作协程%d重试任务入队失败: taskID=%s, error=%v",
							w.workerID, task.TaskID, requeueErr)
					}
				}
			}
		}

		w.notifyIfTerminal(task.TaskID, nil, err)
		w.updateHealthStatus(false)
		return
	}

	w.successCount.Add(1)
	w.taskQueue.MarkCompleted(task.TaskID, artifact)

	w.notifyIfTerminal(task.TaskID, artifact, nil)
	w.updateHealthStatus(true)
}

// notifyIfTerminal 任务到达终态时触发回调
//
// 重试中的失败任务已回到待处理状态，不触发回调。
// 快照经队列的Snapshot获取（队列锁保护任务字段），
// 避免与重新出队同一任务的其他工作协程竞争。
func (w *ProofWorker) notifyIfTerminal(taskID string, artifact *types.ProofArtifact, err error) {
	if w.callback == nil {
		return
	}

	snapshot, exists := w.taskQueue.Snapshot(taskID)
	if !exists || !TaskStatus(snapshot.Status).IsTerminal() {
		return
	}
	w.callback(snapshot, artifact, err)
}

// updateHealthStatus 更新健康状态
func (w *ProofWorker) updateHealthStatus(success bool) {
	w.lastHealthCheck.Store(time.Now())

	if success {
		w.healthStatus.Store(WorkerHealthHealthy)
		return
	}

	errorCount := w.errorCount.Load()
	successCount := w.successCount.Load()

	if errorCount > 0 && successCount > 0 {
		failureRate := float64(errorCount) / float64(errorCount+successCount)
		if failureRate > 0.5 {
			w.healthStatus.Store(WorkerHealthDegraded)
		} else {
			w.healthStatus.Store(WorkerHealthHealthy)
		}
	} else if errorCount > 10 {
		w.healthStatus.Store(WorkerHealthUnhealthy)
	}
}

// GetStats 获取统计信息
func (w *ProofWorker) GetStats() map[string]interface{} {
	healthStatus, _ := w.healthStatus.Load().(WorkerHealthStatus)
	lastHealthCheck, _ := w.lastHealthCheck.Load().(time.Time)

	return map[string]interface{}{
		"worker_id":         w.workerID,
		"processed_count":   w.processedCount.Load(),
		"success_count":     w.successCount.Load(),
		"error_count":       w.errorCount.Load(),
		"health_status":     string(healthStatus),
		"last_health_check": lastHealthCheck,
	}
}

// GetHealthStatus 获取健康状态
func (w *ProofWorker) GetHealthStatus() WorkerHealthStatus {
	status, _ := w.healthStatus.Load().(WorkerHealthStatus)
	return status
}

// ============================================================================
// 批量证明工作协程池（ProofWorkerPool）
// ============================================================================

// ProofWorkerPool 批量证明工作协程池
//
// 🎯 **核心职责**：
// - 管理多个工作协程
// - 按队列积压动态调整worker数量
// - 优雅关闭
type ProofWorkerPool struct {
	// 工作协程列表
	workers []*ProofWorker

	// 任务队列
	taskQueue *ProofTaskQueue

	// 证明系统管理器
	manager *Manager

	// 回调函数
	callback ProofCallback

	// 工作协程数量
	workerCount int

	// 最小工作协程数量
	minWorkers int

	// 最大工作协程数量
	maxWorkers int

	// 日志记录器
	logger log.Logger

	// 是否已启动
	started    bool
	startMutex sync.Mutex

	// 动态调整器（后台goroutine）
	scaler *workerScaler
}

// NewProofWorkerPool 创建批量证明工作协程池
//
// 📋 **参数**：
//   - taskQueue: 任务队列
//   - manager: 证明系统管理器
//   - callback: 回调函数（可为nil）
//   - workerCount: 初始工作协程数量
//   - minWorkers: 最小工作协程数量
//   - maxWorkers: 最大工作协程数量
//   - logger: 日志记录器
func NewProofWorkerPool(
	taskQueue *ProofTaskQueue,
	manager *Manager,
	callback ProofCallback,
	workerCount int,
	minWorkers int,
	maxWorkers int,
	logger log.Logger,
) *ProofWorkerPool {
	if minWorkers <= 0 {
		minWorkers = 1
	}
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}
	if workerCount < minWorkers {
		workerCount = minWorkers
	}
	if workerCount > maxWorkers {
		workerCount = maxWorkers
	}

	pool := &ProofWorkerPool{
		taskQueue:   taskQueue,
		manager:     manager,
		callback:    callback,
		workerCount: workerCount,
		minWorkers:  minWorkers,
		maxWorkers:  maxWorkers,
		logger:      logger,
	}

	pool.scaler = newWorkerScaler(pool, logger)

	return pool
}

// Start 启动工作协程池
func (p *ProofWorkerPool) Start() {
	p.startMutex.Lock()
	defer p.startMutex.Unlock()

	if p.started {
		return
	}

	p.workers = make([]*ProofWorker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		worker := NewProofWorker(i, p.taskQueue, p.manager, p.callback, p.logger)
		p.workers[i] = worker
		worker.Start()
	}

	// 每次启动换新调整器：stopCh/doneCh在上次Stop时已关闭，不可复用
	p.scaler = newWorkerScaler(p, p.logger)
	p.scaler.Start()
	p.started = true

	if p.logger != nil {
		p.logger.Infof("✅ 批量证明工作协程池已启动: workers=%d（范围%d~%d）",
			p.workerCount, p.minWorkers, p.maxWorkers)
	}
}

// Stop 停止工作协程池
func (p *ProofWorkerPool) Stop() {
	p.startMutex.Lock()
	defer p.startMutex.Unlock()

	if !p.started {
		return
	}

	p.scaler.Stop()

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false

	if p.logger != nil {
		p.logger.Infof("✅ 批量证明工作协程池已停止")
	}
}

// AddWorker 添加工作协程
func (p *ProofWorkerPool) AddWorker() error {
	p.startMutex.Lock()
	defer p.startMutex.Unlock()

	if len(p.workers) >= p.maxWorkers {
		return fmt.Errorf("已达到最大工作协程数量: %d", p.maxWorkers)
	}

	workerID := len(p.workers)
	worker := NewProofWorker(workerID, p.taskQueue, p.manager, p.callback, p.logger)
	p.workers = append(p.workers, worker)
	worker.Start()

	p.workerCount = len(p.workers)

	if p.logger != nil {
		p.logger.Infof("✅ 添加工作协程: workerID=%d, total=%d", workerID, p.workerCount)
	}

	return nil
}

// RemoveWorker 移除工作协程
func (p *ProofWorkerPool) RemoveWorker() error {
	p.startMutex.Lock()
	defer p.startMutex.Unlock()

	if len(p.workers) <= p.minWorkers {
		return fmt.Errorf("已达到最小工作协程数量: %d", p.minWorkers)
	}

	lastIndex := len(p.workers) - 1
	worker := p.workers[lastIndex]
	worker.Stop()
	p.workers = p.workers[:lastIndex]

	p.workerCount = len(p.workers)

	if p.logger != nil {
		p.logger.Infof("✅ 移除工作协程: workerID=%d, total=%d", lastIndex, p.workerCount)
	}

	return nil
}

// GetStats 获取统计信息
func (p *ProofWorkerPool) GetStats() map[string]interface{} {
	p.startMutex.Lock()
	defer p.startMutex.Unlock()

	totalProcessed := int64(0)
	totalSuccess := int64(0)
	totalErrors := int64(0)
	healthyWorkers := 0
	degradedWorkers := 0
	unhealthyWorkers := 0

	for _, worker := range p.workers {
		totalProcessed += worker.processedCount.Load()
		totalSuccess += worker.successCount.Load()
		totalErrors += worker.errorCount.Load()

		switch worker.GetHealthStatus() {
		case WorkerHealthHealthy:
			healthyWorkers++
		case WorkerHealthDegraded:
			degradedWorkers++
		case WorkerHealthUnhealthy:
			unhealthyWorkers++
		}
	}

	return map[string]interface{}{
		"worker_count":      p.workerCount,
		"min_workers":       p.minWorkers,
		"max_workers":       p.maxWorkers,
		"total_processed":   totalProcessed,
		"total_success":     totalSuccess,
		"total_errors":      totalErrors,
		"healthy_workers":   healthyWorkers,
		"degraded_workers":  degradedWorkers,
		"unhealthy_workers": unhealthyWorkers,
	}
}

// ============================================================================
// 动态调整器（workerScaler）
// ============================================================================

// workerScaler 工作协程动态调整器
type workerScaler struct {
	pool   *ProofWorkerPool
	logger log.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// newWorkerScaler 创建动态调整器
func newWorkerScaler(pool *ProofWorkerPool, logger log.Logger) *workerScaler {
	return &workerScaler{
		pool:   pool,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start 启动动态调整器
func (s *workerScaler) Start() {
	go s.run()
}

// Stop 停止动态调整器
func (s *workerScaler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// run 动态调整主循环
func (s *workerScaler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(scaleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.adjustWorkers()
		}
	}
}

// adjustWorkers 按队列积压调整工作协程数量
func (s *workerScaler) adjustWorkers() {
	backlog := s.pool.taskQueue.Len()

	// 积压超过阈值时扩容
	if backlog > scaleUpBacklog {
		if err := s.pool.AddWorker(); err == nil {
			if s.logger != nil {
				s.logger.Infof("动态调整：增加工作协程（队列积压: %d）", backlog)
			}
		}
		return
	}

	// 队列为空时缩容
	if backlog == 0 {
		if err := s.pool.RemoveWorker(); err == nil {
			if s.logger != nil {
				s.logger.Infof("动态调整：减少工作协程（队列为空）")
			}
		}
	}
}
