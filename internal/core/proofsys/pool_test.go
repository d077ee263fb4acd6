package proofsys

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkredit/v1/pkg/types"
)

// ============================================================================
// pool.go 测试
// ============================================================================

// createPoolTestManager 创建已初始化阈值谓词的管理器（k=6，毫秒级证明）
func createPoolTestManager(t *testing.T) *Manager {
	t.Helper()

	manager := createTestManager(t, nil)
	_, err := manager.Initialize(context.Background(), "threshold", 0)
	require.NoError(t, err)
	return manager
}

// dequeueForWorker 入队并出队一个任务，模拟worker取得任务后的状态
func dequeueForWorker(t *testing.T, queue *ProofTaskQueue, task *ProofTask) {
	t.Helper()

	require.NoError(t, queue.Enqueue(task))
	require.Equal(t, task.TaskID, queue.Dequeue().TaskID)
}

// TestNewProofWorker 测试创建工作协程
func TestNewProofWorker(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})
	worker := NewProofWorker(3, queue, nil, nil, &mockLogger{})

	require.NotNil(t, worker)
	require.Equal(t, WorkerHealthHealthy, worker.GetHealthStatus())

	stats := worker.GetStats()
	assert.Equal(t, 3, stats["worker_id"])
	assert.Equal(t, int64(0), stats["processed_count"])
	assert.Equal(t, int64(0), stats["success_count"])
	assert.Equal(t, int64(0), stats["error_count"])
	assert.Equal(t, string(WorkerHealthHealthy), stats["health_status"])
}

// TestProofWorker_ProcessTask_Success 测试任务处理成功链路
func TestProofWorker_ProcessTask_Success(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})

	callbackCh := make(chan *types.ProofArtifact, 1)
	callback := func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		require.NoError(t, err)
		require.Equal(t, string(TaskStatusCompleted), snapshot.Status)
		callbackCh <- artifact
	}
	worker := NewProofWorker(0, queue, manager, callback, &mockLogger{})

	task := createBatchTask(0, time.Minute)
	dequeueForWorker(t, queue, task)

	worker.processTask(task)

	// 回调带回证明工件
	artifact := <-callbackCh
	require.NotNil(t, artifact)
	require.Equal(t, "threshold.v1", artifact.Predicate)
	require.NotEmpty(t, artifact.ProofData)

	// 任务状态与工件均可通过队列查询
	snapshot, exists := queue.Snapshot(task.TaskID)
	require.True(t, exists)
	require.Equal(t, string(TaskStatusCompleted), snapshot.Status)
	require.Equal(t, artifact, snapshot.Artifact)

	stats := worker.GetStats()
	assert.Equal(t, int64(1), stats["processed_count"])
	assert.Equal(t, int64(1), stats["success_count"])
	assert.Equal(t, int64(0), stats["error_count"])
	assert.Equal(t, WorkerHealthHealthy, worker.GetHealthStatus())
}

// TestProofWorker_ProcessTask_Failure 测试任务处理失败链路
func TestProofWorker_ProcessTask_Failure(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})

	callbackCh := make(chan error, 1)
	callback := func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		require.Nil(t, artifact)
		require.Equal(t, string(TaskStatusFailed), snapshot.Status)
		callbackCh <- err
	}
	worker := NewProofWorker(0, queue, manager, callback, &mockLogger{})

	// 见证名称不在谓词定义中，证明生成必然失败
	task := NewProofTask(&types.ProofRequest{
		Predicate: "threshold",
		Witness:   map[string]string{"points": "70"},
		Params:    map[string]string{"threshold": "70"},
	}, 0, time.Minute)
	dequeueForWorker(t, queue, task)

	worker.processTask(task)

	err := <-callbackCh
	require.ErrorIs(t, err, ErrMalformedInput)

	snapshot, _ := queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusFailed), snapshot.Status)
	require.NotEmpty(t, snapshot.Error)

	// 默认不重试：队列中没有重新入队的任务
	require.Equal(t, 0, queue.Len())

	stats := worker.GetStats()
	assert.Equal(t, int64(1), stats["processed_count"])
	assert.Equal(t, int64(1), stats["error_count"])
}

// TestProofWorker_ProcessTask_Retry 测试失败任务自动重新入队
//
// 回调是终态通知：重试待决的失败不触发，重试额度耗尽后恰好触发一次，
// 且快照状态为failed。
func TestProofWorker_ProcessTask_Retry(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})

	var callbackCount int
	var finalStatus string
	callback := func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		callbackCount++
		finalStatus = snapshot.Status
		require.ErrorIs(t, err, ErrMalformedInput)
	}
	worker := NewProofWorker(0, queue, manager, callback, &mockLogger{})

	task := NewProofTask(&types.ProofRequest{
		Predicate: "threshold",
		Witness:   map[string]string{"points": "70"},
		Params:    map[string]string{"threshold": "70"},
	}, 0, time.Minute)
	task.MaxRetries = 2
	dequeueForWorker(t, queue, task)

	worker.processTask(task)

	// 失败但可重试：worker已将任务重新入队，回调不触发
	require.Equal(t, 1, queue.Len())
	snapshot, _ := queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusPending), snapshot.Status)
	require.Equal(t, 1, snapshot.RetryCount)
	require.Equal(t, 0, callbackCount, "重试待决的任务不应触发终态回调")

	// 重试再次失败：重试额度耗尽，任务到达终态，回调恰好触发一次
	require.Equal(t, task.TaskID, queue.Dequeue().TaskID)
	worker.processTask(task)

	require.Equal(t, 0, queue.Len())
	snapshot, _ = queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusFailed), snapshot.Status)
	require.Equal(t, 1, callbackCount)
	require.Equal(t, string(TaskStatusFailed), finalStatus)
}

// TestProofWorker_ProcessTask_Timeout 测试截止时间已过的任务标记为超时
func TestProofWorker_ProcessTask_Timeout(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})
	worker := NewProofWorker(0, queue, manager, nil, &mockLogger{})

	task := createBatchTask(0, time.Minute)
	dequeueForWorker(t, queue, task)

	// 截止时间已过，执行上下文在证明生成前即告超时
	task.TimeoutAt = time.Now().Add(-time.Second)
	worker.processTask(task)

	snapshot, _ := queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusTimeout), snapshot.Status)
}

// TestProofWorker_ProcessTask_SkipsCancelled 测试出队后被取消的任务被跳过
func TestProofWorker_ProcessTask_SkipsCancelled(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})

	invoked := false
	callback := func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		invoked = true
	}
	worker := NewProofWorker(0, queue, manager, callback, &mockLogger{})

	task := createBatchTask(0, time.Minute)
	dequeueForWorker(t, queue, task)

	// 出队与执行之间任务被取消
	require.NoError(t, queue.CancelTask(task.TaskID))

	worker.processTask(task)

	require.False(t, invoked, "被取消的任务不应触发回调")
	stats := worker.GetStats()
	assert.Equal(t, int64(0), stats["processed_count"])

	snapshot, _ := queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusCancelled), snapshot.Status)
}

// TestProofWorker_HealthDegradation 测试失败率过半时健康状态降级
func TestProofWorker_HealthDegradation(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})
	worker := NewProofWorker(0, queue, manager, nil, &mockLogger{})

	badRequest := &types.ProofRequest{
		Predicate: "threshold",
		Witness:   map[string]string{"points": "70"},
		Params:    map[string]string{"threshold": "70"},
	}

	// 1成功 + 2失败：失败率2/3，超过降级阈值
	good := createBatchTask(0, time.Minute)
	dequeueForWorker(t, queue, good)
	worker.processTask(good)
	require.Equal(t, WorkerHealthHealthy, worker.GetHealthStatus())

	for i := 0; i < 2; i++ {
		bad := NewProofTask(badRequest, 0, time.Minute)
		dequeueForWorker(t, queue, bad)
		worker.processTask(bad)
	}
	require.Equal(t, WorkerHealthDegraded, worker.GetHealthStatus())

	// 成功一次即恢复健康
	recovery := createBatchTask(0, time.Minute)
	dequeueForWorker(t, queue, recovery)
	worker.processTask(recovery)
	require.Equal(t, WorkerHealthHealthy, worker.GetHealthStatus())
}

// TestProofWorker_StartStop 测试工作协程启停
func TestProofWorker_StartStop(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})
	worker := NewProofWorker(0, queue, nil, nil, &mockLogger{})

	worker.Start()
	worker.Stop() // 阻塞直到空闲循环退出
}

// TestWorkerPool_BoundsNormalization 测试协程池边界参数归一化
func TestWorkerPool_BoundsNormalization(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})
	pool := NewProofWorkerPool(queue, nil, nil, 0, 0, 0, &mockLogger{})

	stats := pool.GetStats()
	assert.Equal(t, 1, stats["worker_count"])
	assert.Equal(t, 1, stats["min_workers"])
	assert.Equal(t, 1, stats["max_workers"])

	// workerCount超出上限时收敛到maxWorkers
	pool = NewProofWorkerPool(queue, nil, nil, 10, 1, 4, &mockLogger{})
	stats = pool.GetStats()
	assert.Equal(t, 4, stats["worker_count"])
}

// TestWorkerPool_StartStop 测试协程池启停幂等
func TestWorkerPool_StartStop(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})
	pool := NewProofWorkerPool(queue, manager, nil, 2, 1, 4, &mockLogger{})

	pool.Start()
	pool.Start() // 重复启动无影响

	stats := pool.GetStats()
	assert.Equal(t, 2, stats["worker_count"])
	assert.Equal(t, 2, stats["healthy_workers"])

	pool.Stop()
	pool.Stop() // 重复停止无影响
}

// TestWorkerPool_Restart 测试停止后可重新启动
//
// 动态调整器的停止信号通道在Stop时关闭，重启必须换新通道。
func TestWorkerPool_Restart(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})
	pool := NewProofWorkerPool(queue, manager, nil, 1, 1, 2, &mockLogger{})

	pool.Start()
	pool.Stop()

	pool.Start()
	assert.Equal(t, 1, pool.GetStats()["worker_count"])
	pool.Stop()
}

// TestWorkerPool_AddRemoveWorker 测试动态增减工作协程的边界
func TestWorkerPool_AddRemoveWorker(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})
	pool := NewProofWorkerPool(queue, manager, nil, 1, 1, 2, &mockLogger{})
	pool.Start()
	defer pool.Stop()

	require.NoError(t, pool.AddWorker())
	assert.Equal(t, 2, pool.GetStats()["worker_count"])

	err := pool.AddWorker()
	require.Error(t, err)
	require.Contains(t, err.Error(), "已达到最大工作协程数量")

	require.NoError(t, pool.RemoveWorker())
	assert.Equal(t, 1, pool.GetStats()["worker_count"])

	err = pool.RemoveWorker()
	require.Error(t, err)
	require.Contains(t, err.Error(), "已达到最小工作协程数量")
}

// TestWorkerPool_EndToEnd 测试协程池并发处理批量任务
func TestWorkerPool_EndToEnd(t *testing.T) {
	manager := createPoolTestManager(t)
	queue := NewProofTaskQueue(0, &mockLogger{})

	callbackCh := make(chan string, 8)
	callback := func(snapshot *types.BatchTaskStatus, artifact *types.ProofArtifact, err error) {
		callbackCh <- snapshot.TaskID
	}
	pool := NewProofWorkerPool(queue, manager, callback, 2, 1, 4, &mockLogger{})

	// 谓词为假的见证同样生成证明：验证方声称成立时才会被拒绝
	requests := []*types.ProofRequest{
		{Predicate: "threshold", Witness: map[string]string{"score": "70"}, Params: map[string]string{"threshold": "70"}},
		{Predicate: "threshold", Witness: map[string]string{"score": "85"}, Params: map[string]string{"threshold": "70"}},
		{Predicate: "threshold", Witness: map[string]string{"score": "69"}, Params: map[string]string{"threshold": "70"}},
	}

	tasks := make([]*ProofTask, 0, len(requests))
	for _, request := range requests {
		task := NewProofTask(request, 0, time.Minute)
		require.NoError(t, queue.Enqueue(task))
		tasks = append(tasks, task)
	}

	pool.Start()
	defer pool.Stop()

	require.Eventually(t, func() bool {
		for _, task := range tasks {
			snapshot, exists := queue.Snapshot(task.TaskID)
			if !exists || snapshot.Status != string(TaskStatusCompleted) {
				return false
			}
		}
		return true
	}, 10*time.Second, 50*time.Millisecond, "批量任务未全部完成")

	for _, task := range tasks {
		snapshot, _ := queue.Snapshot(task.TaskID)
		require.NotNil(t, snapshot.Artifact)
		require.NotEmpty(t, snapshot.Artifact.ProofData)
	}

	// 回调逐任务触发
	for i := 0; i < len(tasks); i++ {
		select {
		case <-callbackCh:
		case <-time.After(time.Second):
			t.Fatal("回调未全部触发")
		}
	}

	stats := pool.GetStats()
	assert.Equal(t, int64(3), stats["total_processed"])
	assert.Equal(t, int64(3), stats["total_success"])
	assert.Equal(t, int64(0), stats["total_errors"])
}
