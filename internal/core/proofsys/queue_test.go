package proofsys

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkredit/v1/pkg/types"
)

// ============================================================================
// task.go / queue.go 测试
// ============================================================================

// createBatchTask 创建测试任务（阈值谓词请求）
func createBatchTask(priority int, timeout time.Duration) *ProofTask {
	return NewProofTask(&types.ProofRequest{
		Predicate: "threshold",
		Witness:   map[string]string{"score": "70"},
		Params:    map[string]string{"threshold": "70"},
	}, priority, timeout)
}

// TestNewProofTask 测试创建证明任务
func TestNewProofTask(t *testing.T) {
	task := createBatchTask(10, time.Minute)
	require.NotNil(t, task)
	require.NotEmpty(t, task.TaskID)
	require.Equal(t, 10, task.Priority)
	require.Equal(t, TaskStatusPending, task.Status)
	require.Equal(t, time.Minute, task.TimeoutAt.Sub(task.CreatedAt))
	// 证明生成是确定性计算，默认不重试
	require.Equal(t, 0, task.MaxRetries)

	// 任务ID唯一
	other := createBatchTask(10, time.Minute)
	require.NotEqual(t, task.TaskID, other.TaskID)
}

// TestNewProofTask_DefaultTimeout 测试默认超时时间
func TestNewProofTask_DefaultTimeout(t *testing.T) {
	task := createBatchTask(0, 0)
	require.Equal(t, 5*time.Minute, task.TimeoutAt.Sub(task.CreatedAt))
}

// TestProofTask_IsExpired 测试任务过期判断
func TestProofTask_IsExpired(t *testing.T) {
	task := createBatchTask(0, time.Minute)
	require.False(t, task.IsExpired())

	task.TimeoutAt = time.Now().Add(-time.Second)
	require.True(t, task.IsExpired())
}

// TestProofTask_CanRetry 测试重试判断
func TestProofTask_CanRetry(t *testing.T) {
	task := createBatchTask(0, time.Minute)

	// 待处理状态不能重试
	require.False(t, task.CanRetry())

	// 默认MaxRetries=0：失败后也不重试
	task.MarkFailed(errors.New("solve error"))
	require.False(t, task.CanRetry())

	// 显式提高重试上限后失败任务可重试
	task = createBatchTask(0, time.Minute)
	task.MaxRetries = 2
	task.MarkFailed(errors.New("solve error"))
	require.Equal(t, 1, task.RetryCount)
	require.True(t, task.CanRetry())

	task.MarkFailed(errors.New("solve error again"))
	require.Equal(t, 2, task.RetryCount)
	require.False(t, task.CanRetry())

	// 终态不是失败时不能重试
	task = createBatchTask(0, time.Minute)
	task.MaxRetries = 2
	task.MarkCompleted(&types.ProofArtifact{})
	require.False(t, task.CanRetry())
}

// TestProofTask_StateTransitions 测试状态标记
func TestProofTask_StateTransitions(t *testing.T) {
	task := createBatchTask(0, time.Minute)

	task.MarkRunning()
	require.Equal(t, TaskStatusRunning, task.Status)
	require.False(t, task.StartedAt.IsZero())
	require.False(t, task.Status.IsTerminal())

	artifact := &types.ProofArtifact{Predicate: "threshold.v1"}
	task.MarkCompleted(artifact)
	require.Equal(t, TaskStatusCompleted, task.Status)
	require.False(t, task.CompletedAt.IsZero())
	require.Equal(t, artifact, task.Artifact)
	require.True(t, task.Status.IsTerminal())

	for _, status := range []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusTimeout, TaskStatusCancelled} {
		require.True(t, status.IsTerminal(), "状态%s应为终态", status)
	}
	for _, status := range []TaskStatus{TaskStatusPending, TaskStatusRunning} {
		require.False(t, status.IsTerminal(), "状态%s不应为终态", status)
	}
}

// TestProofTask_Snapshot 测试任务状态快照
func TestProofTask_Snapshot(t *testing.T) {
	task := createBatchTask(5, time.Minute)

	// 待处理：开始/完成时间为零值，不出现在快照里
	snapshot := task.Snapshot()
	require.Equal(t, task.TaskID, snapshot.TaskID)
	require.Equal(t, "threshold", snapshot.Predicate)
	require.Equal(t, string(TaskStatusPending), snapshot.Status)
	require.Equal(t, 5, snapshot.Priority)
	require.Zero(t, snapshot.StartedAt)
	require.Zero(t, snapshot.CompletedAt)
	require.Nil(t, snapshot.Artifact)
	require.Empty(t, snapshot.Error)

	// 完成：附带工件
	task.MarkRunning()
	artifact := &types.ProofArtifact{Predicate: "threshold.v1"}
	task.MarkCompleted(artifact)
	snapshot = task.Snapshot()
	require.Equal(t, string(TaskStatusCompleted), snapshot.Status)
	require.NotZero(t, snapshot.StartedAt)
	require.NotZero(t, snapshot.CompletedAt)
	require.Equal(t, artifact, snapshot.Artifact)

	// 失败：附带错误信息，不附带工件
	task = createBatchTask(0, time.Minute)
	task.MarkRunning()
	task.MarkFailed(errors.New("witness solve error"))
	snapshot = task.Snapshot()
	require.Equal(t, string(TaskStatusFailed), snapshot.Status)
	require.Equal(t, "witness solve error", snapshot.Error)
	require.Nil(t, snapshot.Artifact)
	require.Equal(t, 1, snapshot.RetryCount)
}

// TestQueue_EnqueueDequeue 测试入队出队的优先级顺序
func TestQueue_EnqueueDequeue(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	low := createBatchTask(0, time.Minute)
	high := createBatchTask(20, time.Minute)
	mid := createBatchTask(10, time.Minute)

	require.NoError(t, queue.Enqueue(low))
	require.NoError(t, queue.Enqueue(high))
	require.NoError(t, queue.Enqueue(mid))
	require.Equal(t, 3, queue.Len())

	// 优先级高者先出队
	require.Equal(t, high.TaskID, queue.Dequeue().TaskID)
	require.Equal(t, mid.TaskID, queue.Dequeue().TaskID)
	require.Equal(t, low.TaskID, queue.Dequeue().TaskID)
	require.Nil(t, queue.Dequeue())
}

// TestQueue_FIFOWithinPriority 测试同优先级按创建时间先后出队
func TestQueue_FIFOWithinPriority(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	base := time.Now()
	first := createBatchTask(10, time.Minute)
	first.CreatedAt = base
	second := createBatchTask(10, time.Minute)
	second.CreatedAt = base.Add(time.Millisecond)

	// 逆序入队也不影响出队顺序
	require.NoError(t, queue.Enqueue(second))
	require.NoError(t, queue.Enqueue(first))

	require.Equal(t, first.TaskID, queue.Dequeue().TaskID)
	require.Equal(t, second.TaskID, queue.Dequeue().TaskID)
}

// TestQueue_Enqueue_Rejections 测试入队拒绝场景
func TestQueue_Enqueue_Rejections(t *testing.T) {
	queue := NewProofTaskQueue(2, &mockLogger{})

	t.Run("nil任务", func(t *testing.T) {
		err := queue.Enqueue(nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务不能为空")
	})

	t.Run("重复任务", func(t *testing.T) {
		task := createBatchTask(0, time.Minute)
		require.NoError(t, queue.Enqueue(task))
		err := queue.Enqueue(task)
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务已存在")
	})

	t.Run("队列已满", func(t *testing.T) {
		require.NoError(t, queue.Enqueue(createBatchTask(0, time.Minute)))
		require.Equal(t, 2, queue.Len())

		err := queue.Enqueue(createBatchTask(0, time.Minute))
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务队列已满")

		// 出队释放容量后可继续入队
		require.NotNil(t, queue.Dequeue())
		require.NoError(t, queue.Enqueue(createBatchTask(0, time.Minute)))
	})
}

// TestQueue_TaskRemainsQueryableAfterDequeue 测试出队后任务仍可查询
func TestQueue_TaskRemainsQueryableAfterDequeue(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	task := createBatchTask(0, time.Minute)
	require.NoError(t, queue.Enqueue(task))

	dequeued := queue.Dequeue()
	require.Equal(t, task.TaskID, dequeued.TaskID)
	require.Equal(t, 0, queue.Len())

	// 执行中的任务必须能查到状态（这正是批量API轮询依赖的行为）
	snapshot, exists := queue.Snapshot(task.TaskID)
	require.True(t, exists)
	require.Equal(t, string(TaskStatusPending), snapshot.Status)

	require.NoError(t, queue.MarkRunning(task.TaskID))
	snapshot, _ = queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusRunning), snapshot.Status)

	require.NoError(t, queue.MarkCompleted(task.TaskID, &types.ProofArtifact{}))
	snapshot, _ = queue.Snapshot(task.TaskID)
	require.Equal(t, string(TaskStatusCompleted), snapshot.Status)
	require.NotNil(t, snapshot.Artifact)

	// 未知任务查询
	_, exists = queue.Snapshot("no-such-task")
	require.False(t, exists)
}

// TestQueue_FirstTerminalStateWins 测试首个终态保持不变
func TestQueue_FirstTerminalStateWins(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	task := createBatchTask(0, time.Minute)
	require.NoError(t, queue.Enqueue(task))
	require.NotNil(t, queue.Dequeue())
	require.NoError(t, queue.MarkRunning(task.TaskID))

	// 超时检测先标记了超时
	require.NoError(t, queue.MarkTimeout(task.TaskID))
	require.Equal(t, TaskStatusTimeout, task.Status)

	// 随后的完成/失败标记是空操作，不覆盖首个终态
	require.NoError(t, queue.MarkCompleted(task.TaskID, &types.ProofArtifact{}))
	require.Equal(t, TaskStatusTimeout, task.Status)
	require.Nil(t, task.Artifact)

	canRetry, err := queue.MarkFailed(task.TaskID, errors.New("late error"))
	require.NoError(t, err)
	require.False(t, canRetry)
	require.Equal(t, TaskStatusTimeout, task.Status)
}

// TestQueue_MarkRunning_Rejections 测试非待处理任务不能标记运行
func TestQueue_MarkRunning_Rejections(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	err := queue.MarkRunning("no-such-task")
	require.Error(t, err)
	require.Contains(t, err.Error(), "任务不存在")

	task := createBatchTask(0, time.Minute)
	require.NoError(t, queue.Enqueue(task))
	require.NotNil(t, queue.Dequeue())
	require.NoError(t, queue.MarkRunning(task.TaskID))

	err = queue.MarkRunning(task.TaskID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "任务状态不是待处理")
}

// TestQueue_RetryViaRequeue 测试失败重试链路
func TestQueue_RetryViaRequeue(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	task := createBatchTask(50, time.Minute)
	task.MaxRetries = 2
	require.NoError(t, queue.Enqueue(task))
	require.NotNil(t, queue.Dequeue())
	require.NoError(t, queue.MarkRunning(task.TaskID))

	// 1. 首次失败：还可重试
	canRetry, err := queue.MarkFailed(task.TaskID, errors.New("transient error"))
	require.NoError(t, err)
	require.True(t, canRetry)

	// 2. 重新入队：状态回到待处理，优先级降档
	require.NoError(t, queue.Requeue(task.TaskID))
	require.Equal(t, TaskStatusPending, task.Status)
	require.Equal(t, 40, task.Priority)
	require.Equal(t, 1, queue.Len())

	// 3. 再次执行失败：重试次数耗尽
	require.NotNil(t, queue.Dequeue())
	require.NoError(t, queue.MarkRunning(task.TaskID))
	canRetry, err = queue.MarkFailed(task.TaskID, errors.New("permanent error"))
	require.NoError(t, err)
	require.False(t, canRetry)

	err = queue.Requeue(task.TaskID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "任务不可重试")
}

// TestQueue_CancelTask 测试任务取消
func TestQueue_CancelTask(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	t.Run("取消待处理任务", func(t *testing.T) {
		keep := createBatchTask(10, time.Minute)
		victim := createBatchTask(20, time.Minute)
		require.NoError(t, queue.Enqueue(keep))
		require.NoError(t, queue.Enqueue(victim))

		require.NoError(t, queue.CancelTask(victim.TaskID))
		require.Equal(t, TaskStatusCancelled, victim.Status)
		require.Equal(t, 1, queue.Len())

		// 剩余任务不受影响
		require.Equal(t, keep.TaskID, queue.Dequeue().TaskID)
	})

	t.Run("执行中的任务无法取消", func(t *testing.T) {
		task := createBatchTask(0, time.Minute)
		require.NoError(t, queue.Enqueue(task))
		require.NotNil(t, queue.Dequeue())
		require.NoError(t, queue.MarkRunning(task.TaskID))

		err := queue.CancelTask(task.TaskID)
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务正在执行")
	})

	t.Run("终态任务无法取消", func(t *testing.T) {
		task := createBatchTask(0, time.Minute)
		require.NoError(t, queue.Enqueue(task))
		require.NotNil(t, queue.Dequeue())
		require.NoError(t, queue.MarkRunning(task.TaskID))
		require.NoError(t, queue.MarkCompleted(task.TaskID, &types.ProofArtifact{}))

		err := queue.CancelTask(task.TaskID)
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务已结束")
	})

	t.Run("不存在的任务", func(t *testing.T) {
		err := queue.CancelTask("no-such-task")
		require.Error(t, err)
		require.Contains(t, err.Error(), "任务不存在")
	})
}

// TestQueue_TimeoutSweep 测试超时检测器标记过期任务
func TestQueue_TimeoutSweep(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})
	queue.Start()
	defer queue.Stop()

	task := createBatchTask(0, 50*time.Millisecond)
	require.NoError(t, queue.Enqueue(task))

	// 检测周期为1秒，留足余量轮询
	require.Eventually(t, func() bool {
		snapshot, exists := queue.Snapshot(task.TaskID)
		return exists && snapshot.Status == string(TaskStatusTimeout)
	}, 5*time.Second, 50*time.Millisecond, "超时任务未被检测器标记")

	// 被标记超时的任务残留在堆中，出队时被跳过
	require.Nil(t, queue.Dequeue())
}

// TestQueue_StartStop 测试队列启停幂等
func TestQueue_StartStop(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	queue.Start()
	queue.Start() // 重复启动无影响
	queue.Stop()
	queue.Stop() // 重复停止无影响
}

// TestQueue_Restart 测试停止后可重新启动
//
// 超时检测器的停止信号通道在Stop时关闭，重启必须换新通道。
func TestQueue_Restart(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	queue.Start()
	queue.Stop()

	queue.Start()
	require.NoError(t, queue.Enqueue(createBatchTask(0, time.Minute)))
	queue.Stop()
}

// TestQueue_GetStats 测试队列统计
func TestQueue_GetStats(t *testing.T) {
	queue := NewProofTaskQueue(0, &mockLogger{})

	running := createBatchTask(0, time.Minute)
	pending := createBatchTask(0, time.Minute)
	require.NoError(t, queue.Enqueue(running))
	require.NoError(t, queue.Enqueue(pending))
	require.NotNil(t, queue.Dequeue())
	require.NoError(t, queue.MarkRunning(running.TaskID))

	stats := queue.GetStats()
	assert.Equal(t, 1, stats["queue_size"])
	assert.Equal(t, 2, stats["total_tasks"])

	statusCounts, ok := stats["status_counts"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 1, statusCounts[string(TaskStatusPending)])
	assert.Equal(t, 1, statusCounts[string(TaskStatusRunning)])
}
