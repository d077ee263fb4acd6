package batch

import "time"

// 批量证明配置默认值
const (
	// defaultWorkerCount 默认工作协程数设为0（自动）
	// 原因：证明生成是内存密集型操作，并发度受设备内存而非CPU核数约束
	// 0表示启动时按设备档位选择（低端1个，桌面最多4个）
	defaultWorkerCount = 0

	// defaultQueueSize 任务队列容量设为256
	// 原因：批量场景（如机构侧离线预生成）的典型批次在百量级
	// 队列满时提交方收到明确的拒绝而非无界积压
	defaultQueueSize = 256

	// defaultTaskTimeout 单任务超时设为5分钟
	// 原因：覆盖最慢档位的单个证明生成，超时任务被标记失败并释放工作协程
	// 防止异常任务永久占用工作池
	defaultTaskTimeout = 5 * time.Minute
)
