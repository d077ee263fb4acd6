package batch

import (
	"time"

	"github.com/zkredit/v1/pkg/types"
)

// BatchOptions 批量证明配置选项
// 控制批量证明任务队列和工作池的行为
type BatchOptions struct {
	WorkerCount int           `json:"worker_count"` // 并发工作协程数（0表示按设备档位自动选择）
	QueueSize   int           `json:"queue_size"`   // 任务队列容量
	TaskTimeout time.Duration `json:"task_timeout"` // 单任务执行超时
}

// Config 批量证明配置实现
type Config struct {
	options *BatchOptions
}

// New 创建批量证明配置实现
func New(userConfig *types.UserBatchConfig) *Config {
	defaultOptions := createDefaultBatchOptions()

	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromProvider 从配置提供者创建批量证明配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetBatch() *BatchOptions }); ok {
		return &Config{
			options: p.GetBatch(),
		}
	}

	return New(nil)
}

// createDefaultBatchOptions 创建默认批量证明配置
func createDefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		WorkerCount: defaultWorkerCount,
		QueueSize:   defaultQueueSize,
		TaskTimeout: defaultTaskTimeout,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
func convertAndMergeUserConfig(defaultOpts *BatchOptions, userConfig *types.UserBatchConfig) {
	if userConfig.WorkerCount != nil && *userConfig.WorkerCount >= 0 {
		defaultOpts.WorkerCount = *userConfig.WorkerCount
	}
	if userConfig.QueueSize != nil && *userConfig.QueueSize > 0 {
		defaultOpts.QueueSize = *userConfig.QueueSize
	}
	if userConfig.TaskTimeout != nil {
		if d, err := time.ParseDuration(*userConfig.TaskTimeout); err == nil && d > 0 {
			defaultOpts.TaskTimeout = d
		}
	}
}

// GetOptions 获取完整的批量证明配置选项
func (c *Config) GetOptions() *BatchOptions {
	return c.options
}
