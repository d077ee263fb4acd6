package api

import (
	"time"

	"github.com/zkredit/v1/pkg/types"
)

// APIOptions 本地HTTP服务配置选项
// 证明服务以托管方式对本机进程提供HTTP接口时使用
type APIOptions struct {
	// 基础配置
	ListenAddr string `json:"listen_addr"` // 监听地址（含端口）

	// 可观测性配置
	EnableMetrics bool `json:"enable_metrics"` // 是否暴露Prometheus指标端点

	// 超时配置
	RequestTimeout time.Duration `json:"request_timeout"` // 单请求处理超时（覆盖证明生成全程）
	ReadTimeout    time.Duration `json:"read_timeout"`    // 读取超时
	WriteTimeout   time.Duration `json:"write_timeout"`   // 写入超时

	// 限制配置
	MaxRequestSize int64 `json:"max_request_size"` // 最大请求体大小(字节)
}

// Config 本地HTTP服务配置实现
type Config struct {
	options *APIOptions
}

// New 创建本地HTTP服务配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultAPIOptions()

	// 2. 如果有用户配置，则转换并覆盖默认配置
	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromProvider 从配置提供者创建本地HTTP服务配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetAPI() *APIOptions }); ok {
		return &Config{
			options: p.GetAPI(),
		}
	}

	return New(nil)
}

// createDefaultAPIOptions 创建默认本地HTTP服务配置
func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		ListenAddr:     defaultListenAddr,
		EnableMetrics:  defaultEnableMetrics,
		RequestTimeout: defaultRequestTimeout,
		ReadTimeout:    defaultReadTimeout,
		WriteTimeout:   defaultWriteTimeout,
		MaxRequestSize: defaultMaxRequestSize,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(defaultOpts *APIOptions, userConfig *types.UserAPIConfig) {
	if userConfig.ListenAddr != nil {
		defaultOpts.ListenAddr = *userConfig.ListenAddr
	}
	if userConfig.EnableMetrics != nil {
		defaultOpts.EnableMetrics = *userConfig.EnableMetrics
	}
	if userConfig.RequestTimeout != nil {
		if d, err := time.ParseDuration(*userConfig.RequestTimeout); err == nil && d > 0 {
			defaultOpts.RequestTimeout = d
		}
	}
}

// GetOptions 获取完整的本地HTTP服务配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
