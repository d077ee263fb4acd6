package cache

import (
	"time"

	"github.com/zkredit/v1/pkg/types"
)

// CacheOptions 验证缓存配置选项
// 控制验证结果内存缓存的行为
type CacheOptions struct {
	LifeWindow         time.Duration `json:"life_window"`           // 条目生命周期
	CleanWindow        time.Duration `json:"clean_window"`          // 过期条目清理周期
	MaxEntriesInWindow int           `json:"max_entries_in_window"` // 生命周期窗口内的最大条目数
	MaxEntrySize       int           `json:"max_entry_size"`        // 单条目最大字节数
}

// Config 验证缓存配置实现
type Config struct {
	options *CacheOptions
}

// New 创建验证缓存配置实现
func New(userConfig *types.UserCacheConfig) *Config {
	defaultOptions := createDefaultCacheOptions()

	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromProvider 从配置提供者创建验证缓存配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetCache() *CacheOptions }); ok {
		return &Config{
			options: p.GetCache(),
		}
	}

	return New(nil)
}

// createDefaultCacheOptions 创建默认验证缓存配置
func createDefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		LifeWindow:         defaultLifeWindow,
		CleanWindow:        defaultCleanWindow,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		MaxEntrySize:       defaultMaxEntrySize,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 时长字段为字符串（如"10m"），解析失败时保留默认值
func convertAndMergeUserConfig(defaultOpts *CacheOptions, userConfig *types.UserCacheConfig) {
	if userConfig.LifeWindow != nil {
		if d, err := time.ParseDuration(*userConfig.LifeWindow); err == nil && d > 0 {
			defaultOpts.LifeWindow = d
		}
	}
	if userConfig.CleanWindow != nil {
		if d, err := time.ParseDuration(*userConfig.CleanWindow); err == nil && d > 0 {
			defaultOpts.CleanWindow = d
		}
	}
	if userConfig.MaxEntriesInWindow != nil && *userConfig.MaxEntriesInWindow > 0 {
		defaultOpts.MaxEntriesInWindow = *userConfig.MaxEntriesInWindow
	}
	if userConfig.MaxEntrySize != nil && *userConfig.MaxEntrySize > 0 {
		defaultOpts.MaxEntrySize = *userConfig.MaxEntrySize
	}
}

// GetOptions 获取完整的验证缓存配置选项
func (c *Config) GetOptions() *CacheOptions {
	return c.options
}
