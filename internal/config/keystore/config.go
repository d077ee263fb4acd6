package keystore

import (
	"github.com/zkredit/v1/pkg/types"
)

// KeystoreOptions 可信设置存储配置选项
// 控制证明密钥和验证密钥的持久化行为
type KeystoreOptions struct {
	Enabled  bool   `json:"enabled"`   // 是否持久化可信设置（关闭时每次启动重新生成）
	Path     string `json:"path"`      // BadgerDB数据目录
	InMemory bool   `json:"in_memory"` // 内存模式（测试用，不落盘）
	Compress bool   `json:"compress"`  // 是否用Snappy压缩存储值
}

// Config 可信设置存储配置实现
type Config struct {
	options *KeystoreOptions
}

// New 创建可信设置存储配置实现
func New(userConfig *types.UserKeystoreConfig) *Config {
	defaultOptions := createDefaultKeystoreOptions()

	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromProvider 从配置提供者创建可信设置存储配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetKeystore() *KeystoreOptions }); ok {
		return &Config{
			options: p.GetKeystore(),
		}
	}

	return New(nil)
}

// createDefaultKeystoreOptions 创建默认可信设置存储配置
func createDefaultKeystoreOptions() *KeystoreOptions {
	return &KeystoreOptions{
		Enabled:  defaultEnabled,
		Path:     defaultPath,
		InMemory: defaultInMemory,
		Compress: defaultCompress,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
func convertAndMergeUserConfig(defaultOpts *KeystoreOptions, userConfig *types.UserKeystoreConfig) {
	if userConfig.Enabled != nil {
		defaultOpts.Enabled = *userConfig.Enabled
	}
	if userConfig.Path != nil {
		defaultOpts.Path = *userConfig.Path
	}
	if userConfig.InMemory != nil {
		defaultOpts.InMemory = *userConfig.InMemory
	}
	if userConfig.Compress != nil {
		defaultOpts.Compress = *userConfig.Compress
	}
}

// GetOptions 获取完整的可信设置存储配置选项
func (c *Config) GetOptions() *KeystoreOptions {
	return c.options
}
