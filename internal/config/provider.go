package config

import (
	"path/filepath"

	"github.com/zkredit/v1/internal/config/api"
	"github.com/zkredit/v1/internal/config/batch"
	"github.com/zkredit/v1/internal/config/cache"
	"github.com/zkredit/v1/internal/config/keystore"
	"github.com/zkredit/v1/internal/config/log"
	"github.com/zkredit/v1/internal/config/proofsys"
	"github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetProofSystem 获取证明系统配置
func (p *Provider) GetProofSystem() *proofsys.ProofSystemOptions {
	// 直接传递用户证明系统配置给proofsys.New，让它处理默认值和转换
	var userProofSystemConfig *types.UserProofSystemConfig
	if p.appConfig != nil && p.appConfig.ProofSystem != nil {
		userProofSystemConfig = p.appConfig.ProofSystem
	}

	// proofsys.New会处理默认值应用和用户配置覆盖
	return proofsys.New(userProofSystemConfig).GetOptions()
}

// GetKeystore 获取可信设置存储配置
func (p *Provider) GetKeystore() *keystore.KeystoreOptions {
	var userKeystoreConfig *types.UserKeystoreConfig
	if p.appConfig != nil && p.appConfig.Keystore != nil {
		userKeystoreConfig = p.appConfig.Keystore
	}

	keystoreOptions := keystore.New(userKeystoreConfig).GetOptions()

	// 应用默认存储路径（基于数据根目录）
	p.applyDefaultKeystorePath(keystoreOptions, userKeystoreConfig)

	return keystoreOptions
}

// GetCache 获取验证缓存配置
func (p *Provider) GetCache() *cache.CacheOptions {
	var userCacheConfig *types.UserCacheConfig
	if p.appConfig != nil && p.appConfig.Cache != nil {
		userCacheConfig = p.appConfig.Cache
	}

	return cache.New(userCacheConfig).GetOptions()
}

// GetAPI 获取本地HTTP服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil && p.appConfig.API != nil {
		userAPIConfig = p.appConfig.API
	}

	return api.New(userAPIConfig).GetOptions()
}

// GetBatch 获取批量证明配置
func (p *Provider) GetBatch() *batch.BatchOptions {
	var userBatchConfig *types.UserBatchConfig
	if p.appConfig != nil && p.appConfig.Batch != nil {
		userBatchConfig = p.appConfig.Batch
	}

	return batch.New(userBatchConfig).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	// 直接传递用户日志配置给log.New，让它处理默认值和转换
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil && p.appConfig.Log != nil {
		userLogConfig = p.appConfig.Log
	}

	// log.New会处理默认值应用和用户配置覆盖
	return log.New(userLogConfig).GetOptions()
}

// GetEnvironment 获取运行环境
// 返回 dev | test | prod，未配置时默认为 "prod"（安全优先）
func (p *Provider) GetEnvironment() string {
	if p.appConfig != nil && p.appConfig.Environment != nil {
		switch *p.appConfig.Environment {
		case "dev", "test", "prod":
			return *p.appConfig.Environment
		}
	}
	return "prod"
}

// GetDataDir 获取数据根目录
// keystore等需要落盘的组件在该目录下建立各自的子目录
func (p *Provider) GetDataDir() string {
	if p.appConfig != nil && p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return "./data"
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

// applyDefaultKeystorePath 应用默认可信设置存储路径
//
// 当用户配置了自定义数据根目录但未显式指定keystore路径时，
// 将keystore路径调整到数据根目录下，保持运行时数据集中。
//
// 默认规则：<data_dir>/keystore
func (p *Provider) applyDefaultKeystorePath(options *keystore.KeystoreOptions, userConfig *types.UserKeystoreConfig) {
	if options == nil {
		return
	}

	// 用户显式指定了路径时不覆盖
	if userConfig != nil && userConfig.Path != nil {
		return
	}

	// 数据根目录为默认值时保留keystore包自身的默认路径
	if p.appConfig == nil || p.appConfig.DataDir == nil || *p.appConfig.DataDir == "" {
		return
	}

	options.Path = filepath.Join(*p.appConfig.DataDir, "keystore")
}
