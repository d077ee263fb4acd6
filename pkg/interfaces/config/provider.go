// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/zkredit/v1/internal/config/api"
	batchconfig "github.com/zkredit/v1/internal/config/batch"
	cacheconfig "github.com/zkredit/v1/internal/config/cache"
	keystoreconfig "github.com/zkredit/v1/internal/config/keystore"
	logconfig "github.com/zkredit/v1/internal/config/log"
	proofsysconfig "github.com/zkredit/v1/internal/config/proofsys"
	"github.com/zkredit/v1/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// === 核心配置 ===

	// GetProofSystem 获取证明系统配置
	GetProofSystem() *proofsysconfig.ProofSystemOptions

	// GetKeystore 获取可信设置存储配置
	GetKeystore() *keystoreconfig.KeystoreOptions

	// GetCache 获取验证缓存配置
	GetCache() *cacheconfig.CacheOptions

	// GetAPI 获取本地HTTP服务配置
	GetAPI() *apiconfig.APIOptions

	// GetBatch 获取批量证明配置
	GetBatch() *batchconfig.BatchOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// === 环境配置 ===

	// GetEnvironment 获取运行环境
	// 返回运行环境字符串：dev | test | prod
	// 未配置时默认为 "prod"（安全优先）
	GetEnvironment() string

	// GetDataDir 获取数据根目录
	// keystore等需要落盘的组件在该目录下建立各自的子目录
	GetDataDir() string

	// === 原始配置访问 ===

	// GetAppConfig 获取原始应用配置（用于验证等场景）
	GetAppConfig() *types.AppConfig
}
