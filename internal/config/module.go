// Package config 提供应用配置管理功能
package config

import (
	apiconfig "github.com/zkredit/v1/internal/config/api"
	batchconfig "github.com/zkredit/v1/internal/config/batch"
	cacheconfig "github.com/zkredit/v1/internal/config/cache"
	keystoreconfig "github.com/zkredit/v1/internal/config/keystore"
	proofsysconfig "github.com/zkredit/v1/internal/config/proofsys"
	"github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			// 提供具体的配置类型用于依赖注入
			func(provider config.Provider) *proofsysconfig.ProofSystemOptions {
				return provider.GetProofSystem()
			},
			func(provider config.Provider) *keystoreconfig.KeystoreOptions {
				return provider.GetKeystore()
			},
			func(provider config.Provider) *cacheconfig.CacheOptions {
				return provider.GetCache()
			},
			func(provider config.Provider) *apiconfig.APIOptions {
				return provider.GetAPI()
			},
			func(provider config.Provider) *batchconfig.BatchOptions {
				return provider.GetBatch()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	// 从应用配置选项获取用户配置
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	// 创建配置提供者
	provider := NewProvider(appConfig)

	return ConfigOutput{
		Provider: provider,
	}, nil
}
