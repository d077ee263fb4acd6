package cache

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	cacheconfig "github.com/zkredit/v1/internal/config/cache"
	configintf "github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// CacheParams 验证缓存模块的依赖参数
type CacheParams struct {
	fx.In

	ConfigProvider configintf.Provider
	Logger         log.Logger `optional:"true"`
}

// CacheOutput 验证缓存模块的输出
type CacheOutput struct {
	fx.Out

	Cache storageintf.ByteCache
}

// Module 返回验证缓存的fx模块
func Module() fx.Option {
	return fx.Module("cache",
		fx.Provide(ProvideCacheServices),

		fx.Invoke(func(lc fx.Lifecycle, byteCache storageintf.ByteCache, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					if byteCache == nil {
						return nil
					}
					if err := byteCache.Close(); err != nil {
						logger.Errorf("关闭验证缓存失败: %v", err)
					}
					return nil
				},
			})
		}),
	)
}

// ProvideCacheServices 创建验证缓存服务
// 缓存本身始终可用；是否在验证链路上启用由证明系统配置决定
func ProvideCacheServices(params CacheParams) (CacheOutput, error) {
	options := cacheconfig.NewFromProvider(params.ConfigProvider).GetOptions()

	byteCache, err := New(options, params.Logger)
	if err != nil {
		return CacheOutput{}, fmt.Errorf("初始化验证缓存失败: %w", err)
	}
	return CacheOutput{Cache: byteCache}, nil
}
