package keystore

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	keystoreconfig "github.com/zkredit/v1/internal/config/keystore"
	configintf "github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// KeystoreParams 可信设置存储模块的依赖参数
type KeystoreParams struct {
	fx.In

	ConfigProvider configintf.Provider
	Logger         log.Logger `optional:"true"`
}

// KeystoreOutput 可信设置存储模块的输出
type KeystoreOutput struct {
	fx.Out

	Store storageintf.SetupStore
}

// Module 返回可信设置存储的fx模块
func Module() fx.Option {
	return fx.Module("keystore",
		fx.Provide(ProvideKeystoreServices),

		// 生命周期钩子：应用停止时关闭数据库，确保待写入数据落盘
		fx.Invoke(func(lc fx.Lifecycle, store storageintf.SetupStore, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					if store == nil {
						return nil
					}
					logger.Info("正在关闭keystore...")
					if err := store.Close(); err != nil {
						logger.Errorf("关闭keystore失败: %v", err)
						// 不阻断其余组件的关闭流程
					}
					return nil
				},
			})
		}),
	)
}

// ProvideKeystoreServices 创建可信设置存储服务
// 配置禁用keystore时输出nil存储，上层据此跳过设置持久化
func ProvideKeystoreServices(params KeystoreParams) (KeystoreOutput, error) {
	options := keystoreconfig.NewFromProvider(params.ConfigProvider).GetOptions()

	if !options.Enabled {
		if params.Logger != nil {
			params.Logger.Info("💾 keystore已禁用，可信设置不持久化")
		}
		return KeystoreOutput{Store: nil}, nil
	}

	store, err := New(options, params.Logger)
	if err != nil {
		return KeystoreOutput{}, fmt.Errorf("初始化keystore失败: %w", err)
	}
	return KeystoreOutput{Store: store}, nil
}
