package proofsys

import (
	"context"

	"go.uber.org/fx"

	configintf "github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	eventintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/event"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 证明系统模块的依赖参数
type ModuleParams struct {
	fx.In

	ConfigProvider configintf.Provider // 配置提供者
	HashManager    crypto.HashManager  // 哈希计算服务
	Logger         log.Logger          // 日志记录器

	// 可选的持久化能力：未提供时对应功能自动关闭
	SetupStore  storageintf.SetupStore `optional:"true"` // 可信设置存储
	ResultCache storageintf.ByteCache  `optional:"true"` // 验证结果缓存
}

// ModuleOutput 证明系统模块的输出结构
type ModuleOutput struct {
	fx.Out

	Manager *Manager
}

// BatchParams 批量证明服务的依赖参数
type BatchParams struct {
	fx.In

	ConfigProvider configintf.Provider // 配置提供者
	Manager        *Manager            // 证明系统管理器
	Logger         log.Logger          // 日志记录器

	// 事件总线（可选）：存在时任务终态发布到proof.task.*主题
	EventBus eventintf.EventBus `optional:"true"`
}

// Module 返回证明系统模块
func Module() fx.Option {
	return fx.Module("proofsys",
		fx.Provide(
			ProvideServices,
			ProvideBatchServices,
		),

		// 批量服务随应用生命周期启停
		fx.Invoke(func(lc fx.Lifecycle, batch *BatchService) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					batch.Start()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					batch.Stop()
					return nil
				},
			})
		}),
	)
}

// ProvideServices 提供证明系统服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	manager, err := NewManager(
		params.ConfigProvider.GetProofSystem(),
		params.HashManager,
		params.Logger,
		params.SetupStore,
		params.ResultCache,
	)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Manager: manager}, nil
}

// ProvideBatchServices 提供批量证明服务
func ProvideBatchServices(params BatchParams) *BatchService {
	return NewBatchService(
		params.Manager,
		params.ConfigProvider.GetBatch(),
		NewEventPublishingCallback(params.EventBus),
		params.Logger,
	)
}
