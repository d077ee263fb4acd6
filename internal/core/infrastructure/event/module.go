// Package event 提供事件管理功能
package event

import (
	"context"

	"go.uber.org/fx"

	eventintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/event"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"` // 日志记录器（可选）
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventintf.EventBus // 基础事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				eventBus := New(input.Logger)

				if input.Logger != nil {
					input.Logger.Info("基础事件总线已初始化")
				}

				return ModuleOutput{
					EventBus: eventBus,
				}, nil
			},
		),

		// 应用停止时排空异步事件
		fx.Invoke(func(lc fx.Lifecycle, bus eventintf.EventBus) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					if concrete, ok := bus.(*EventBus); ok {
						return concrete.Close(ctx)
					}
					return nil
				},
			})
		}),
	)
}
