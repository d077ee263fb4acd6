// Package app 组装证明服务的全部模块并管理应用生命周期
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	httpapi "github.com/zkredit/v1/internal/api/http"
	"github.com/zkredit/v1/internal/config"
	"github.com/zkredit/v1/internal/core/infrastructure/cache"
	"github.com/zkredit/v1/internal/core/infrastructure/crypto"
	"github.com/zkredit/v1/internal/core/infrastructure/event"
	"github.com/zkredit/v1/internal/core/infrastructure/keystore"
	"github.com/zkredit/v1/internal/core/infrastructure/log"
	"github.com/zkredit/v1/internal/core/proofsys"
	configintf "github.com/zkredit/v1/pkg/interfaces/config"
)

// Options 应用装配选项
type Options struct {
	// ConfigPath 配置文件路径（空则走默认查找链）
	ConfigPath string

	// DisableHTTP 不启动HTTP服务（纯批处理或嵌入场景）
	DisableHTTP bool
}

// New 创建完整装配的fx应用
//
// 模块装配顺序由依赖关系决定：config → log/crypto/event →
// keystore/cache → proofsys → http。fx按构造函数的参数类型
// 自动解析顺序，这里只声明提供者。
func New(opts Options) *fx.App {
	fxOptions := []fx.Option{
		// 应用配置（文件/环境变量/嵌入默认值）
		fx.Provide(func() configintf.AppOptions {
			return LoadOptions(opts.ConfigPath)
		}),

		config.Module(),
		log.Module(),
		crypto.Module(),
		event.Module(),
		keystore.Module(),
		cache.Module(),
		proofsys.Module(),

		// 抑制fx自身的装配日志，应用日志统一走zap
		fx.NopLogger,
	}

	if !opts.DisableHTTP {
		fxOptions = append(fxOptions, httpapi.Module())
	}

	return fx.New(fxOptions...)
}

// Run 启动应用并阻塞到收到终止信号
func Run(opts Options) error {
	application := New(opts)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		return err
	}

	// 等待SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return application.Stop(stopCtx)
}
