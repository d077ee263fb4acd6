package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/internal/app"
)

// serveCmd HTTP服务命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP证明服务",
	Long: `启动常驻的HTTP证明服务，监听地址见配置文件的http段。

服务提供REST接口（/api/v1）用于初始化、证明生成、验证、
模拟评估、承诺计算与批量任务管理，/healthz用于存活探测，
启用指标时/metrics暴露Prometheus格式指标。

收到SIGINT/SIGTERM后优雅退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 服务模式下gin/zap正常输出，不走CLI静默
		_ = os.Unsetenv("ZKR_CLI_MODE")

		printInfo("正在启动HTTP证明服务...")
		return app.Run(app.Options{ConfigPath: globalFlags.ConfigPath})
	},
}
