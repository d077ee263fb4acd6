// Package log 示例文件演示了如何使用日志包
package log

import (
	logconfig "github.com/zkredit/v1/internal/config/log"
)

// Example 演示了如何使用日志包
func Example() {
	// 使用默认日志记录器
	Info("这是一条信息日志")
	Warn("这是一条警告日志")
	Error("这是一条错误日志")

	// 使用格式化日志
	Infof("谓词 %s 初始化完成，方案: %s", "threshold.v1", "groth16")

	// 带有结构化字段的日志
	With("predicate", "range.v1", "k", 12).Info("电路编译完成")

	// 自定义日志记录器 - 使用新的配置系统
	options := &logconfig.LogOptions{
		Level:     "debug",
		FilePath:  "app.log",
		ToConsole: true,
	}
	logConfig := logconfig.New(options)

	logger, err := New(logConfig)
	if err != nil {
		Fatal("无法创建日志记录器")
	}

	// 使用自定义日志记录器
	logger.Debug("这是一条调试日志")
	logger.With("request_id", "abc-123").Info("处理证明请求")

	// 注意：日志记录器资源由DI容器自动管理，无需手动关闭
}

// ExampleFileOutput 演示了如何将日志输出到文件
func ExampleFileOutput() {
	// 创建一个输出到文件的日志记录器
	options := &logconfig.LogOptions{
		Level:     "info",
		FilePath:  "logs/app.log",
		ToConsole: false,
	}
	logConfig := logconfig.New(options)

	logger, err := New(logConfig)
	if err != nil {
		Fatal("无法创建文件日志记录器")
	}

	// 使用日志记录器
	logger.Info("证明服务启动")
	logger.With("module", "api").Info("本地HTTP服务启动")

	// 注意：日志记录器资源由DI容器自动管理，无需手动关闭
}
