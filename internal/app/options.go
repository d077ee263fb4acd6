package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zkredit/v1/configs"
	"github.com/zkredit/v1/pkg/interfaces/config"
	"github.com/zkredit/v1/pkg/types"
)

// appOptions 应用配置选项实现
//
// 🔧 零值陷阱处理说明：
// AppConfig的全部字段使用指针类型区分"用户未设置"和"用户设置为零值"：
// - nil: 使用系统默认值（各config包defaults.go定义）
// - &value: 采用用户设置的值，即使是零值（如0、false、""）
type appOptions struct {
	appConfig *types.AppConfig
}

// GetAppConfig 获取应用配置
func (o *appOptions) GetAppConfig() *types.AppConfig {
	return o.appConfig
}

// LoadOptions 加载应用配置选项
//
// 配置来源优先级：
//  1. 显式路径（CLI的--config标志）
//  2. ZKR_CONFIG环境变量
//  3. ./configs/config.json
//  4. 嵌入的默认配置（保证二进制脱离仓库也能运行）
func LoadOptions(explicitPath string) config.AppOptions {
	configPath := resolveConfigPath(explicitPath)

	if configPath != "" {
		if appConfig, err := parseConfigFile(configPath); err == nil {
			ensureDataDirectories(appConfig)
			return &appOptions{appConfig: appConfig}
		} else {
			fmt.Fprintf(os.Stderr, "⚠️  配置文件%s加载失败: %v，回退到嵌入默认配置\n", configPath, err)
		}
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(configs.DefaultConfig(), &appConfig); err != nil {
		// 嵌入配置由本仓库维护，解析失败意味着构建坏了
		panic(fmt.Sprintf("嵌入默认配置解析失败: %v", err))
	}
	ensureDataDirectories(&appConfig)
	return &appOptions{appConfig: &appConfig}
}

// resolveConfigPath 确定配置文件路径；无可用文件时返回空串
func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if envPath := os.Getenv("ZKR_CONFIG"); envPath != "" {
		return envPath
	}
	defaultPath := filepath.Join("configs", "config.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}
	return ""
}

// parseConfigFile 读取并解析JSON配置文件
func parseConfigFile(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}

// ensureDataDirectories 预创建配置指向的落盘目录
//
// keystore和日志文件在各自组件初始化时才真正打开；
// 这里提前建目录让失败（权限、只读文件系统）在启动早期暴露。
func ensureDataDirectories(appConfig *types.AppConfig) {
	if appConfig == nil {
		return
	}

	var directories []string
	if appConfig.DataDir != nil && *appConfig.DataDir != "" {
		directories = append(directories, *appConfig.DataDir)
	}
	if appConfig.Keystore != nil && appConfig.Keystore.Path != nil && *appConfig.Keystore.Path != "" {
		directories = append(directories, *appConfig.Keystore.Path)
	}
	if appConfig.Log != nil && appConfig.Log.FilePath != nil && *appConfig.Log.FilePath != "" {
		directories = append(directories, filepath.Dir(*appConfig.Log.FilePath))
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  创建数据目录%s失败: %v\n", dir, err)
		}
	}
}
