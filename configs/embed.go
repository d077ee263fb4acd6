// Package configs 嵌入默认配置文件
//
// 二进制脱离仓库运行（FFI静态库、单文件分发）时没有configs目录，
// 此时使用嵌入的默认配置保证服务可启动。
package configs

import _ "embed"

//go:embed config.json
var defaultConfig []byte

// DefaultConfig 返回嵌入的默认配置内容
func DefaultConfig() []byte {
	return defaultConfig
}
