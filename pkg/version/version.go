// Package version 提供软件版本信息
package version

// Version 当前软件版本
// 发布构建可通过 -ldflags "-X github.com/zkredit/v1/pkg/version.Version=x.y.z" 覆盖
var Version = "1.0.0"
