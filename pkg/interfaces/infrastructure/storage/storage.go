// Package storage 提供zkredit系统的存储接口定义
//
// 💾 **存储服务 (Storage Services)**
//
// 本文件定义了证明系统依赖的两类存储接口：
// - SetupStore：可信设置工件（证明密钥/验证密钥）的持久化存储
// - ByteCache：进程内字节缓存（验证结果去重等幂等场景）
//
// 🏧 **设计原则**
// - 最小外观：仅定义证明系统实际需要的能力
// - 值不透明：存储层不理解密钥/证明的内部结构，只搬运字节
// - 键可审计：键由调用方构造，带完整的形状信息（谓词、方案、曲线、k）
package storage

import (
	"context"
	"time"
)

//=============================================================================
// SetupStore 接口定义
//=============================================================================

// SetupStore 定义可信设置工件的持久化存储接口
// 底层实现负责压缩与磁盘布局；键值语义对调用方保持简单的Get/Set
//
// 约定：
// - Get对不存在的键返回(nil, nil)，不视为错误
// - Set覆盖写，幂等
// - Close之后任何操作的行为未定义
type SetupStore interface {
	// Get 获取指定键的值
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	Set(ctx context.Context, key, value []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// Delete 删除指定键的值（键不存在时不报错）
	Delete(ctx context.Context, key []byte) error

	// PrefixScan 按前缀扫描键值对，返回map的键为键的字符串表示
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// Close 关闭存储，确保待写入数据落盘
	Close() error
}

//=============================================================================
// ByteCache 接口定义
//=============================================================================

// ByteCache 定义进程内字节缓存接口
// 用于缓存幂等计算的结果（如验证结果），允许任意条目随时被淘汰
type ByteCache interface {
	// Get 获取缓存值；未命中返回(nil, false, nil)
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 写入缓存值
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTTL 写入缓存值并指定生存时间（底层实现可按全局窗口近似）
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除缓存值
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存并释放资源
	Close() error
}
