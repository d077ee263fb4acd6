package cache

import "time"

// 验证缓存配置默认值
const (
	// defaultLifeWindow 条目生命周期设为10分钟
	// 原因：验证结果对固定的(证明,公开输入,验证密钥)三元组永远有效
	// TTL只为限制内存占用，10分钟覆盖典型的重复验证窗口
	defaultLifeWindow = 10 * time.Minute

	// defaultCleanWindow 清理周期设为5分钟
	// 原因：过期条目由后台周期性清理，5分钟在内存回收及时性
	// 和清理开销之间取得平衡
	defaultCleanWindow = 5 * time.Minute

	// defaultMaxEntriesInWindow 窗口内最大条目数设为10000
	// 原因：单条缓存值只有1字节（验证结果布尔值），键为32字节哈希
	// 10000条的内存占用不到1MB，对移动端也可接受
	defaultMaxEntriesInWindow = 10000

	// defaultMaxEntrySize 单条目最大字节数设为64
	// 原因：缓存值是定长的验证结果编码，64字节留足余量
	defaultMaxEntrySize = 64
)
