package keystore

// 可信设置存储配置默认值
const (
	// defaultEnabled 默认启用可信设置持久化
	// 原因：Groth16的Setup在桌面档位（k=16）可能耗时数十秒
	// 持久化后重启进程只需反序列化，初始化从秒级降到毫秒级
	defaultEnabled = true

	// defaultPath 默认存储路径
	// 原因：相对于工作目录的data子目录，与日志、缓存等运行时数据统一管理
	defaultPath = "./data/keystore"

	// defaultInMemory 默认关闭内存模式
	// 原因：内存模式仅用于测试，生产环境需要跨进程保留可信设置
	defaultInMemory = false

	// defaultCompress 默认启用Snappy压缩
	// 原因：证明密钥体积较大（k=16时可达数百MB），Snappy压缩比约2:1
	// 且解压速度在GB/s量级，对初始化延迟影响可忽略
	defaultCompress = true
)
