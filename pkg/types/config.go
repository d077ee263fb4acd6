// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 零值陷阱处理说明：
// 为了区分"用户未设置"和"用户设置为零值"，所有字段使用指针类型：
// - nil: 表示用户未在配置文件中设置该字段，将使用系统默认值
// - &value: 表示用户明确设置了该值，即使是零值（如0、false、""）也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径
	Version *string `json:"version,omitempty"`  // 应用版本

	// Environment 运行环境：dev | test | prod
	// 只影响日志级别、默认端口等运维属性，不影响证明语义
	Environment *string `json:"environment,omitempty"`

	// 日志配置 - 对应配置文件中的 log 字段
	Log *UserLogConfig `json:"log,omitempty"`

	// 证明系统配置 - 对应配置文件中的 proof_system 字段
	ProofSystem *UserProofSystemConfig `json:"proof_system,omitempty"`

	// 可信设置存储配置 - 对应配置文件中的 keystore 字段
	Keystore *UserKeystoreConfig `json:"keystore,omitempty"`

	// 验证缓存配置 - 对应配置文件中的 cache 字段
	Cache *UserCacheConfig `json:"cache,omitempty"`

	// 本地HTTP服务配置 - 对应配置文件中的 api 字段
	API *UserAPIConfig `json:"api,omitempty"`

	// 批量证明配置 - 对应配置文件中的 batch 字段
	Batch *UserBatchConfig `json:"batch,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserProofSystemConfig 用户证明系统配置
type UserProofSystemConfig struct {
	// Scheme 证明方案：groth16 | plonk
	Scheme *string `json:"scheme,omitempty"`

	// Curve 椭圆曲线：bn254 | bls12-381 | bls12-377 | bw6-761
	Curve *string `json:"curve,omitempty"`

	// RowExponent 行数指数k（电路容量为2^k）
	// 未设置时按设备档位自动选择
	RowExponent *int `json:"row_exponent,omitempty"`

	// DeviceTier 设备档位：low_end_mobile | mid_range_mobile | high_end_mobile | desktop
	// 未设置时根据物理内存自动探测
	DeviceTier *string `json:"device_tier,omitempty"`

	// EnableVerifyCache 是否启用验证结果缓存
	EnableVerifyCache *bool `json:"enable_verify_cache,omitempty"`
}

// UserKeystoreConfig 用户可信设置存储配置
type UserKeystoreConfig struct {
	Enabled  *bool   `json:"enabled,omitempty"`   // 是否持久化可信设置
	Path     *string `json:"path,omitempty"`      // BadgerDB数据目录
	InMemory *bool   `json:"in_memory,omitempty"` // 内存模式（测试用）
	Compress *bool   `json:"compress,omitempty"`  // 是否压缩存储值
}

// UserCacheConfig 用户验证缓存配置
type UserCacheConfig struct {
	LifeWindow         *string `json:"life_window,omitempty"`           // 条目生命周期（如"10m"）
	CleanWindow        *string `json:"clean_window,omitempty"`          // 清理周期（如"5m"）
	MaxEntriesInWindow *int    `json:"max_entries_in_window,omitempty"` // 窗口内最大条目数
	MaxEntrySize       *int    `json:"max_entry_size,omitempty"`        // 单条目最大字节数
}

// UserAPIConfig 用户本地HTTP服务配置
type UserAPIConfig struct {
	ListenAddr     *string `json:"listen_addr,omitempty"`     // 监听地址（默认仅本机）
	EnableMetrics  *bool   `json:"enable_metrics,omitempty"`  // 是否暴露/metrics
	RequestTimeout *string `json:"request_timeout,omitempty"` // 单请求超时（如"300s"）
}

// UserBatchConfig 用户批量证明配置
type UserBatchConfig struct {
	WorkerCount *int    `json:"worker_count,omitempty"` // 工作线程数（默认按设备档位）
	QueueSize   *int    `json:"queue_size,omitempty"`   // 任务队列容量
	TaskTimeout *string `json:"task_timeout,omitempty"` // 单任务超时（如"5m"）
}

// === 指针构造辅助函数 ===
// 配置字段使用指针类型区分"未设置"和"零值"，测试和程序化构造配置时使用

// StringPtr 返回字符串指针
func StringPtr(s string) *string { return &s }

// IntPtr 返回整型指针
func IntPtr(i int) *int { return &i }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }
