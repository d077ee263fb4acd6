// Package types provides zero-knowledge proof type definitions.
package types

// ProofRequest 证明生成请求
//
// 该结构体定义了生成零知识证明所需的输入参数，
// 是库接口、本地HTTP服务和CLI共用的载荷类型。
//
// 🎯 **使用场景**：
// - 资质谓词的证明生成（阈值、区间、承诺、比率）
// - 批量证明任务的提交载荷
//
// 📋 **字段说明**：
// - Predicate：谓词标识符，指定使用的谓词电路
// - Params：公开参数，验证方可见，用于证明验证
// - Witness：秘密输入，保持隐私，离开进程前即被丢弃
type ProofRequest struct {
	// 谓词标识符
	// 🎯 **谓词ID规范**：
	//   - 基础名（不含版本），如 "threshold"、"range"、"commitment"、"ratio"
	//   - 带版本的展示格式为 "threshold.v1"，逻辑层统一使用基础名+版本号
	Predicate string `json:"predicate"`

	// 公开参数（验证方可见）
	// 内容：阈值、区间端点、承诺值、比率下限等
	// 编码：字段值的十进制字符串（避免JSON数值精度陷阱）
	Params map[string]string `json:"params"`

	// 秘密输入（隐私保护）
	// 内容：真实余额、原始数据、随机数等
	// 特征：仅用于证明生成，任何输出中都不包含
	Witness map[string]string `json:"witness"`
}

// ProofArtifact 证明生成结果
//
// 该结构体包含零知识证明生成的完整结果信息。
// 除了证明本身，还包含验证所需的辅助信息和性能统计。
//
// 🎯 **使用场景**：
// - 作为证明生成操作的返回值
// - 提供给验证方进行证明验证
// - 性能监控和优化分析
//
// 📋 **字段说明**：
// - Result/Params：证明绑定的谓词结果与公开参数快照（证明的公开实例）
// - ProofData：序列化的零知识证明数据
// - VKFingerprint：验证密钥指纹，用于确保使用正确的验证密钥
// - ConstraintCount：电路约束数量，反映证明复杂度
// - GenerationTimeMs：证明生成耗时（毫秒）
type ProofArtifact struct {
	// 谓词与方案标识
	Predicate   string `json:"predicate"`    // 谓词标识符
	Scheme      string `json:"scheme"`       // 证明方案（groth16/plonk）
	Curve       string `json:"curve"`        // 椭圆曲线
	RowExponent int    `json:"row_exponent"` // 生成时使用的行数指数k

	// 公开实例：证明针对哪组公开参数、绑定了什么结果
	// 工件自携带验证所需的全部公开信息，验证方无需带外获取参数
	Result bool              `json:"result"` // 证明绑定的谓词结果
	Params map[string]string `json:"params"` // 公开参数快照（十进制字符串）

	// 证明数据
	// 内容：根据证明方案序列化的证明对象
	// 大小：Groth16约256字节，PlonK约1KB
	ProofData []byte `json:"proof_data"`

	// 验证密钥指纹（Base58编码的SHA-256）
	// 用途：验证密钥完整性检查，防止密钥错配
	VKFingerprint string `json:"vk_fingerprint"`

	// 约束数量
	// 含义：电路中的R1CS或算术约束数量
	ConstraintCount uint64 `json:"constraint_count"`

	// 性能指标
	GenerationTimeMs uint64 `json:"generation_time_ms"` // 生成耗时（毫秒）
	ProofSizeBytes   uint64 `json:"proof_size_bytes"`   // 证明大小（字节）

	// 生成时间（Unix秒）
	CreatedAt int64 `json:"created_at"`
}

// SetupSummary 单个谓词的初始化结果摘要
//
// 🎯 **使用场景**：
// - 初始化操作的返回值（HTTP响应与CLI输出共用）
// - 审计设置来源（新生成、密钥库恢复或复用既有上下文）
type SetupSummary struct {
	Predicate       string `json:"predicate"`        // 版本化谓词名称
	Scheme          string `json:"scheme"`           // 证明方案
	Curve           string `json:"curve"`            // 椭圆曲线
	RowExponent     int    `json:"row_exponent"`     // 行数指数k
	ConstraintCount uint64 `json:"constraint_count"` // 电路约束数量
	VKFingerprint   string `json:"vk_fingerprint"`   // 验证密钥指纹
	SetupSource     string `json:"setup_source"`     // 设置来源（generated/keystore/reused）
	DurationMs      uint64 `json:"duration_ms"`      // 初始化耗时（毫秒）
}

// VerifyRequest 证明验证请求
//
// 验证方只需要谓词标识、公开参数和证明数据。
// 公开见证由参数和"谓词成立"的断言重建，无需传输。
type VerifyRequest struct {
	Predicate string            `json:"predicate"`  // 谓词标识符
	Params    map[string]string `json:"params"`     // 公开参数（十进制字符串）
	ProofData []byte            `json:"proof_data"` // 序列化的证明数据

	// Claimed 声称的谓词结果，公开实例按它重建
	// nil等同于true（最常见的声明："谓词成立"）
	// 声称值与证明绑定的实际结果不一致时，验证返回false而非错误
	Claimed *bool `json:"claimed,omitempty"`
}

// ClaimedResult 返回声称的谓词结果（未设置时为true）
func (r *VerifyRequest) ClaimedResult() bool {
	return r.Claimed == nil || *r.Claimed
}

// MockResult 模拟评估结果
//
// 开发阶段用于快速检查赋值是否满足电路约束，不生成真实证明。
//
// 📋 **字段说明**：
// - Satisfied：谓词在给定输入下的计算结果
// - ConstraintsSatisfied：完整赋值是否满足全部电路约束
// - Mismatch：声称的结果与计算结果不一致（约束满足但语义错误的情况）
type MockResult struct {
	Satisfied            bool `json:"satisfied"`             // 谓词是否成立
	ConstraintsSatisfied bool `json:"constraints_satisfied"` // 约束系统是否满足
	Mismatch             bool `json:"mismatch"`              // 声称结果与计算结果是否矛盾
}

// SystemStatus 证明系统状态快照
//
// 🎯 **使用场景**：
// - 本地HTTP服务的状态端点
// - CLI的状态查询输出
type SystemStatus struct {
	Initialized bool     `json:"initialized"`            // 是否已完成初始化
	Scheme      string   `json:"scheme,omitempty"`       // 当前证明方案
	Curve       string   `json:"curve,omitempty"`        // 当前椭圆曲线
	RowExponent int      `json:"row_exponent,omitempty"` // 当前行数指数k
	DeviceTier  string   `json:"device_tier,omitempty"`  // 探测或配置的设备档位
	Predicates  []string `json:"predicates,omitempty"`   // 已就绪的谓词列表
	Version     string   `json:"version"`                // 软件版本
}

// BatchTaskStatus 批量证明任务的状态快照
//
// 任务提交后通过任务ID轮询该快照；终态任务附带证明工件或错误信息。
type BatchTaskStatus struct {
	TaskID      string `json:"task_id"`                // 任务ID
	Predicate   string `json:"predicate"`              // 谓词标识符
	Status      string `json:"status"`                 // 任务状态（pending/running/completed/failed/timeout/cancelled）
	Priority    int    `json:"priority"`               // 任务优先级
	CreatedAt   int64  `json:"created_at"`             // 创建时间（Unix秒）
	StartedAt   int64  `json:"started_at,omitempty"`   // 开始时间（Unix秒）
	CompletedAt int64  `json:"completed_at,omitempty"` // 完成时间（Unix秒）
	WaitTimeMs  uint64 `json:"wait_time_ms"`           // 排队等待时长（毫秒）
	DurationMs  uint64 `json:"duration_ms"`            // 执行时长（毫秒）
	RetryCount  int    `json:"retry_count"`            // 已重试次数

	// 终态载荷（二选一）
	Error    string         `json:"error,omitempty"`    // 失败原因
	Artifact *ProofArtifact `json:"artifact,omitempty"` // 生成的证明工件
}
