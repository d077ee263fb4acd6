package proofsys

// 证明系统配置默认值
const (
	// defaultScheme 默认证明方案设为"groth16"
	// 原因：Groth16证明最小（约200字节）且验证最快，适合移动端和嵌入式场景
	// PLONK无需针对每个电路的可信设置，但证明更大、生成更慢，作为可选方案提供
	defaultScheme = "groth16"

	// defaultCurve 默认椭圆曲线设为"bn254"
	// 原因：bn254是以太坊预编译合约支持的曲线，生态工具链最成熟
	// 约128位安全强度对信贷资质证明场景足够
	defaultCurve = "bn254"

	// defaultRowExponent 默认行数指数设为0（自动）
	// 原因：合适的k取决于运行设备的内存和算力，硬编码会在低端设备上OOM
	// 0表示初始化时按设备档位自动选择（8/10/12/16）
	defaultRowExponent = 0

	// defaultDeviceTier 默认设备档位为空（自动探测）
	// 原因：部署形态多样（手机、桌面、服务器），根据物理内存探测最可靠
	// 显式配置仅用于测试和性能基准场景
	defaultDeviceTier = ""

	// defaultEnableVerifyCache 默认启用验证结果缓存
	// 原因：同一证明可能被重复验证（如重放审计），验证结果按证明哈希缓存后
	// 重复验证从毫秒级降到微秒级；缓存有TTL，不影响正确性
	defaultEnableVerifyCache = true
)
