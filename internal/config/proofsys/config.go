package proofsys

import (
	"github.com/zkredit/v1/pkg/types"
)

// ProofSystemOptions 证明系统配置选项
// 整个证明系统模块的统一配置入口
type ProofSystemOptions struct {
	// 方案配置
	Scheme string `json:"scheme"` // 证明方案 (groth16, plonk)
	Curve  string `json:"curve"`  // 椭圆曲线 (bn254, bls12-381, bls12-377, bw6-761)

	// 容量配置
	RowExponent int    `json:"row_exponent"` // 行数指数k，电路容量为2^k（0表示按设备档位自动选择）
	DeviceTier  string `json:"device_tier"`  // 设备档位（空表示根据物理内存自动探测）

	// 验证配置
	EnableVerifyCache bool `json:"enable_verify_cache"` // 是否缓存验证结果
}

// Config 证明系统配置实现
type Config struct {
	options *ProofSystemOptions
}

// New 创建证明系统配置实现
func New(userConfig *types.UserProofSystemConfig) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultProofSystemOptions()

	// 2. 如果有用户配置，则转换并覆盖默认配置
	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromProvider 从配置提供者创建证明系统配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetProofSystem() *ProofSystemOptions }); ok {
		return &Config{
			options: p.GetProofSystem(),
		}
	}

	// 类型断言失败时回退到默认配置
	return New(nil)
}

// createDefaultProofSystemOptions 创建默认证明系统配置
func createDefaultProofSystemOptions() *ProofSystemOptions {
	return &ProofSystemOptions{
		Scheme:            defaultScheme,
		Curve:             defaultCurve,
		RowExponent:       defaultRowExponent,
		DeviceTier:        defaultDeviceTier,
		EnableVerifyCache: defaultEnableVerifyCache,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(defaultOpts *ProofSystemOptions, userConfig *types.UserProofSystemConfig) {
	if userConfig.Scheme != nil {
		defaultOpts.Scheme = *userConfig.Scheme
	}
	if userConfig.Curve != nil {
		defaultOpts.Curve = *userConfig.Curve
	}
	if userConfig.RowExponent != nil {
		// 用户明确指定了k，跳过设备档位自动选择
		defaultOpts.RowExponent = *userConfig.RowExponent
	}
	if userConfig.DeviceTier != nil {
		defaultOpts.DeviceTier = *userConfig.DeviceTier
	}
	if userConfig.EnableVerifyCache != nil {
		defaultOpts.EnableVerifyCache = *userConfig.EnableVerifyCache
	}
}

// GetOptions 获取完整的证明系统配置选项
func (c *Config) GetOptions() *ProofSystemOptions {
	return c.options
}
