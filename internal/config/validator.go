package config

import (
	"fmt"
	"strings"

	"github.com/zkredit/v1/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// 合法的枚举值集合
var (
	validSchemes = map[string]bool{
		"groth16": true,
		"plonk":   true,
	}

	validCurves = map[string]bool{
		"bn254":     true,
		"bls12-381": true,
		"bls12-377": true,
		"bw6-761":   true,
	}

	validDeviceTiers = map[string]bool{
		"low-end-mobile":   true,
		"mid-range-mobile": true,
		"high-end-mobile":  true,
		"desktop":          true,
	}
)

// 行数指数k的允许范围
// 下限4：再小的电路连单个谓词的约束都放不下
// 上限28：2^28行的证明密钥已达数十GB，超出常规硬件能力
const (
	minRowExponent = 4
	maxRowExponent = 28
)

// ValidateMandatoryConfig 验证配置项取值
//
// 🎯 **配置验证职责**：在启动时验证配置项取值合法，确保系统正常运行
//
// 📋 **验证内容**：
// - proof_system.scheme: 证明方案必须是受支持的方案
// - proof_system.curve: 椭圆曲线必须是受支持的曲线
// - proof_system.row_exponent: k必须在合理范围内（或0表示自动）
// - proof_system.device_tier: 设备档位必须是已知档位（或空表示自动探测）
// - batch.worker_count / batch.queue_size: 不能为负数
//
// 返回：
//   - error: 验证失败的错误列表（以分号拼接）
func ValidateMandatoryConfig(appConfig *types.AppConfig) error {
	var errors []error

	if appConfig != nil && appConfig.ProofSystem != nil {
		ps := appConfig.ProofSystem

		if ps.Scheme != nil && !validSchemes[strings.ToLower(*ps.Scheme)] {
			errors = append(errors, &ValidationError{
				Field:   "proof_system.scheme",
				Message: fmt.Sprintf("不支持的证明方案 %q，可选值：groth16 | plonk", *ps.Scheme),
			})
		}

		if ps.Curve != nil && !validCurves[strings.ToLower(*ps.Curve)] {
			errors = append(errors, &ValidationError{
				Field:   "proof_system.curve",
				Message: fmt.Sprintf("不支持的椭圆曲线 %q，可选值：bn254 | bls12-381 | bls12-377 | bw6-761", *ps.Curve),
			})
		}

		if ps.RowExponent != nil {
			k := *ps.RowExponent
			if k != 0 && (k < minRowExponent || k > maxRowExponent) {
				errors = append(errors, &ValidationError{
					Field:   "proof_system.row_exponent",
					Message: fmt.Sprintf("行数指数 %d 超出范围，必须为0（自动）或介于 %d 和 %d 之间", k, minRowExponent, maxRowExponent),
				})
			}
		}

		if ps.DeviceTier != nil && *ps.DeviceTier != "" && !validDeviceTiers[strings.ToLower(*ps.DeviceTier)] {
			errors = append(errors, &ValidationError{
				Field:   "proof_system.device_tier",
				Message: fmt.Sprintf("未知的设备档位 %q，可选值：low-end-mobile | mid-range-mobile | high-end-mobile | desktop", *ps.DeviceTier),
			})
		}
	}

	if appConfig != nil && appConfig.Batch != nil {
		if appConfig.Batch.WorkerCount != nil && *appConfig.Batch.WorkerCount < 0 {
			errors = append(errors, &ValidationError{
				Field:   "batch.worker_count",
				Message: "工作协程数不能为负数",
			})
		}
		if appConfig.Batch.QueueSize != nil && *appConfig.Batch.QueueSize <= 0 {
			errors = append(errors, &ValidationError{
				Field:   "batch.queue_size",
				Message: "任务队列容量必须大于0",
			})
		}
	}

	if len(errors) > 0 {
		messages := make([]string, len(errors))
		for i, err := range errors {
			messages[i] = err.Error()
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}

	return nil
}
