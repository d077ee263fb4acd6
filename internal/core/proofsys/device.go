package proofsys

import (
	"fmt"

	"github.com/pbnjay/memory"
)

// ============================================================================
// 设备档位启发式
// ============================================================================
//
// 🎯 **目的**：按运行设备能力选择电路容量k、估算证明开销并给出批量大小。
// 部署形态覆盖低端手机到服务器，统一的k会在低端设备上OOM、
// 在服务器上浪费容量。
//
// ============================================================================

// DeviceTier 设备档位
type DeviceTier string

const (
	// TierLowEndMobile 低端移动设备（k=8，256行）
	TierLowEndMobile DeviceTier = "low_end_mobile"
	// TierMidRangeMobile 中端移动设备（k=10，1024行）
	TierMidRangeMobile DeviceTier = "mid_range_mobile"
	// TierHighEndMobile 高端移动设备（k=12，4096行）
	TierHighEndMobile DeviceTier = "high_end_mobile"
	// TierDesktop 桌面/服务器（k=16，65536行）
	TierDesktop DeviceTier = "desktop"
)

// 各档位推荐的行数指数
const (
	rowExponentLowEndMobile   = 8
	rowExponentMidRangeMobile = 10
	rowExponentHighEndMobile  = 12
	rowExponentDesktop        = 16
)

// 档位探测的物理内存阈值
const (
	memoryThresholdLowEnd   = 3 << 30  // 3GiB以下视为低端移动设备
	memoryThresholdMidRange = 6 << 30  // 6GiB以下视为中端移动设备
	memoryThresholdHighEnd  = 12 << 30 // 12GiB以下视为高端移动设备
)

// TierFromName 解析配置中的设备档位名
func TierFromName(name string) (DeviceTier, error) {
	switch DeviceTier(name) {
	case TierLowEndMobile, TierMidRangeMobile, TierHighEndMobile, TierDesktop:
		return DeviceTier(name), nil
	default:
		return "", fmt.Errorf("未知的设备档位: %s", name)
	}
}

// DetectTier 根据物理内存总量探测设备档位
func DetectTier() DeviceTier {
	total := memory.TotalMemory()
	switch {
	case total == 0:
		// 平台不支持探测时保守按中端移动设备处理
		return TierMidRangeMobile
	case total < memoryThresholdLowEnd:
		return TierLowEndMobile
	case total < memoryThresholdMidRange:
		return TierMidRangeMobile
	case total < memoryThresholdHighEnd:
		return TierHighEndMobile
	default:
		return TierDesktop
	}
}

// RecommendedRowExponent 返回档位推荐的行数指数k
func (t DeviceTier) RecommendedRowExponent() int {
	switch t {
	case TierLowEndMobile:
		return rowExponentLowEndMobile
	case TierMidRangeMobile:
		return rowExponentMidRangeMobile
	case TierHighEndMobile:
		return rowExponentHighEndMobile
	case TierDesktop:
		return rowExponentDesktop
	default:
		return rowExponentMidRangeMobile
	}
}

// OptimalBatchSize 返回档位的推荐批量大小
func (t DeviceTier) OptimalBatchSize() int {
	switch t {
	case TierLowEndMobile:
		return 1
	case TierMidRangeMobile:
		return 3
	case TierHighEndMobile:
		return 5
	case TierDesktop:
		return 10
	default:
		return 3
	}
}

// RecommendedWorkerCount 返回档位的推荐并发工作协程数
// 证明生成受内存约束，移动端档位不做并发
func (t DeviceTier) RecommendedWorkerCount() int {
	switch t {
	case TierLowEndMobile, TierMidRangeMobile:
		return 1
	case TierHighEndMobile:
		return 2
	case TierDesktop:
		return 4
	default:
		return 1
	}
}

// EstimateProofTimeMs 估算证明生成耗时（毫秒）
// 证明时间随k大致按k²增长，以k=8为基线归一化
func (t DeviceTier) EstimateProofTimeMs(rowExponent int) uint64 {
	var baseMs uint64
	switch t {
	case TierLowEndMobile:
		baseMs = 500
	case TierMidRangeMobile:
		baseMs = 200
	case TierHighEndMobile:
		baseMs = 100
	case TierDesktop:
		baseMs = 50
	default:
		baseMs = 200
	}

	k := uint64(rowExponent)
	return baseMs * k * k / 64
}

// EstimateMemoryUsageMB 估算给定k的内存占用（MB）
// 粗略估算：每行约32字节，外加见证与证明密钥的固定开销
func EstimateMemoryUsageMB(rowExponent int) uint64 {
	rows := uint64(1) << uint(rowExponent)
	baseMemory := rows * 32 / (1024 * 1024)
	if baseMemory < 1 {
		baseMemory = 1
	}
	return baseMemory + 10
}

// IsMobileSuitable 判断k是否适合移动设备
func IsMobileSuitable(rowExponent int) bool {
	return rowExponent <= rowExponentHighEndMobile
}

// ShouldUseBatchProcessing 判断任务量是否值得走批量流水线
func (t DeviceTier) ShouldUseBatchProcessing(numProofs int) bool {
	return numProofs > t.OptimalBatchSize()
}
