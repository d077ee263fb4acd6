package proofsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// device.go 测试
// ============================================================================

// TestTierFromName 测试设备档位名解析
func TestTierFromName(t *testing.T) {
	for _, name := range []string{"low_end_mobile", "mid_range_mobile", "high_end_mobile", "desktop"} {
		tier, err := TierFromName(name)
		require.NoError(t, err)
		assert.Equal(t, DeviceTier(name), tier)
	}

	_, err := TierFromName("supercomputer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "未知的设备档位")

	_, err = TierFromName("")
	require.Error(t, err)
}

// TestDetectTier 测试按物理内存探测档位
func TestDetectTier(t *testing.T) {
	// 探测结果依赖运行机器，只要求落在已知档位集合内
	tier := DetectTier()
	assert.Contains(t, []DeviceTier{TierLowEndMobile, TierMidRangeMobile, TierHighEndMobile, TierDesktop}, tier)
}

// TestDeviceTier_RecommendedRowExponent 测试各档位推荐的行数指数
func TestDeviceTier_RecommendedRowExponent(t *testing.T) {
	assert.Equal(t, 8, TierLowEndMobile.RecommendedRowExponent())
	assert.Equal(t, 10, TierMidRangeMobile.RecommendedRowExponent())
	assert.Equal(t, 12, TierHighEndMobile.RecommendedRowExponent())
	assert.Equal(t, 16, TierDesktop.RecommendedRowExponent())

	// 未知档位按中端移动设备保守处理
	assert.Equal(t, 10, DeviceTier("unknown").RecommendedRowExponent())
}

// TestDeviceTier_OptimalBatchSize 测试各档位推荐批量大小
func TestDeviceTier_OptimalBatchSize(t *testing.T) {
	assert.Equal(t, 1, TierLowEndMobile.OptimalBatchSize())
	assert.Equal(t, 3, TierMidRangeMobile.OptimalBatchSize())
	assert.Equal(t, 5, TierHighEndMobile.OptimalBatchSize())
	assert.Equal(t, 10, TierDesktop.OptimalBatchSize())
	assert.Equal(t, 3, DeviceTier("unknown").OptimalBatchSize())
}

// TestDeviceTier_RecommendedWorkerCount 测试各档位推荐并发度
func TestDeviceTier_RecommendedWorkerCount(t *testing.T) {
	// 移动端档位不做并发，证明生成受内存约束
	assert.Equal(t, 1, TierLowEndMobile.RecommendedWorkerCount())
	assert.Equal(t, 1, TierMidRangeMobile.RecommendedWorkerCount())
	assert.Equal(t, 2, TierHighEndMobile.RecommendedWorkerCount())
	assert.Equal(t, 4, TierDesktop.RecommendedWorkerCount())
	assert.Equal(t, 1, DeviceTier("unknown").RecommendedWorkerCount())
}

// TestDeviceTier_EstimateProofTimeMs 测试证明耗时估算
func TestDeviceTier_EstimateProofTimeMs(t *testing.T) {
	// 基线：k=8时估算值等于档位基准耗时（8²/64 = 1）
	assert.Equal(t, uint64(500), TierLowEndMobile.EstimateProofTimeMs(8))
	assert.Equal(t, uint64(200), TierMidRangeMobile.EstimateProofTimeMs(8))
	assert.Equal(t, uint64(100), TierHighEndMobile.EstimateProofTimeMs(8))
	assert.Equal(t, uint64(50), TierDesktop.EstimateProofTimeMs(8))

	// 耗时随k²增长：k=16是k=8的4倍
	assert.Equal(t, uint64(200), TierDesktop.EstimateProofTimeMs(16))

	// 同一k下，档位越低估算越大
	assert.Greater(t,
		TierLowEndMobile.EstimateProofTimeMs(12),
		TierDesktop.EstimateProofTimeMs(12))
}

// TestEstimateMemoryUsageMB 测试内存占用估算
func TestEstimateMemoryUsageMB(t *testing.T) {
	// 小容量时行数占用不足1MB，向上取整到1MB再加固定开销
	assert.Equal(t, uint64(11), EstimateMemoryUsageMB(8))
	// k=16：65536行×32字节 = 2MB
	assert.Equal(t, uint64(12), EstimateMemoryUsageMB(16))
	// k=20：1M行×32字节 = 32MB
	assert.Equal(t, uint64(42), EstimateMemoryUsageMB(20))
}

// TestIsMobileSuitable 测试移动端适用性判断
func TestIsMobileSuitable(t *testing.T) {
	assert.True(t, IsMobileSuitable(8))
	assert.True(t, IsMobileSuitable(12))
	assert.False(t, IsMobileSuitable(13))
	assert.False(t, IsMobileSuitable(16))
}

// TestDeviceTier_ShouldUseBatchProcessing 测试批量流水线判断
func TestDeviceTier_ShouldUseBatchProcessing(t *testing.T) {
	assert.False(t, TierLowEndMobile.ShouldUseBatchProcessing(1))
	assert.True(t, TierLowEndMobile.ShouldUseBatchProcessing(2))

	assert.False(t, TierDesktop.ShouldUseBatchProcessing(10))
	assert.True(t, TierDesktop.ShouldUseBatchProcessing(11))
}
