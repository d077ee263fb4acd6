// Package proofsys 提供证明系统相关的监控指标
package proofsys

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ============================================================================
//                          Prometheus 监控指标
// ============================================================================

var (
	// initializeTotal 初始化总次数（按设置来源分类）
	initializeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkr",
			Subsystem: "proofsys",
			Name:      "initialize_total",
			Help:      "Total number of predicate initializations by setup source",
		},
		[]string{"predicate", "source"}, // source: generated, keystore, reused
	)

	// initializeDuration 初始化耗时（直方图）
	initializeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zkr",
		Subsystem: "proofsys",
		Name:      "initialize_duration_seconds",
		Help:      "Duration of predicate initialization in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms ~ 204.8s
	})

	// proofsGeneratedTotal 证明生成总次数（按谓词与结果分类）
	proofsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkr",
			Subsystem: "proofsys",
			Name:      "proofs_generated_total",
			Help:      "Total number of proof generation attempts by predicate and result",
		},
		[]string{"predicate", "result"}, // result: success, failed
	)

	// proofGenerationDuration 证明生成耗时（按谓词分类）
	proofGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zkr",
			Subsystem: "proofsys",
			Name:      "proof_generation_duration_seconds",
			Help:      "Duration of proof generation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms ~ 40.96s
		},
		[]string{"predicate"},
	)

	// proofSizeBytes 证明大小分布
	proofSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zkr",
		Subsystem: "proofsys",
		Name:      "proof_size_bytes",
		Help:      "Size of serialized proofs in bytes",
		Buckets:   prometheus.ExponentialBuckets(128, 2, 8), // 128B ~ 16KiB
	})

	// verificationsTotal 验证总次数（按谓词与结果分类）
	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkr",
			Subsystem: "proofsys",
			Name:      "verifications_total",
			Help:      "Total number of verifications by predicate and result",
		},
		[]string{"predicate", "result"}, // result: verified, rejected, malformed, not_initialized, cache_hit
	)

	// verificationDuration 验证耗时
	verificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zkr",
		Subsystem: "proofsys",
		Name:      "verification_duration_seconds",
		Help:      "Duration of proof verification in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms ~ 2s
	})

	// batchTasksTotal 批量任务总数（按终态分类）
	batchTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkr",
			Subsystem: "batch",
			Name:      "tasks_total",
			Help:      "Total number of batch proof tasks by final status",
		},
		[]string{"status"}, // completed, failed, timeout, cancelled
	)

	// batchQueueDepth 批量任务队列深度
	batchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zkr",
		Subsystem: "batch",
		Name:      "queue_depth",
		Help:      "Current number of tasks waiting in the batch queue",
	})
)

// ============================================================================
//                          指标注册
// ============================================================================

func init() {
	// 注册所有证明系统相关指标
	prometheus.MustRegister(
		initializeTotal,
		initializeDuration,
		proofsGeneratedTotal,
		proofGenerationDuration,
		proofSizeBytes,
		verificationsTotal,
		verificationDuration,
		batchTasksTotal,
		batchQueueDepth,
	)
}

// ============================================================================
//                          指标更新函数
// ============================================================================

// recordInitialize 记录一次初始化及其设置来源
func recordInitialize(predicateName, source string, durationSeconds float64) {
	initializeTotal.WithLabelValues(predicateName, source).Inc()
	initializeDuration.Observe(durationSeconds)
}

// recordProofGeneration 记录一次证明生成
func recordProofGeneration(predicateName string, success bool, durationSeconds float64, sizeBytes int) {
	result := "success"
	if !success {
		result = "failed"
	}
	proofsGeneratedTotal.WithLabelValues(predicateName, result).Inc()
	if success {
		proofGenerationDuration.WithLabelValues(predicateName).Observe(durationSeconds)
		proofSizeBytes.Observe(float64(sizeBytes))
	}
}

// recordVerification 记录一次验证及其结果
func recordVerification(predicateName, result string, durationSeconds float64) {
	verificationsTotal.WithLabelValues(predicateName, result).Inc()
	verificationDuration.Observe(durationSeconds)
}

// recordBatchTask 记录批量任务到达终态
func recordBatchTask(status string) {
	batchTasksTotal.WithLabelValues(status).Inc()
}

// setBatchQueueDepth 更新批量队列深度
func setBatchQueueDepth(depth int) {
	batchQueueDepth.Set(float64(depth))
}
