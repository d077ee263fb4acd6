package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/internal/core/proofsys"
)

// deviceCmd 设备档位命令
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "显示设备档位及推荐参数",
	Long: `按物理内存探测设备档位，显示各档位的推荐行数指数k、
批量规模和预估成本。证明生成成本约随k的平方增长，
选择档位推荐的k可以在该类设备上获得可接受的延迟。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		detected := proofsys.DetectTier()

		if globalFlags.JSONOutput {
			k := detected.RecommendedRowExponent()
			printResult(map[string]interface{}{
				"tier":                     string(detected),
				"recommended_row_exponent": k,
				"optimal_batch_size":       detected.OptimalBatchSize(),
				"recommended_workers":      detected.RecommendedWorkerCount(),
				"estimated_proof_time_ms":  detected.EstimateProofTimeMs(k),
				"estimated_memory_mb":      proofsys.EstimateMemoryUsageMB(k),
			})
			return nil
		}

		printInfo("当前设备档位: " + string(detected))

		rows := [][]string{{"档位", "推荐k", "批量规模", "工作协程", "预估证明耗时", "预估内存"}}
		for _, tier := range []proofsys.DeviceTier{
			proofsys.TierLowEndMobile,
			proofsys.TierMidRangeMobile,
			proofsys.TierHighEndMobile,
			proofsys.TierDesktop,
		} {
			k := tier.RecommendedRowExponent()
			name := string(tier)
			if tier == detected {
				name = "▶ " + name
			}
			rows = append(rows, []string{
				name,
				strconv.Itoa(k),
				strconv.Itoa(tier.OptimalBatchSize()),
				strconv.Itoa(tier.RecommendedWorkerCount()),
				strconv.FormatUint(tier.EstimateProofTimeMs(k), 10) + "ms",
				strconv.FormatUint(proofsys.EstimateMemoryUsageMB(k), 10) + "MB",
			})
		}
		printTable(rows)
		return nil
	},
}
