package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/pkg/types"
)

var mockFlags struct {
	Params  []string // 公开参数 key=value
	Witness []string // 秘密输入 key=value
	Claimed bool     // 声称的谓词结果
}

// mockCmd 模拟评估命令（调试用）
var mockCmd = &cobra.Command{
	Use:   "mock <predicate>",
	Short: "模拟评估谓词（不生成真实证明）",
	Long: `用约束求解器直接检查赋值，不需要可信设置，毫秒级完成。

开发阶段用来快速验证谓词逻辑和输入格式。输出中的mismatch=true
表示约束系统满足但谓词计算结果与"成立"的声称矛盾——这正是电路
只约束结果布尔性的结构性局限的可观测形态。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseKVFlags(mockFlags.Params, "param")
		if err != nil {
			return err
		}
		witness, err := parseKVFlags(mockFlags.Witness, "witness")
		if err != nil {
			return err
		}

		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		result, err := local.Manager.MockEvaluateDetailed(context.Background(), &types.ProofRequest{
			Predicate: args[0],
			Params:    params,
			Witness:   witness,
		})
		if err != nil {
			return err
		}

		consistent := result.ConstraintsSatisfied && result.Satisfied == mockFlags.Claimed

		if globalFlags.JSONOutput {
			printResult(map[string]bool{
				"consistent":            consistent,
				"satisfied":             result.Satisfied,
				"constraints_satisfied": result.ConstraintsSatisfied,
				"mismatch":              result.Mismatch,
			})
			return nil
		}

		printTable([][]string{
			{"检查项", "结果"},
			{"谓词计算结果", strconv.FormatBool(result.Satisfied)},
			{"约束系统满足", strconv.FormatBool(result.ConstraintsSatisfied)},
			{"声称结果", strconv.FormatBool(mockFlags.Claimed)},
			{"声称与计算一致", strconv.FormatBool(consistent)},
		})

		if consistent {
			printSuccess("模拟评估通过：该声称的真实证明会通过验证且语义正确")
		} else {
			printWarning("模拟评估未通过：声称结果与谓词计算不一致")
		}
		return nil
	},
}

func init() {
	mockCmd.Flags().StringArrayVar(&mockFlags.Params, "param", nil, "公开参数 key=value（可重复）")
	mockCmd.Flags().StringArrayVar(&mockFlags.Witness, "witness", nil, "秘密输入 key=value（可重复）")
	mockCmd.Flags().BoolVar(&mockFlags.Claimed, "claimed", true, "声称的谓词结果")
}
