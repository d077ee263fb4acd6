package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/pkg/types"
)

var initFlags struct {
	RowExponent int // 行数指数k（0表示自动）
}

// initCmd 初始化命令：生成或恢复谓词的设置密钥
var initCmd = &cobra.Command{
	Use:   "init [predicate]",
	Short: "初始化证明系统（生成或恢复设置密钥）",
	Long: `为指定谓词生成可信设置（证明密钥+验证密钥），不指定谓词时初始化全部内置谓词。

keystore启用时（默认）设置会持久化，重复init直接从磁盘恢复，
秒级完成而不是重新跑分钟级的密钥生成。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		ctx := context.Background()

		var summaries []*types.SetupSummary
		err = withSpinner("正在初始化证明系统（首次运行需要生成设置密钥）", func() error {
			if len(args) == 1 {
				summary, err := local.Manager.Initialize(ctx, args[0], initFlags.RowExponent)
				if err != nil {
					return err
				}
				summaries = []*types.SetupSummary{summary}
				return nil
			}

			all, err := local.Manager.InitializeAll(ctx, initFlags.RowExponent)
			if err != nil {
				return err
			}
			summaries = all
			return nil
		})
		if err != nil {
			return err
		}

		if globalFlags.JSONOutput {
			printResult(summaries)
			return nil
		}

		rows := [][]string{{"谓词", "方案", "曲线", "k", "约束数", "来源", "耗时"}}
		for _, s := range summaries {
			rows = append(rows, []string{
				s.Predicate,
				s.Scheme,
				s.Curve,
				strconv.Itoa(s.RowExponent),
				strconv.FormatUint(s.ConstraintCount, 10),
				s.SetupSource,
				fmt.Sprintf("%dms", s.DurationMs),
			})
		}
		printTable(rows)
		printSuccess(fmt.Sprintf("%d个谓词就绪", len(summaries)))
		return nil
	},
}

func init() {
	initCmd.Flags().IntVarP(&initFlags.RowExponent, "k", "k", 0, "行数指数k，电路容量为2^k (0=按配置或设备档位自动选择)")
}
