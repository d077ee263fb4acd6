package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/pkg/types"
)

var verifyFlags struct {
	Params    []string // 公开参数 key=value
	ProofPath string   // 证明工件文件路径
	Claimed   bool     // 声称的谓词结果
}

// verifyCmd 证明验证命令
var verifyCmd = &cobra.Command{
	Use:   "verify [predicate]",
	Short: "验证零知识证明",
	Long: `验证既有证明工件是否对给定公开参数和声称结果成立。

工件自携带公开实例：不给--param时使用工件内的公开参数快照，
不给--claimed时使用工件绑定的谓词结果，谓词名也可省略。

退出码：0=验证通过，1=验证未通过或无法验证。
"验证未通过"是正常结论（证明无效或声称不符），不是系统故障。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseKVFlags(verifyFlags.Params, "param")
		if err != nil {
			return err
		}

		artifact, err := readArtifact(verifyFlags.ProofPath)
		if err != nil {
			return err
		}

		// 显式标志优先，缺省回落到工件内嵌的公开实例
		if len(params) == 0 {
			params = artifact.Params
		}
		claimed := verifyFlags.Claimed
		if !cmd.Flags().Changed("claimed") {
			claimed = artifact.Result
		}

		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		ctx := context.Background()
		predicateName := artifact.Predicate
		if len(args) > 0 {
			predicateName = args[0]
		}
		if predicateName == "" {
			return fmt.Errorf("证明工件缺少谓词标识，需要显式给出 <predicate>")
		}

		if !local.Manager.IsInitialized(predicateName) {
			err = withSpinner("谓词尚未初始化，正在准备验证密钥", func() error {
				_, err := local.Manager.Initialize(ctx, predicateName, 0)
				return err
			})
			if err != nil {
				return err
			}
		}

		verified, err := local.Manager.Verify(ctx, &types.VerifyRequest{
			Predicate: predicateName,
			Params:    params,
			ProofData: artifact.ProofData,
			Claimed:   &claimed,
		})
		if err != nil {
			return fmt.Errorf("无法完成验证: %w", err)
		}

		if globalFlags.JSONOutput {
			printResult(map[string]bool{"verified": verified})
		}

		if verified {
			printSuccess("验证通过：证明与声称结果一致")
			return nil
		}

		printWarning("验证未通过：证明无效或与声称结果不符")
		// 验证未通过用非零退出码告知脚本调用方
		os.Exit(1)
		return nil
	},
}

// readArtifact 从文件加载证明工件
func readArtifact(path string) (*types.ProofArtifact, error) {
	if path == "" {
		return nil, fmt.Errorf("--proof 是必需的")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取证明工件失败: %w", err)
	}

	var artifact types.ProofArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("证明工件解析失败（应为zkredit prove --out生成的JSON）: %w", err)
	}
	return &artifact, nil
}

func init() {
	verifyCmd.Flags().StringArrayVar(&verifyFlags.Params, "param", nil, "公开参数 key=value（可重复；缺省用工件内快照）")
	verifyCmd.Flags().StringVarP(&verifyFlags.ProofPath, "proof", "p", "", "证明工件路径（zkredit prove --out 生成）")
	verifyCmd.Flags().BoolVar(&verifyFlags.Claimed, "claimed", true, "声称的谓词结果（缺省用工件绑定结果）")
	_ = verifyCmd.MarkFlagRequired("proof")
}
