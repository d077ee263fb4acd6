package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zkredit/v1/internal/core/predicate"
	"github.com/zkredit/v1/pkg/types"
)

var proveFlags struct {
	Params      []string // 公开参数 key=value
	Witness     []string // 秘密输入 key=value
	Interactive bool     // 交互式读取秘密输入（不回显）
	OutputPath  string   // 证明工件输出路径
}

// proveCmd 证明生成命令
var proveCmd = &cobra.Command{
	Use:   "prove <predicate>",
	Short: "生成零知识证明",
	Long: `为指定谓词生成零知识证明。

秘密输入通过--witness传入，或用--interactive在终端交互输入（不回显、
不进shell历史）。生成的证明工件（JSON）只包含证明字节和公开信息，
不包含任何秘密输入。

示例:
  zkredit prove threshold --witness score=75 --param threshold=70 --out proof.json
  zkredit prove range --interactive --param min=30000 --param max=80000
  zkredit prove ratio --witness count=10 --witness success_count=8 --param min_ratio=8000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		predicateName := args[0]

		params, err := parseKVFlags(proveFlags.Params, "param")
		if err != nil {
			return err
		}
		witness, err := parseKVFlags(proveFlags.Witness, "witness")
		if err != nil {
			return err
		}

		if proveFlags.Interactive {
			witness, err = promptWitness(predicateName)
			if err != nil {
				return err
			}
		}

		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		ctx := context.Background()
		request := &types.ProofRequest{
			Predicate: predicateName,
			Params:    params,
			Witness:   witness,
		}

		// 未初始化时自动初始化该谓词（keystore有密钥时是秒级恢复）
		if !local.Manager.IsInitialized(predicateName) {
			err = withSpinner("谓词尚未初始化，正在准备设置密钥", func() error {
				_, err := local.Manager.Initialize(ctx, predicateName, 0)
				return err
			})
			if err != nil {
				return err
			}
		}

		var artifact *types.ProofArtifact
		err = withSpinner("正在生成零知识证明", func() error {
			artifact, err = local.Manager.Prove(ctx, request)
			return err
		})
		if err != nil {
			return err
		}

		if proveFlags.OutputPath != "" {
			if err := writeArtifact(proveFlags.OutputPath, artifact); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("证明工件已写入 %s", proveFlags.OutputPath))
		}

		if globalFlags.JSONOutput {
			printResult(artifact)
			return nil
		}

		printTable([][]string{
			{"字段", "值"},
			{"谓词", artifact.Predicate},
			{"绑定结果", strconv.FormatBool(artifact.Result)},
			{"方案", artifact.Scheme + " / " + artifact.Curve},
			{"证明大小", strconv.FormatUint(artifact.ProofSizeBytes, 10) + " 字节"},
			{"约束数", strconv.FormatUint(artifact.ConstraintCount, 10)},
			{"验证密钥指纹", artifact.VKFingerprint},
			{"生成耗时", strconv.FormatUint(artifact.GenerationTimeMs, 10) + "ms"},
		})
		return nil
	},
}

// promptWitness 按谓词形状逐项交互读取秘密输入（不回显）
func promptWitness(predicateName string) (map[string]string, error) {
	def, err := predicate.Resolve(predicateName)
	if err != nil {
		return nil, err
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return nil, fmt.Errorf("--interactive 需要交互式终端")
	}

	witness := make(map[string]string, def.Shape.NumPrivate())
	for _, name := range def.Shape.PrivateNames {
		fmt.Fprintf(os.Stderr, "请输入 %s（十进制整数，不回显）: ", name)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("读取%s失败: %w", name, err)
		}
		witness[name] = string(raw)
	}
	return witness, nil
}

// writeArtifact 把证明工件以JSON写入文件
func writeArtifact(path string, artifact *types.ProofArtifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("工件序列化失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("工件写入失败: %w", err)
	}
	return nil
}

func init() {
	proveCmd.Flags().StringArrayVar(&proveFlags.Params, "param", nil, "公开参数 key=value（可重复）")
	proveCmd.Flags().StringArrayVar(&proveFlags.Witness, "witness", nil, "秘密输入 key=value（可重复；会进shell历史，敏感场景用--interactive）")
	proveCmd.Flags().BoolVarP(&proveFlags.Interactive, "interactive", "i", false, "交互式读取秘密输入（不回显）")
	proveCmd.Flags().StringVarP(&proveFlags.OutputPath, "out", "o", "", "证明工件输出路径（JSON）")
}
