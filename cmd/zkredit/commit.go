package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/internal/core/predicate"
)

var commitFlags struct {
	Data     string // 原始数据（命令行直接给出）
	DataFile string // 原始数据文件
	Nonce    string // 盲化随机数（十进制；空则随机生成）
	Algo     string // 摘要模式（sha256/keccak256）
}

// commitCmd 承诺计算命令：为承诺谓词准备输入
var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "计算身份数据的域内承诺值",
	Long: `把原始身份数据和盲化随机数折算成标量域内的承诺值。

承诺值交给验证方（作为commitment谓词的公开参数）；
承诺值本身同时是后续证明的秘密输入datum，连同nonce妥善保管。
未指定--nonce时使用密码学安全随机数生成。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadCommitData()
		if err != nil {
			return err
		}

		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		field := local.Manager.ScalarField()

		nonce, err := resolveNonce(field)
		if err != nil {
			return err
		}

		commitment, err := predicate.ComputeCommitmentDigest(local.HashManager, commitFlags.Algo, field, data, nonce)
		if err != nil {
			return err
		}

		result := map[string]string{
			"commitment":  commitment.String(),
			"fingerprint": predicate.Fingerprint(local.HashManager, field, commitment),
			"nonce":       nonce.String(),
			"algo":        commitFlags.Algo,
		}

		if globalFlags.JSONOutput {
			printResult(result)
			return nil
		}

		printTable([][]string{
			{"字段", "值"},
			{"承诺值（十进制）", result["commitment"]},
			{"短指纹（Base58）", result["fingerprint"]},
			{"随机数", result["nonce"]},
			{"摘要模式", result["algo"]},
		})
		printInfo("承诺值交给验证方；nonce与原始数据一起保管，证明时需要")
		return nil
	},
}

// loadCommitData 读取待承诺的原始数据
func loadCommitData() ([]byte, error) {
	if commitFlags.Data != "" && commitFlags.DataFile != "" {
		return nil, fmt.Errorf("--data 和 --data-file 只能二选一")
	}
	if commitFlags.Data != "" {
		return []byte(commitFlags.Data), nil
	}
	if commitFlags.DataFile != "" {
		data, err := os.ReadFile(commitFlags.DataFile)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("数据文件为空: %s", commitFlags.DataFile)
		}
		return data, nil
	}
	return nil, fmt.Errorf("需要 --data 或 --data-file")
}

// resolveNonce 解析或生成盲化随机数
func resolveNonce(field *big.Int) (*big.Int, error) {
	if commitFlags.Nonce != "" {
		nonce, ok := new(big.Int).SetString(commitFlags.Nonce, 10)
		if !ok {
			return nil, fmt.Errorf("--nonce 不是十进制整数: %q", commitFlags.Nonce)
		}
		return nonce, nil
	}

	nonce, err := rand.Int(rand.Reader, field)
	if err != nil {
		return nil, fmt.Errorf("生成随机数失败: %w", err)
	}
	return nonce, nil
}

func init() {
	commitCmd.Flags().StringVar(&commitFlags.Data, "data", "", "原始身份数据（字符串）")
	commitCmd.Flags().StringVar(&commitFlags.DataFile, "data-file", "", "原始身份数据文件路径")
	commitCmd.Flags().StringVar(&commitFlags.Nonce, "nonce", "", "盲化随机数（十进制；默认随机生成）")
	commitCmd.Flags().StringVar(&commitFlags.Algo, "algo", predicate.DigestSHA256, "摘要模式（sha256或keccak256）")
}
