package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/internal/app"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	JSONOutput bool   // 以JSON输出结果（脚本场景）
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "zkredit",
	Short: "零知识资质谓词证明工具",
	Long: `zkredit - 零知识资质谓词证明工具

在不泄露私有数值的前提下，证明关于它们的布尔谓词成立：
- threshold   信用评分不低于阈值
- range       收入落在指定区间
- commitment  身份数据与既有承诺一致
- ratio       还款率不低于指定比例

典型流程:
  zkredit init                          # 生成/恢复全部谓词的设置密钥
  zkredit prove threshold \
    --witness score=75 --param threshold=70 --out proof.json
  zkredit verify threshold \
    --param threshold=70 --proof proof.json

开发调试用 zkredit mock 在不生成真实证明的情况下检查谓词逻辑。`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 抑制gin等组件的控制台输出，保持pterm界面干净
		_ = os.Setenv("ZKR_CLI_MODE", "true")
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "配置文件路径 (默认: $ZKR_CONFIG 或 ./configs/config.json)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSONOutput, "json", false, "以JSON输出结果")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLocal 按全局标志装配本地证明服务
func newLocal() (*app.Local, error) {
	return app.NewLocal(globalFlags.ConfigPath)
}

// parseKVFlags 把重复的key=value标志解析为map
func parseKVFlags(pairs []string, flagName string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("--%s 需要 key=value 形式，收到 %q", flagName, pair)
		}
		if _, exists := values[key]; exists {
			return nil, fmt.Errorf("--%s 重复指定了 %s", flagName, key)
		}
		values[key] = value
	}
	return values, nil
}
