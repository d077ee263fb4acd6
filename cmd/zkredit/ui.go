package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// CLI输出辅助：结果走pterm（人读）或JSON（脚本读），日志走zap文件。

// printSuccess 输出成功消息
func printSuccess(message string) {
	if globalFlags.JSONOutput {
		return
	}
	pterm.Success.Println(message)
}

// printInfo 输出提示消息
func printInfo(message string) {
	if globalFlags.JSONOutput {
		return
	}
	pterm.Info.Println(message)
}

// printWarning 输出警告消息
func printWarning(message string) {
	if globalFlags.JSONOutput {
		return
	}
	pterm.Warning.Println(message)
}

// printError 输出错误消息（JSON模式下输出到stderr，不污染结果流）
func printError(err error) {
	if globalFlags.JSONOutput {
		fmt.Fprintf(os.Stderr, `{"error":%q}`+"\n", err.Error())
		return
	}
	pterm.Error.Println(err.Error())
}

// printResult 输出结构化结果
//
// JSON模式直接序列化到stdout；否则渲染为键值表格。
func printResult(data interface{}) {
	if globalFlags.JSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(data)
		return
	}

	switch v := data.(type) {
	case [][]string:
		printTable(v)
	default:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			pterm.Error.Printfln("结果序列化失败: %v", err)
			return
		}
		pterm.Println(string(encoded))
	}
}

// printTable 渲染表格（首行为表头）
func printTable(rows [][]string) {
	if err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(rows).Render(); err != nil {
		// pterm渲染失败时退化为制表符输出
		for _, row := range rows {
			for i, cell := range row {
				if i > 0 {
					fmt.Print("\t")
				}
				fmt.Print(cell)
			}
			fmt.Println()
		}
	}
}

// withSpinner 在长操作周围显示进度指示
func withSpinner(message string, fn func() error) error {
	if globalFlags.JSONOutput {
		return fn()
	}

	spinner, err := pterm.DefaultSpinner.Start(message)
	if err != nil {
		return fn()
	}

	if err := fn(); err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success()
	return nil
}
