package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/pkg/version"
)

// versionCmd 版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		if globalFlags.JSONOutput {
			printResult(map[string]string{
				"version":    version.Version,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			})
			return
		}
		fmt.Printf("zkredit %s (%s, %s/%s)\n", version.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
