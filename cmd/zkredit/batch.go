package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkredit/v1/pkg/types"
)

var batchFlags struct {
	Priority  int    // 整批任务的优先级
	OutputDir string // 证明工件输出目录
}

// batchCmd 批量证明命令
var batchCmd = &cobra.Command{
	Use:   "batch <requests.json>",
	Short: "批量生成零知识证明",
	Long: `从JSON文件加载一批证明请求，用按设备档位并发的工作池批量生成。

输入文件为证明请求数组:
  [
    {"predicate": "threshold", "witness": {"score": "75"}, "params": {"threshold": "70"}},
    {"predicate": "ratio", "witness": {"count": "10", "success_count": "8"}, "params": {"min_ratio": "8000"}}
  ]

指定--out-dir时每个完成的证明工件写入 <dir>/<task_id>.json。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requests, err := loadBatchRequests(args[0])
		if err != nil {
			return err
		}

		local, err := newLocal()
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()

		ctx := context.Background()

		// 批量开始前初始化涉及的全部谓词，任务执行阶段不再有设置开销
		err = withSpinner("正在准备设置密钥", func() error {
			for _, request := range requests {
				if local.Manager.IsInitialized(request.Predicate) {
					continue
				}
				if _, err := local.Manager.Initialize(ctx, request.Predicate, 0); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		service := local.NewBatch(nil)
		service.Start()
		defer service.Stop()

		taskIDs, err := service.SubmitBatch(requests, batchFlags.Priority)
		if err != nil && len(taskIDs) == 0 {
			return fmt.Errorf("批量提交失败: %w", err)
		}
		if err != nil {
			printWarning(fmt.Sprintf("部分提交失败，继续处理已入队的%d个任务: %v", len(taskIDs), err))
		}
		printInfo(fmt.Sprintf("%d个任务已入队，等待完成...", len(taskIDs)))

		snapshots := awaitTasks(service, taskIDs)
		return reportBatchResults(snapshots)
	},
}

// awaitTasks 轮询任务状态直到全部到达终态
func awaitTasks(service interface {
	Status(string) (*types.BatchTaskStatus, error)
}, taskIDs []string) []*types.BatchTaskStatus {
	snapshots := make(map[string]*types.BatchTaskStatus, len(taskIDs))

	for len(snapshots) < len(taskIDs) {
		for _, taskID := range taskIDs {
			if _, done := snapshots[taskID]; done {
				continue
			}
			snapshot, err := service.Status(taskID)
			if err != nil {
				// 任务索引过期（超过保留期）按失败处理
				snapshots[taskID] = &types.BatchTaskStatus{
					TaskID: taskID,
					Status: "failed",
					Error:  err.Error(),
				}
				continue
			}
			if isTerminalStatus(snapshot.Status) {
				snapshots[taskID] = snapshot
			}
		}
		if len(snapshots) < len(taskIDs) {
			time.Sleep(200 * time.Millisecond)
		}
	}

	ordered := make([]*types.BatchTaskStatus, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		ordered = append(ordered, snapshots[taskID])
	}
	return ordered
}

// isTerminalStatus 任务状态是否为终态
func isTerminalStatus(status string) bool {
	switch status {
	case "completed", "failed", "timeout", "cancelled":
		return true
	default:
		return false
	}
}

// loadBatchRequests 从JSON文件加载证明请求数组
func loadBatchRequests(path string) ([]*types.ProofRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取请求文件失败: %w", err)
	}

	var requests []*types.ProofRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("请求文件解析失败（应为证明请求JSON数组）: %w", err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("请求文件为空: %s", path)
	}
	return requests, nil
}

// reportBatchResults 输出批量结果汇总并落盘工件
func reportBatchResults(snapshots []*types.BatchTaskStatus) error {
	if batchFlags.OutputDir != "" {
		if err := os.MkdirAll(batchFlags.OutputDir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	completed := 0
	rows := [][]string{{"任务ID", "谓词", "状态", "耗时", "输出"}}
	for _, snapshot := range snapshots {
		output := "-"
		if snapshot.Artifact != nil {
			completed++
			if batchFlags.OutputDir != "" {
				output = filepath.Join(batchFlags.OutputDir, snapshot.TaskID+".json")
				if err := writeArtifact(output, snapshot.Artifact); err != nil {
					return err
				}
			}
		} else if snapshot.Error != "" {
			output = snapshot.Error
		}
		rows = append(rows, []string{
			snapshot.TaskID,
			snapshot.Predicate,
			snapshot.Status,
			(time.Duration(snapshot.DurationMs) * time.Millisecond).String(),
			output,
		})
	}

	if globalFlags.JSONOutput {
		printResult(snapshots)
	} else {
		printTable(rows)
	}

	if completed < len(snapshots) {
		printWarning(fmt.Sprintf("完成%d/%d个任务", completed, len(snapshots)))
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("全部%d个任务完成", completed))
	return nil
}

func init() {
	batchCmd.Flags().IntVar(&batchFlags.Priority, "priority", 0, "整批任务的优先级（大者先执行）")
	batchCmd.Flags().StringVar(&batchFlags.OutputDir, "out-dir", "", "证明工件输出目录（每任务一个JSON）")
}
