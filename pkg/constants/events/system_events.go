// Package events 提供zkredit系统核心事件类型常量定义
//
// 🎯 **核心事件常量归口管理**
//
// 本文件只定义跨组件通信所需的事件类型：
// - system: 系统生命周期与初始化
// - proof: 批量证明任务终态通知
//
// 🔧 **设计原则**
// - 简单至上：只保留真正需要跨组件通信的事件
// - 命名规范：domain.category.action 格式
// - 高内聚低耦合：避免不必要的事件依赖
//
// 🏗️ **使用方式**
// ```go
// import "github.com/zkredit/v1/pkg/constants/events"
//
// // 跨组件订阅
// eventBus.Subscribe(events.EventTypeProofTaskCompleted, handler)
//
// // 跨组件发布
// eventBus.Publish(events.EventTypeProofTaskCompleted, snapshot)
// ```
package events

import (
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/event"
)

// EventType 全局事件类型别名，兼容标准事件接口
type EventType = event.EventType

// ============================================================================
//                           系统级事件（跨组件）
// ============================================================================

// 系统生命周期事件
const (
	// EventTypeSystemStarted 系统启动完成事件
	// 发布者：应用启动器
	// 订阅者：所有需要系统启动通知的组件
	EventTypeSystemStarted EventType = "system.lifecycle.started"

	// EventTypeSystemStopping 系统即将停止事件
	// 发布者：应用关闭器
	// 订阅者：所有需要优雅停止的组件
	EventTypeSystemStopping EventType = "system.lifecycle.stopping"

	// EventTypeSystemStopped 系统已停止事件
	EventTypeSystemStopped EventType = "system.lifecycle.stopped"

	// EventTypeSystemInitialized 证明系统初始化完成事件
	// 发布者：证明系统初始化流程
	// 载荷：[]*types.SetupSummary（每个谓词的设置摘要）
	EventTypeSystemInitialized EventType = "system.proofsys.initialized"
)

// ============================================================================
//                           批量证明事件（跨组件）
// ============================================================================

const (
	// EventTypeProofTaskCompleted 批量证明任务完成事件
	// 发布者：批量证明工作协程池
	// 载荷：*types.BatchTaskStatus（含证明工件）
	EventTypeProofTaskCompleted EventType = "proof.task.completed"

	// EventTypeProofTaskFailed 批量证明任务失败事件
	// 发布者：批量证明工作协程池
	// 载荷：*types.BatchTaskStatus（含失败原因）
	EventTypeProofTaskFailed EventType = "proof.task.failed"
)
