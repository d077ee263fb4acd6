// 基于asaskevich/EventBus的进程内事件总线实现
package event

import (
	"context"
	"fmt"

	evbus "github.com/asaskevich/EventBus"

	eventintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/event"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// EventBus 基于asaskevich/EventBus的实现
//
// 🎯 **职责**：
// - 高效可靠的进程内事件传递
// - 订阅者管理
// - 异步事件处理
//
// 事件系统的作用是传递消息：路由、校验等逻辑属于发布方和订阅方。
type EventBus struct {
	bus    evbus.Bus  // 底层事件总线
	logger log.Logger // 日志记录器（可为nil）
}

// New 创建事件总线实例
func New(logger log.Logger) eventintf.EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType eventintf.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType eventintf.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType eventintf.EventType, handler interface{}) error {
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType eventintf.EventType, args ...interface{}) {
	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布Event接口类型事件
func (eb *EventBus) PublishEvent(e eventintf.Event) {
	if e == nil {
		return
	}
	eb.bus.Publish(string(e.Type()), e.Data())
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType eventintf.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType eventintf.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// Close 等待异步处理完成后关闭
//
// asaskevich/EventBus没有显式关闭语义，这里只保证异步投递排空
func (eb *EventBus) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.bus.WaitAsync()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("等待异步事件排空超时: %w", ctx.Err())
	}
}
