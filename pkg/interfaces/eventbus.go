// Package interfaces 定义 go-eventbus 公共接口
//
// 本文件定义 EventBus 接口及其外部协作者的边界。
package interfaces

import (
	"context"
	"reflect"

	"github.com/dep2p/go-eventbus/pkg/types"
)

// ============================================================================
//                              EventBus
// ============================================================================

// EventBus 定义进程内事件总线接口
//
// 投递按事件的运行时类型精确匹配，不做接口或嵌入类型的匹配。
type EventBus interface {
	// Identifier 返回总线标识
	Identifier() string

	// Post 投递事件
	Post(ctx context.Context, event any) error

	// Register 注册订阅者的全部处理方法
	Register(target any) error

	// Unregister 注销订阅者的全部处理方法
	Unregister(target any) error
}

// ============================================================================
//                              处理方法发现
// ============================================================================

// HandlerFunc 处理方法调用器
type HandlerFunc func(ctx context.Context, event any) error

// HandlerMethod 描述订阅者上的一个处理方法
type HandlerMethod struct {
	// EventType 处理的事件类型
	EventType reflect.Type

	// Name 处理方法标识，与订阅者身份一起构成去重键
	Name string

	// Invoke 调用器
	Invoke HandlerFunc

	// Mode 并发模式
	Mode types.HandlerMode
}

// HandlerFinder 发现订阅者上的处理方法
//
// 任何候选方法的事件参数个数不为 1 时，必须在返回任何结果之前
// 返回 types.ErrInvalidHandlerSignature，保证注册要么全部成功要么全部失败。
type HandlerFinder interface {
	FindHandlers(target any) ([]HandlerMethod, error)
}

// HandlerProvider 由订阅者实现，显式给出处理方法表
//
// 实现该接口的订阅者不再做反射扫描。
type HandlerProvider interface {
	EventHandlers() []HandlerMethod
}

// ConcurrentHandlers 由订阅者实现，声明可并发调用的处理方法名
type ConcurrentHandlers interface {
	ConcurrentHandlers() []string
}

// ============================================================================
//                              执行器
// ============================================================================

// Executor 执行处理方法的工作单元
//
// Submit 可以在调用方 goroutine 同步执行，也可以交给自己管理的 goroutine。
// 核心只假设 task 最终被执行恰好一次（执行器关闭后的行为由执行器定义）。
type Executor interface {
	Submit(task func())
}

// ============================================================================
//                              异常处理
// ============================================================================

// ExceptionContext 处理方法失败时的上下文
type ExceptionContext struct {
	// Bus 发生失败的总线
	Bus EventBus

	// Event 正在投递的事件
	Event any

	// Subscriber 订阅者对象
	Subscriber any

	// Method 处理方法标识
	Method string

	// ChainID 调用链标识，处理方法用收到的 ctx 继续投递时共享
	ChainID string
}

// ExceptionHandler 处理订阅者调用失败
//
// 常规情况下不应 panic；若 panic，总线只记录日志，不会传播。
type ExceptionHandler interface {
	HandleException(err error, ec ExceptionContext)
}

// ExceptionHandlerFunc 函数适配器
type ExceptionHandlerFunc func(err error, ec ExceptionContext)

// HandleException 实现 ExceptionHandler
func (f ExceptionHandlerFunc) HandleException(err error, ec ExceptionContext) {
	f(err, ec)
}
