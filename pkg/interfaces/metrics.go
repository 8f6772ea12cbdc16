// Package interfaces 定义 go-eventbus 公共接口
//
// 本文件定义指标上报接口。
package interfaces

import "reflect"

// MetricsReporter 事件总线指标上报接口
//
// 实现必须并发安全。internal/core/metrics 提供 Prometheus 实现。
type MetricsReporter interface {
	// EventPosted 记录一次投递
	EventPosted(bus string, eventType reflect.Type)

	// DeadEvent 记录一次无订阅者的投递
	DeadEvent(bus string)

	// StartInvocation 开始一次处理方法调用，返回的函数在调用结束时传入结果
	StartInvocation(bus string) func(err error)

	// ExceptionHandlerFailed 记录一次异常处理器失败
	ExceptionHandlerFailed(bus string)
}
