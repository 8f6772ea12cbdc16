// Package types 定义 go-eventbus 的公共数据结构
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
	"reflect"
)

// ============================================================================
//                              投递相关错误
// ============================================================================

var (
	// ErrNilEvent 投递了空事件
	ErrNilEvent = errors.New("eventbus: nil event")

	// ErrBusClosed 事件总线已关闭
	ErrBusClosed = errors.New("eventbus: bus closed")

	// ErrHandlerPanicked 处理方法发生 panic
	ErrHandlerPanicked = errors.New("eventbus: handler panicked")

	// ErrExceptionHandlerFailed 异常处理器自身失败
	ErrExceptionHandlerFailed = errors.New("eventbus: exception handler failed")
)

// ============================================================================
//                              注册相关错误
// ============================================================================

var (
	// ErrInvalidHandlerSignature 处理方法签名无效（事件参数个数不为 1 等）
	ErrInvalidHandlerSignature = errors.New("eventbus: invalid handler signature")

	// ErrNilSubscriber 注册了空订阅者
	ErrNilSubscriber = errors.New("eventbus: nil subscriber")

	// ErrNonPointerSubscriber 订阅者不是指针
	//
	// 订阅者按指针身份去重，值类型没有稳定身份。
	ErrNonPointerSubscriber = errors.New("eventbus: subscriber must be a pointer")
)

// ============================================================================
//                              HandlerError - 处理方法调用失败
// ============================================================================

// HandlerError 描述一次处理方法调用失败
//
// 处理方法返回的错误或恢复的 panic 都会被包装成 HandlerError，
// 交给异常处理器，不会传播给投递方。
type HandlerError struct {
	// Method 处理方法标识
	Method string

	// EventType 事件类型
	EventType reflect.Type

	// Err 底层错误
	Err error

	// Panic panic 值（仅当处理方法 panic 时非 nil）
	Panic any

	// Stack panic 时的调用栈
	Stack []byte
}

// Error 实现 error 接口
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s(%v): %v", e.Method, e.EventType, e.Err)
}

// Unwrap 返回底层错误
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Panicked 是否由 panic 引起
func (e *HandlerError) Panicked() bool {
	return e.Panic != nil
}
