package eventbus

import "github.com/dep2p/go-eventbus/pkg/types"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 投递错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNilEvent 投递了空事件
	ErrNilEvent = types.ErrNilEvent

	// ErrBusClosed 事件总线已关闭
	ErrBusClosed = types.ErrBusClosed

	// ErrHandlerPanicked 处理方法 panic
	ErrHandlerPanicked = types.ErrHandlerPanicked

	// ErrExceptionHandlerFailed 异常处理器自身失败
	ErrExceptionHandlerFailed = types.ErrExceptionHandlerFailed

	// ────────────────────────────────────────────────────────────────────────
	// 注册错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidHandlerSignature 处理方法签名无效
	ErrInvalidHandlerSignature = types.ErrInvalidHandlerSignature

	// ErrNilSubscriber 空订阅者
	ErrNilSubscriber = types.ErrNilSubscriber

	// ErrNonPointerSubscriber 订阅者不是指针
	ErrNonPointerSubscriber = types.ErrNonPointerSubscriber
)

// HandlerError 处理方法调用失败
type HandlerError = types.HandlerError
