package eventbus

import (
	"context"

	core "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/finder"
)

// ════════════════════════════════════════════════════════════════════════════
//                              总线选项
// ════════════════════════════════════════════════════════════════════════════

// Option 总线选项
type Option = core.Option

// WithIdentifier 设置总线标识（默认 "default"）
func WithIdentifier(id string) Option {
	return core.WithIdentifier(id)
}

// WithExecutor 设置执行器，总线关闭时不关闭它
func WithExecutor(exec Executor) Option {
	return core.WithExecutor(exec)
}

// WithDispatcher 设置分发策略
func WithDispatcher(d Dispatcher) Option {
	return core.WithDispatcher(d)
}

// WithFinder 设置处理方法发现器
func WithFinder(f HandlerFinder) Option {
	return core.WithFinder(f)
}

// WithExceptionHandler 设置异常处理器
func WithExceptionHandler(h ExceptionHandler) Option {
	return core.WithExceptionHandler(h)
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return core.WithMetrics(m)
}

// ════════════════════════════════════════════════════════════════════════════
//                              显式绑定
// ════════════════════════════════════════════════════════════════════════════

// BindOption 显式绑定选项
type BindOption = finder.BindOption

// Handle 将类型化函数绑定为事件 E 的处理方法
func Handle[E any](fn func(ctx context.Context, event E) error, opts ...BindOption) HandlerMethod {
	return finder.Handle(fn, opts...)
}

// Concurrent 允许处理方法并发调用
func Concurrent() BindOption {
	return finder.Concurrent()
}

// Named 指定处理方法标识
func Named(name string) BindOption {
	return finder.Named(name)
}
