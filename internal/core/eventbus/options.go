package eventbus

import (
	"errors"

	"github.com/dep2p/go-eventbus/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 选项
// ============================================================================

// Option 总线选项
type Option func(*Bus) error

// WithIdentifier 设置总线标识
func WithIdentifier(id string) Option {
	return func(b *Bus) error {
		if id == "" {
			return errors.New("eventbus: empty identifier")
		}
		b.identifier = id
		return nil
	}
}

// WithExecutor 设置执行器
//
// 总线不拥有外部传入的执行器，Close 不会关闭它。
func WithExecutor(exec pkgif.Executor) Option {
	return func(b *Bus) error {
		if exec == nil {
			return errors.New("eventbus: nil executor")
		}
		b.executor = exec
		b.ownsExecutor = false
		return nil
	}
}

// WithDispatcher 设置分发器
func WithDispatcher(d Dispatcher) Option {
	return func(b *Bus) error {
		if d == nil {
			return errors.New("eventbus: nil dispatcher")
		}
		b.dispatcher = d
		return nil
	}
}

// WithFinder 设置处理方法发现器
func WithFinder(f pkgif.HandlerFinder) Option {
	return func(b *Bus) error {
		if f == nil {
			return errors.New("eventbus: nil finder")
		}
		b.finder = f
		return nil
	}
}

// WithExceptionHandler 设置异常处理器
func WithExceptionHandler(h pkgif.ExceptionHandler) Option {
	return func(b *Bus) error {
		if h == nil {
			return errors.New("eventbus: nil exception handler")
		}
		b.exceptions = h
		return nil
	}
}

// WithMetrics 设置指标，nil 表示不采集
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) error {
		b.metrics = m
		return nil
	}
}
