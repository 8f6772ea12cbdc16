package eventbus

import (
	"errors"
	"fmt"
	"log/slog"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// ============================================================================
// 默认异常处理器
// ============================================================================

// LoggingExceptionHandler 以 Error 级别记录处理方法失败
type LoggingExceptionHandler struct {
	Logger *slog.Logger
}

var _ pkgif.ExceptionHandler = LoggingExceptionHandler{}

// HandleException 实现 interfaces.ExceptionHandler
func (h LoggingExceptionHandler) HandleException(err error, ec pkgif.ExceptionContext) {
	l := h.Logger
	if l == nil {
		l = log
	}

	attrs := []any{
		"method", ec.Method,
		"eventType", fmt.Sprintf("%T", ec.Event),
		"subscriber", fmt.Sprintf("%T", ec.Subscriber),
		"error", err,
	}
	if ec.Bus != nil {
		attrs = append(attrs, "bus", ec.Bus.Identifier())
	}
	if ec.ChainID != "" {
		attrs = append(attrs, "chain", ec.ChainID)
	}
	var he *types.HandlerError
	if errors.As(err, &he) && he.Panicked() {
		attrs = append(attrs, "stack", string(he.Stack))
	}
	l.Error("处理方法调用失败", attrs...)
}

// handleException 将失败交给异常处理器，异常处理器自身失败只记录日志
func (b *Bus) handleException(err error, ec pkgif.ExceptionContext) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.ExceptionHandlerFailed(b.identifier)
			log.Error("异常处理器失败",
				"bus", b.identifier,
				"method", ec.Method,
				"error", fmt.Errorf("%w: %v", types.ErrExceptionHandlerFailed, r),
				"cause", err)
		}
	}()
	b.exceptions.HandleException(err, ec)
}
