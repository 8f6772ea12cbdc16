package finder

import (
	"context"
	"reflect"
	"runtime"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// BindOption 显式绑定选项
type BindOption func(*pkgif.HandlerMethod)

// Concurrent 允许并发调用
func Concurrent() BindOption {
	return func(h *pkgif.HandlerMethod) {
		h.Mode = types.ModeConcurrent
	}
}

// Named 指定处理方法标识
//
// 默认使用函数符号名；同一函数内循环创建的闭包符号名相同，需要显式命名区分。
func Named(name string) BindOption {
	return func(h *pkgif.HandlerMethod) {
		h.Name = name
	}
}

// Handle 将类型化函数绑定为事件 E 的处理方法
func Handle[E any](fn func(ctx context.Context, event E) error, opts ...BindOption) pkgif.HandlerMethod {
	h := pkgif.HandlerMethod{
		EventType: reflect.TypeOf((*E)(nil)).Elem(),
		Mode:      types.ModeExclusive,
	}
	if fn != nil {
		h.Name = funcName(fn)
		h.Invoke = func(ctx context.Context, event any) error {
			return fn(ctx, event.(E))
		}
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// funcName 返回函数符号名
func funcName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return ""
}
