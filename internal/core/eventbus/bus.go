package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/core/executor"
	"github.com/dep2p/go-eventbus/internal/core/finder"
	"github.com/dep2p/go-eventbus/internal/core/metrics"
	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

var log = logger.Logger("eventbus")

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	identifier string

	executor     pkgif.Executor
	ownsExecutor bool

	dispatcher Dispatcher
	finder     pkgif.HandlerFinder
	registry   *Registry
	exceptions pkgif.ExceptionHandler
	metrics    *metrics.Metrics

	shutdownTimeout time.Duration
	closed          atomic.Bool
}

var _ pkgif.EventBus = (*Bus)(nil)

// New 创建事件总线
//
// 默认：标识 "default"、同步执行器、per-goroutine 分发器、反射发现、日志异常处理器。
func New(opts ...Option) (*Bus, error) {
	b := &Bus{}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.fillDefaults()
	return b, nil
}

// NewAsync 创建使用共享队列分发的总线
//
// 处理方法在 exec 上执行。
func NewAsync(exec pkgif.Executor, opts ...Option) (*Bus, error) {
	base := []Option{WithExecutor(exec), WithDispatcher(AsyncDispatcher())}
	return New(append(base, opts...)...)
}

// NewFromConfig 按配置创建事件总线，opts 覆盖配置
//
// 未通过 WithExecutor 指定执行器时，按配置创建的执行器归总线所有，Close 时关闭。
func NewFromConfig(cfg *config.Config, opts ...Option) (*Bus, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("eventbus: invalid config: %w", err)
	}

	d, err := NewDispatcher(cfg.Bus.Dispatcher)
	if err != nil {
		return nil, err
	}

	b := &Bus{shutdownTimeout: cfg.Executor.ShutdownTimeout.Duration()}
	base := []Option{WithIdentifier(cfg.Bus.Identifier), WithDispatcher(d)}
	for _, opt := range append(base, opts...) {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.finder == nil {
		f, err := finder.New(cfg.Finder)
		if err != nil {
			return nil, err
		}
		b.finder = f
	}
	if b.executor == nil {
		exec, err := executor.FromConfig(cfg.Executor)
		if err != nil {
			return nil, err
		}
		b.executor = exec
		b.ownsExecutor = true
	}

	b.fillDefaults()
	return b, nil
}

func (b *Bus) fillDefaults() {
	if b.identifier == "" {
		b.identifier = config.DefaultIdentifier
	}
	if b.executor == nil {
		b.executor = executor.Direct{}
	}
	if b.dispatcher == nil {
		b.dispatcher = PerGoroutineDispatcher()
	}
	if b.finder == nil {
		b.finder = finder.Default()
	}
	if b.exceptions == nil {
		b.exceptions = LoggingExceptionHandler{Logger: log.With("bus", b.identifier)}
	}
	b.registry = NewRegistry()
}

// ============================================================================
// EventBus 接口实现
// ============================================================================

// Identifier 返回总线标识
func (b *Bus) Identifier() string {
	return b.identifier
}

// Register 注册 target 上的全部处理方法
//
// target 必须是非 nil 指针。任何处理方法签名无效时不注册任何处理方法，
// 返回包装 types.ErrInvalidHandlerSignature 的错误。重复注册同一对象无副作用。
func (b *Bus) Register(target any) error {
	if b.closed.Load() {
		return types.ErrBusClosed
	}
	subs, err := b.subscribersOf(target)
	if err != nil {
		return err
	}
	b.registry.Register(subs)
	log.Debug("注册订阅者", "bus", b.identifier, "subscriber", fmt.Sprintf("%T", target), "handlers", len(subs))
	return nil
}

// Unregister 注销 target 上的全部处理方法
//
// 未注册的处理方法忽略。注销后开始的 Post 不会再调用 target；
// 注销前已取得的快照仍可能调用一次。
func (b *Bus) Unregister(target any) error {
	subs, err := b.subscribersOf(target)
	if err != nil {
		return err
	}
	b.registry.Unregister(subs)
	log.Debug("注销订阅者", "bus", b.identifier, "subscriber", fmt.Sprintf("%T", target), "handlers", len(subs))
	return nil
}

// Post 投递事件
//
// 没有订阅者的事件包装为 DeadEvent 分发一次。处理方法的失败交给
// 异常处理器，不会返回给调用方。
func (b *Bus) Post(ctx context.Context, event any) error {
	if isNil(event) {
		return types.ErrNilEvent
	}
	if b.closed.Load() {
		return types.ErrBusClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withChain(ctx)

	typ := reflect.TypeOf(event)
	b.metrics.EventPosted(b.identifier, typ)

	if subs := b.registry.Lookup(typ); len(subs) > 0 {
		b.dispatcher.Dispatch(ctx, event, subs)
		return nil
	}
	if _, ok := event.(DeadEvent); ok {
		return nil
	}

	// DeadEvent 只计入 dead，不再计入 posted
	log.Debug("事件没有订阅者", "bus", b.identifier, "eventType", typ.String(), "chain", ChainID(ctx))
	b.metrics.DeadEvent(b.identifier)
	if subs := b.registry.Lookup(deadEventType); len(subs) > 0 {
		b.dispatcher.Dispatch(ctx, DeadEvent{Source: b, Event: event}, subs)
	}
	return nil
}

// ============================================================================
// 诊断
// ============================================================================

// EventTypes 返回至少有一个订阅者的事件类型
func (b *Bus) EventTypes() []reflect.Type {
	return b.registry.EventTypes()
}

// HasSubscribers 事件类型是否有订阅者
func (b *Bus) HasSubscribers(eventType reflect.Type) bool {
	return b.registry.Count(eventType) > 0
}

// Subscribers 返回事件类型的订阅者快照
func (b *Bus) Subscribers(eventType reflect.Type) []*Subscriber {
	return b.registry.Lookup(eventType)
}

// String 返回描述
func (b *Bus) String() string {
	return fmt.Sprintf("EventBus{%s}", b.identifier)
}

// ============================================================================
// 关闭
// ============================================================================

// Close 关闭总线
//
// 之后的 Post 和 Register 返回 types.ErrBusClosed。总线拥有的执行器
// 会被关闭并等待排空。可以多次调用。
func (b *Bus) Close(ctx context.Context) error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	log.Debug("关闭事件总线", "bus", b.identifier)

	if !b.ownsExecutor {
		return nil
	}
	c, ok := b.executor.(executor.Closer)
	if !ok {
		return nil
	}
	if b.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.shutdownTimeout)
		defer cancel()
	}
	return c.Close(ctx)
}

// Closed 是否已关闭
func (b *Bus) Closed() bool {
	return b.closed.Load()
}

// ============================================================================
// 内部方法
// ============================================================================

// subscribersOf 校验 target 并创建其 Subscriber 列表
func (b *Bus) subscribersOf(target any) ([]*Subscriber, error) {
	if target == nil {
		return nil, types.ErrNilSubscriber
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: got %T", types.ErrNonPointerSubscriber, target)
	}
	if v.IsNil() {
		return nil, types.ErrNilSubscriber
	}

	methods, err := b.finder.FindHandlers(target)
	if err != nil {
		return nil, err
	}

	owner := ownerOf(target)
	subs := make([]*Subscriber, 0, len(methods))
	for _, m := range methods {
		subs = append(subs, newSubscriber(b, target, owner, m))
	}
	return subs, nil
}

// submit 通过执行器调用处理方法
func (b *Bus) submit(ctx context.Context, s *Subscriber, event any) {
	b.executor.Submit(func() {
		b.invoke(ctx, s, event)
	})
}

// invoke 调用处理方法并路由失败
func (b *Bus) invoke(ctx context.Context, s *Subscriber, event any) {
	done := b.metrics.StartInvocation(b.identifier)
	err := s.call(ctx, event)
	done(err)
	if err != nil {
		b.handleException(err, pkgif.ExceptionContext{
			Bus:        b,
			Event:      event,
			Subscriber: s.target,
			Method:     s.key.method,
			ChainID:    ChainID(ctx),
		})
	}
}

// isNil 是否为 nil 事件（包括 nil 指针、map、func、chan、slice、接口）
func isNil(event any) bool {
	if event == nil {
		return true
	}
	v := reflect.ValueOf(event)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan,
		reflect.Slice, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
