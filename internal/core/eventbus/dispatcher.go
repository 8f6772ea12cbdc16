package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-eventbus/config"
)

// ============================================================================
// Dispatcher - 分发顺序策略
// ============================================================================

// Dispatcher 将事件分发给订阅者快照
type Dispatcher interface {
	Dispatch(ctx context.Context, event any, subs []*Subscriber)
}

// NewDispatcher 按配置创建分发器
func NewDispatcher(kind config.DispatcherKind) (Dispatcher, error) {
	switch kind {
	case config.DispatcherImmediate:
		return ImmediateDispatcher(), nil
	case config.DispatcherPerGoroutine, "":
		return PerGoroutineDispatcher(), nil
	case config.DispatcherAsync:
		return AsyncDispatcher(), nil
	default:
		return nil, fmt.Errorf("eventbus: unknown dispatcher %q", kind)
	}
}

// ============================================================================
// immediate - 深度优先
// ============================================================================

type immediateDispatcher struct{}

// ImmediateDispatcher 立即依次分发（深度优先）
//
// 处理方法内投递的事件会在后续处理方法之前完整分发。
func ImmediateDispatcher() Dispatcher {
	return immediateDispatcher{}
}

func (immediateDispatcher) Dispatch(ctx context.Context, event any, subs []*Subscriber) {
	for _, s := range subs {
		s.dispatch(ctx, event)
	}
}

func (immediateDispatcher) String() string {
	return string(config.DispatcherImmediate)
}

// ============================================================================
// per-goroutine - 广度优先
// ============================================================================

var dispatcherSeq atomic.Uint64

// perGoroutineDispatcher 每个 goroutine 一个队列
type perGoroutineDispatcher struct {
	// id 保证不同实例地址不同，也用于日志
	id uint64
}

// PerGoroutineDispatcher 按 goroutine 排队分发（广度优先）
//
// 同一 goroutine 投递的事件按投递顺序分发；处理方法内投递的事件在当前事件的
// 全部订阅者之后分发，与处理方法是否接收 ctx 无关。不同 goroutine 之间
// 没有顺序保证。
func PerGoroutineDispatcher() Dispatcher {
	return &perGoroutineDispatcher{id: dispatcherSeq.Add(1)}
}

func (d *perGoroutineDispatcher) Dispatch(ctx context.Context, event any, subs []*Subscriber) {
	w := enterWorker()
	defer w.leave()

	if !w.enqueue(d, queuedEvent{ctx: ctx, event: event, subs: subs}) {
		return
	}
	defer w.dropQueue(d)

	for {
		item, ok := w.dequeue(d)
		if !ok {
			return
		}
		for _, s := range item.subs {
			s.dispatch(item.ctx, item.event)
		}
	}
}

func (d *perGoroutineDispatcher) String() string {
	return fmt.Sprintf("%s#%d", config.DispatcherPerGoroutine, d.id)
}

// ============================================================================
// async - 共享队列
// ============================================================================

// asyncItem 异步队列元素：一个事件对一个订阅者
type asyncItem struct {
	ctx   context.Context
	event any
	sub   *Subscriber
}

// asyncDispatcher 所有投递方共享一个 FIFO 队列
type asyncDispatcher struct {
	mu       sync.Mutex
	queue    []asyncItem
	draining bool
}

// AsyncDispatcher 共享队列分发
//
// 第一个发现队列未在排空的投递方负责排空，其他投递方只入队。
// 队列元素在排空方的 goroutine 上提交给执行器。
func AsyncDispatcher() Dispatcher {
	return &asyncDispatcher{}
}

func (d *asyncDispatcher) Dispatch(ctx context.Context, event any, subs []*Subscriber) {
	d.mu.Lock()
	for _, s := range subs {
		d.queue = append(d.queue, asyncItem{ctx: ctx, event: event, sub: s})
	}
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	d.drain()
}

func (d *asyncDispatcher) drain() {
	finished := false
	defer func() {
		if !finished {
			d.mu.Lock()
			d.draining = false
			d.mu.Unlock()
		}
	}()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			finished = true
			return
		}
		item := d.queue[0]
		d.queue[0] = asyncItem{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		item.sub.dispatch(item.ctx, item.event)
	}
}

// Pending 返回排队中的元素数
func (d *asyncDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *asyncDispatcher) String() string {
	return string(config.DispatcherAsync)
}
