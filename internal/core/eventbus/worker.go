package eventbus

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// ============================================================================
// worker - goroutine 状态
// ============================================================================

// worker 一个 goroutine 上的分发状态
//
// 只由所属 goroutine 访问，不加锁。goroutine 上最外层的分发返回后删除。
type worker struct {
	gid    uint64
	depth  int
	queues map[*perGoroutineDispatcher]*workerQueue
	held   map[*Subscriber]struct{}
}

// workerQueue per-goroutine 分发器在某个 worker 上的队列
type workerQueue struct {
	items []queuedEvent
}

// queuedEvent 排队的事件及其订阅者快照
type queuedEvent struct {
	ctx   context.Context
	event any
	subs  []*Subscriber
}

// workers goroutine ID -> *worker
var workers sync.Map

// enterWorker 返回当前 goroutine 的 worker，调用方必须 defer leave
func enterWorker() *worker {
	gid := goroutineID()
	if v, ok := workers.Load(gid); ok {
		w := v.(*worker)
		w.depth++
		return w
	}
	w := &worker{gid: gid, depth: 1}
	workers.Store(gid, w)
	return w
}

// leave 与 enterWorker 配对
func (w *worker) leave() {
	w.depth--
	if w.depth == 0 {
		workers.Delete(w.gid)
	}
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID 解析当前 goroutine 的 ID
//
// runtime.Stack 的首行格式为 "goroutine 18 [running]:"。
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic("eventbus: cannot parse goroutine id: " + err.Error())
	}
	return id
}

// ============================================================================
// 队列
// ============================================================================

// enqueue 入队，返回调用方是否需要开始排空
//
// 队列存在即表示当前 goroutine 的外层调用正在排空。
func (w *worker) enqueue(d *perGoroutineDispatcher, item queuedEvent) bool {
	if w.queues == nil {
		w.queues = make(map[*perGoroutineDispatcher]*workerQueue)
	}
	if q, ok := w.queues[d]; ok {
		q.items = append(q.items, item)
		return false
	}
	w.queues[d] = &workerQueue{items: []queuedEvent{item}}
	return true
}

// dequeue 出队；队列为空时同时删除队列并返回 false
func (w *worker) dequeue(d *perGoroutineDispatcher) (queuedEvent, bool) {
	q, ok := w.queues[d]
	if !ok {
		return queuedEvent{}, false
	}
	if len(q.items) == 0 {
		delete(w.queues, d)
		return queuedEvent{}, false
	}
	item := q.items[0]
	q.items[0] = queuedEvent{}
	q.items = q.items[1:]
	return item, true
}

// dropQueue 丢弃队列（排空途中 panic 时）
func (w *worker) dropQueue(d *perGoroutineDispatcher) {
	delete(w.queues, d)
}

// ============================================================================
// Exclusive 重入
// ============================================================================

// holds 当前 goroutine 是否已持有订阅者的互斥锁
func (w *worker) holds(s *Subscriber) bool {
	_, ok := w.held[s]
	return ok
}

func (w *worker) acquire(s *Subscriber) {
	if w.held == nil {
		w.held = make(map[*Subscriber]struct{})
	}
	w.held[s] = struct{}{}
}

func (w *worker) release(s *Subscriber) {
	delete(w.held, s)
}

// ============================================================================
// 调用链标识
// ============================================================================

type chainKey struct{}

// withChain 确保 ctx 上有调用链标识
func withChain(ctx context.Context) context.Context {
	if ChainID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, chainKey{}, uuid.NewString())
}

// ChainID 返回 ctx 所在调用链的标识，不在调用链上时返回空字符串
//
// Post 为没有标识的 ctx 生成一个；处理方法收到的 ctx 带着它，
// 用这个 ctx 继续投递的事件共享同一标识，可用于关联日志。
func ChainID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(chainKey{}).(string)
	return id
}
