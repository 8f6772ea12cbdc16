package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/core/executor"
)

// ============================================================================
// 测试订阅者
// ============================================================================

// firstListener 收到订单后投递发货事件
type firstListener struct {
	bus *Bus
	tr  *trace
}

func (s *firstListener) OnOrder(ctx context.Context, e orderPlaced) error {
	s.tr.add("first:order")
	return s.bus.Post(ctx, itemShipped{ID: e.ID})
}

type secondListener struct{ tr *trace }

func (s *secondListener) OnOrder(_ orderPlaced) { s.tr.add("second:order") }

type shipListener struct{ tr *trace }

func (s *shipListener) OnShipped(_ itemShipped) { s.tr.add("ship:shipped") }

// recursive 处理自身投递的事件（Exclusive 重入）
type recursive struct {
	bus *Bus
	tr  *trace
	max int
}

func (s *recursive) OnOrder(ctx context.Context, e orderPlaced) error {
	if e.ID < s.max {
		if err := s.bus.Post(ctx, orderPlaced{ID: e.ID + 1}); err != nil {
			return err
		}
	}
	s.tr.add(fmt.Sprint(e.ID))
	return nil
}

// setupChain 注册 first → second → ship
func setupChain(t *testing.T, bus *Bus) *trace {
	t.Helper()
	tr := &trace{}
	require.NoError(t, bus.Register(&firstListener{bus: bus, tr: tr}))
	require.NoError(t, bus.Register(&secondListener{tr: tr}))
	require.NoError(t, bus.Register(&shipListener{tr: tr}))
	return tr
}

// ============================================================================
// 顺序测试
// ============================================================================

// TestPerGoroutine_BreadthFirst 测试广度优先
func TestPerGoroutine_BreadthFirst(t *testing.T) {
	bus, rec := newTestBus(t, WithDispatcher(PerGoroutineDispatcher()))
	tr := setupChain(t, bus)

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	assert.Equal(t, []string{"first:order", "second:order", "ship:shipped"}, tr.list())
	errs, _ := rec.snapshot()
	assert.Empty(t, errs)

	t.Log("✅ 嵌套投递在当前事件之后分发")
}

// TestImmediate_DepthFirst 测试深度优先
func TestImmediate_DepthFirst(t *testing.T) {
	bus, _ := newTestBus(t, WithDispatcher(ImmediateDispatcher()))
	tr := setupChain(t, bus)

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	assert.Equal(t, []string{"first:order", "ship:shipped", "second:order"}, tr.list())

	t.Log("✅ 嵌套投递立即分发")
}

// TestAsync_SharedQueueOrder 测试共享队列顺序
func TestAsync_SharedQueueOrder(t *testing.T) {
	bus, err := NewAsync(executor.Direct{}, WithExceptionHandler(&recorder{}))
	require.NoError(t, err)
	tr := setupChain(t, bus)

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	assert.Equal(t, []string{"first:order", "second:order", "ship:shipped"}, tr.list())
}

// TestPerGoroutine_QueueDiscarded 测试排空后队列与 worker 被丢弃
func TestPerGoroutine_QueueDiscarded(t *testing.T) {
	bus, _ := newTestBus(t, WithDispatcher(PerGoroutineDispatcher()))
	setupChain(t, bus)

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	_, ok := workers.Load(goroutineID())
	assert.False(t, ok)
}

// TestWorker_DequeueDropsEmptyQueue 测试队列为空时在同一步中删除
func TestWorker_DequeueDropsEmptyQueue(t *testing.T) {
	d := PerGoroutineDispatcher().(*perGoroutineDispatcher)
	w := &worker{}

	assert.True(t, w.enqueue(d, queuedEvent{event: 1}))
	assert.False(t, w.enqueue(d, queuedEvent{event: 2}))

	item, ok := w.dequeue(d)
	require.True(t, ok)
	assert.Equal(t, 1, item.event)
	item, ok = w.dequeue(d)
	require.True(t, ok)
	assert.Equal(t, 2, item.event)

	_, ok = w.dequeue(d)
	assert.False(t, ok)
	assert.NotContains(t, w.queues, d)

	// 队列删除后的下一次入队重新开始排空
	assert.True(t, w.enqueue(d, queuedEvent{event: 3}))
}

// plainRelay 不接收 ctx 的处理方法，用新的 ctx 投递发货事件
type plainRelay struct {
	bus *Bus
	tr  *trace
}

func (s *plainRelay) OnOrder(e orderPlaced) {
	s.tr.add("relay:order")
	_ = s.bus.Post(context.Background(), itemShipped{ID: e.ID})
}

// bothListener 处理订单与发货
type bothListener struct{ tr *trace }

func (s *bothListener) OnOrder(_ orderPlaced) { s.tr.add("both:order") }

func (s *bothListener) OnShipped(_ itemShipped) { s.tr.add("both:shipped") }

// TestPerGoroutine_BreadthFirstWithoutContext 测试不传递 ctx 时仍为广度优先
func TestPerGoroutine_BreadthFirstWithoutContext(t *testing.T) {
	bus, _ := newTestBus(t, WithDispatcher(PerGoroutineDispatcher()))
	tr := &trace{}
	require.NoError(t, bus.Register(&plainRelay{bus: bus, tr: tr}))
	require.NoError(t, bus.Register(&bothListener{tr: tr}))

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	assert.Equal(t, []string{"relay:order", "both:order", "both:shipped"}, tr.list())

	t.Log("✅ 广度优先与 ctx 传递无关")
}

// handoff 把收到的 ctx 交给新 goroutine 投递，并等待它完成
type handoff struct {
	bus *Bus
	tr  *trace
}

func (s *handoff) OnOrder(ctx context.Context, e orderPlaced) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.bus.Post(ctx, itemShipped{ID: e.ID})
	}()
	wg.Wait()
	s.tr.add("handoff:done")
}

// TestPerGoroutine_ContextSharedWithGoroutine 测试共享 ctx 的 goroutine 自行分发
func TestPerGoroutine_ContextSharedWithGoroutine(t *testing.T) {
	bus, rec := newTestBus(t, WithDispatcher(PerGoroutineDispatcher()))
	tr := &trace{}
	require.NoError(t, bus.Register(&handoff{bus: bus, tr: tr}))
	require.NoError(t, bus.Register(&shipListener{tr: tr}))

	runWithTimeout(t, func() {
		assert.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))
	})

	// 新 goroutine 的投递不进入外层队列，返回前已分发
	assert.Equal(t, []string{"ship:shipped", "handoff:done"}, tr.list())
	errs, _ := rec.snapshot()
	assert.Empty(t, errs)
}

// ============================================================================
// Exclusive 重入测试
// ============================================================================

// runWithTimeout 在超时内执行 fn
func runWithTimeout(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout: possible deadlock")
	}
}

// TestImmediate_ReentrantExclusive 测试同一调用链重入 Exclusive 处理方法不死锁
func TestImmediate_ReentrantExclusive(t *testing.T) {
	bus, rec := newTestBus(t, WithDispatcher(ImmediateDispatcher()))
	tr := &trace{}
	require.NoError(t, bus.Register(&recursive{bus: bus, tr: tr, max: 3}))

	runWithTimeout(t, func() {
		assert.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))
	})

	assert.Equal(t, []string{"3", "2", "1"}, tr.list())
	errs, _ := rec.snapshot()
	assert.Empty(t, errs)

	t.Log("✅ 重入不死锁")
}

// TestPerGoroutine_Recursive 测试广度优先下的自投递
func TestPerGoroutine_Recursive(t *testing.T) {
	bus, _ := newTestBus(t)
	tr := &trace{}
	require.NoError(t, bus.Register(&recursive{bus: bus, tr: tr, max: 3}))

	runWithTimeout(t, func() {
		assert.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))
	})

	assert.Equal(t, []string{"1", "2", "3"}, tr.list())
}

// countdown 不接收 ctx，用新的 ctx 投递自身处理的事件
type countdown struct {
	bus *Bus
	tr  *trace
}

func (s *countdown) OnOrder(e orderPlaced) {
	s.tr.add(fmt.Sprint(e.ID))
	if e.ID > 0 {
		_ = s.bus.Post(context.Background(), orderPlaced{ID: e.ID - 1})
	}
}

// TestExclusive_SelfRepostFreshContext 测试 Exclusive 处理方法用新 ctx 投递自身事件不死锁
func TestExclusive_SelfRepostFreshContext(t *testing.T) {
	for _, d := range []Dispatcher{ImmediateDispatcher(), PerGoroutineDispatcher(), AsyncDispatcher()} {
		t.Run(fmt.Sprint(d), func(t *testing.T) {
			bus, rec := newTestBus(t, WithDispatcher(d))
			tr := &trace{}
			require.NoError(t, bus.Register(&countdown{bus: bus, tr: tr}))

			runWithTimeout(t, func() {
				assert.NoError(t, bus.Post(bg, orderPlaced{ID: 3}))
			})

			assert.Equal(t, []string{"3", "2", "1", "0"}, tr.list())
			errs, _ := rec.snapshot()
			assert.Empty(t, errs)
		})
	}

	t.Log("✅ 自投递不死锁")
}

// spawner 第一次调用时把 ctx 交给新 goroutine 再次投递自身事件
type spawner struct {
	overlapProbe
	bus  *Bus
	done chan struct{}
}

func (s *spawner) OnOrder(ctx context.Context, e orderPlaced) {
	s.enter()
	defer s.leave()
	if e.ID == 1 {
		go func() {
			defer close(s.done)
			_ = s.bus.Post(ctx, orderPlaced{ID: 2})
		}()
		time.Sleep(100 * time.Millisecond)
	}
}

// TestExclusive_ContextHandedToGoroutine 测试共享 ctx 的其他 goroutine 仍被互斥
func TestExclusive_ContextHandedToGoroutine(t *testing.T) {
	for _, d := range []Dispatcher{ImmediateDispatcher(), PerGoroutineDispatcher()} {
		t.Run(fmt.Sprint(d), func(t *testing.T) {
			bus, _ := newTestBus(t, WithDispatcher(d))
			s := &spawner{bus: bus, done: make(chan struct{})}
			require.NoError(t, bus.Register(s))

			require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))
			select {
			case <-s.done:
			case <-time.After(5 * time.Second):
				t.Fatal("timeout: second post never finished")
			}

			assert.Equal(t, int32(2), s.calls.Load())
			assert.Equal(t, int32(1), s.peak.Load())
		})
	}

	t.Log("✅ 互斥按 goroutine 生效")
}

// ============================================================================
// 并发模式测试
// ============================================================================

// overlapProbe 记录最大并发调用数
type overlapProbe struct {
	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (p *overlapProbe) enter() {
	n := p.inflight.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	p.calls.Add(1)
}

func (p *overlapProbe) leave() { p.inflight.Add(-1) }

type exclusiveProbe struct{ overlapProbe }

func (s *exclusiveProbe) OnOrder(_ orderPlaced) {
	s.enter()
	time.Sleep(time.Millisecond)
	s.leave()
}

// concurrentProbe 等待两个调用同时在执行
type concurrentProbe struct {
	overlapProbe
	both chan struct{}
	once sync.Once
}

func (s *concurrentProbe) OnOrder(_ orderPlaced) {
	s.enter()
	defer s.leave()
	if s.inflight.Load() >= 2 {
		s.once.Do(func() { close(s.both) })
	}
	select {
	case <-s.both:
	case <-time.After(5 * time.Second):
	}
}

func (s *concurrentProbe) ConcurrentHandlers() []string {
	return []string{"OnOrder"}
}

// TestExclusive_NeverOverlaps 测试 Exclusive 处理方法不并发
func TestExclusive_NeverOverlaps(t *testing.T) {
	pool := executor.NewPool(8)
	defer pool.Close(context.Background())

	bus, _ := newTestBus(t, WithExecutor(pool))
	probe := &exclusiveProbe{}
	require.NoError(t, bus.Register(probe))

	for i := 0; i < 50; i++ {
		require.NoError(t, bus.Post(bg, orderPlaced{ID: i}))
	}
	require.NoError(t, pool.Close(bg))

	assert.Equal(t, int32(50), probe.calls.Load())
	assert.Equal(t, int32(1), probe.peak.Load())

	t.Log("✅ Exclusive 调用互不重叠")
}

// TestConcurrent_CanOverlap 测试 Concurrent 处理方法可并发
func TestConcurrent_CanOverlap(t *testing.T) {
	pool := executor.NewPool(4)
	defer pool.Close(context.Background())

	bus, _ := newTestBus(t, WithExecutor(pool))
	probe := &concurrentProbe{both: make(chan struct{})}
	require.NoError(t, bus.Register(probe))

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))
	require.NoError(t, bus.Post(bg, orderPlaced{ID: 2}))
	require.NoError(t, pool.Close(bg))

	assert.Equal(t, int32(2), probe.peak.Load())

	t.Log("✅ Concurrent 调用可重叠")
}

// ============================================================================
// 调用链测试
// ============================================================================

// TestChainID 测试调用链标识
func TestChainID(t *testing.T) {
	assert.Empty(t, ChainID(bg))
	assert.Empty(t, ChainID(nil)) //nolint:staticcheck // nil ctx 返回空标识

	ctx := withChain(bg)
	id := ChainID(ctx)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Equal(t, id, ChainID(withChain(ctx)))
	assert.NotEqual(t, id, ChainID(withChain(bg)))
	t.Log("✅ 调用链标识在嵌套投递中保持一致")
}

// chainRelay 记录收到的调用链标识并用收到的 ctx 继续投递
type chainRelay struct {
	bus *Bus
	ids chan string
}

func (s *chainRelay) OnOrder(ctx context.Context, e orderPlaced) error {
	s.ids <- ChainID(ctx)
	return s.bus.Post(ctx, itemShipped{ID: e.ID})
}

func (s *chainRelay) OnShipped(ctx context.Context, _ itemShipped) {
	s.ids <- ChainID(ctx)
}

// TestChainID_Propagates 测试处理方法收到的 ctx 带有投递方的调用链标识
func TestChainID_Propagates(t *testing.T) {
	bus, _ := newTestBus(t)
	s := &chainRelay{bus: bus, ids: make(chan string, 2)}
	require.NoError(t, bus.Register(s))

	require.NoError(t, bus.Post(bg, orderPlaced{ID: 1}))

	first, second := <-s.ids, <-s.ids
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

// TestNewDispatcher 测试按配置创建分发器
func TestNewDispatcher(t *testing.T) {
	d, err := NewDispatcher(config.DispatcherImmediate)
	require.NoError(t, err)
	assert.IsType(t, immediateDispatcher{}, d)

	d, err = NewDispatcher(config.DispatcherPerGoroutine)
	require.NoError(t, err)
	assert.IsType(t, &perGoroutineDispatcher{}, d)

	d, err = NewDispatcher(config.DispatcherAsync)
	require.NoError(t, err)
	assert.IsType(t, &asyncDispatcher{}, d)

	_, err = NewDispatcher("nope")
	assert.Error(t, err)
}
