package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventbus/internal/core/executor"
)

type tally struct {
	n atomic.Int64
}

func (s *tally) OnOrder(_ orderPlaced) { s.n.Add(1) }

func (s *tally) ConcurrentHandlers() []string { return []string{"OnOrder"} }

// postConcurrently 从 goroutines 个 goroutine 各投递 perGoroutine 次
func postConcurrently(t *testing.T, bus *Bus, goroutines, perGoroutine int) {
	t.Helper()
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				assert.NoError(t, bus.Post(bg, orderPlaced{ID: i}))
			}
		}()
	}
	wg.Wait()
}

// ============================================================================
// 并发投递测试
// ============================================================================

// TestConcurrent_PerGoroutinePosters 测试多个调用链并发投递
func TestConcurrent_PerGoroutinePosters(t *testing.T) {
	bus, _ := newTestBus(t)
	s := &tally{}
	require.NoError(t, bus.Register(s))

	postConcurrently(t, bus, 10, 100)

	assert.Equal(t, int64(1000), s.n.Load())

	t.Log("✅ 并发投递无丢失")
}

// TestConcurrent_AsyncPosters 测试共享队列并发投递
func TestConcurrent_AsyncPosters(t *testing.T) {
	bus, err := NewAsync(executor.Direct{}, WithExceptionHandler(&recorder{}))
	require.NoError(t, err)
	s := &tally{}
	require.NoError(t, bus.Register(s))

	postConcurrently(t, bus, 10, 100)

	// 最后一个排空方返回前队列已清空
	assert.Equal(t, int64(1000), s.n.Load())
	assert.Equal(t, 0, bus.dispatcher.(*asyncDispatcher).Pending())
}

// TestConcurrent_ExclusiveAcrossPosters 测试跨调用链的 Exclusive 串行化
func TestConcurrent_ExclusiveAcrossPosters(t *testing.T) {
	bus, _ := newTestBus(t)
	probe := &exclusiveProbe{}
	require.NoError(t, bus.Register(probe))

	postConcurrently(t, bus, 4, 10)

	assert.Equal(t, int32(40), probe.calls.Load())
	assert.Equal(t, int32(1), probe.peak.Load())
}

// TestConcurrent_RegisterDuringPost 测试投递过程中并发注册注销
func TestConcurrent_RegisterDuringPost(t *testing.T) {
	bus, _ := newTestBus(t)
	stable := &tally{}
	require.NoError(t, bus.Register(stable))

	stop := make(chan struct{})
	var churn sync.WaitGroup
	for g := 0; g < 4; g++ {
		churn.Add(1)
		go func() {
			defer churn.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				c := &counter{}
				assert.NoError(t, bus.Register(c))
				assert.NoError(t, bus.Unregister(c))
			}
		}()
	}

	postConcurrently(t, bus, 4, 200)
	close(stop)
	churn.Wait()

	assert.Equal(t, int64(800), stable.n.Load())
	assert.Equal(t, 1, len(bus.Subscribers(orderType)))

	t.Log("✅ 并发修改不影响进行中的分发")
}
