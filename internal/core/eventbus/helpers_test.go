package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 测试事件
// ============================================================================

type orderPlaced struct{ ID int }

type itemShipped struct{ ID int }

// ============================================================================
// 测试订阅者
// ============================================================================

// counter 统计收到的 orderPlaced
type counter struct {
	n atomic.Int64
}

func (c *counter) OnOrder(_ orderPlaced) { c.n.Add(1) }

// deadListener 记录 DeadEvent
type deadListener struct {
	mu     sync.Mutex
	events []DeadEvent
}

func (d *deadListener) OnDead(e DeadEvent) {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
}

func (d *deadListener) all() []DeadEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DeadEvent(nil), d.events...)
}

// trace 记录调用顺序
type trace struct {
	mu      sync.Mutex
	entries []string
}

func (t *trace) add(s string) {
	t.mu.Lock()
	t.entries = append(t.entries, s)
	t.mu.Unlock()
}

func (t *trace) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.entries...)
}

// ============================================================================
// 异常记录
// ============================================================================

type recorder struct {
	mu   sync.Mutex
	errs []error
	ecs  []pkgif.ExceptionContext
}

func (r *recorder) HandleException(err error, ec pkgif.ExceptionContext) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.ecs = append(r.ecs, ec)
	r.mu.Unlock()
}

func (r *recorder) snapshot() ([]error, []pkgif.ExceptionContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...), append([]pkgif.ExceptionContext(nil), r.ecs...)
}

// newTestBus 创建记录异常的总线
func newTestBus(t *testing.T, opts ...Option) (*Bus, *recorder) {
	t.Helper()
	rec := &recorder{}
	bus, err := New(append([]Option{WithExceptionHandler(rec)}, opts...)...)
	require.NoError(t, err)
	return bus, rec
}

var bg = context.Background()
