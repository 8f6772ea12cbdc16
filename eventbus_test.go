package eventbus_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	eventbus "github.com/dep2p/go-eventbus"
	"github.com/dep2p/go-eventbus/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              测试类型
// ════════════════════════════════════════════════════════════════════════════

type userCreated struct{ Name string }

type audit struct {
	mu    sync.Mutex
	names []string
}

func (a *audit) record(_ context.Context, e userCreated) error {
	a.mu.Lock()
	a.names = append(a.names, e.Name)
	a.mu.Unlock()
	return nil
}

func (a *audit) EventHandlers() []eventbus.HandlerMethod {
	return []eventbus.HandlerMethod{
		eventbus.Handle(a.record, eventbus.Concurrent()),
	}
}

func (a *audit) list() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.names...)
}

type welcomer struct {
	greeted []string
}

func (w *welcomer) OnUserCreated(e userCreated) {
	w.greeted = append(w.greeted, "hi "+e.Name)
}

// ════════════════════════════════════════════════════════════════════════════
//                              API 测试
// ════════════════════════════════════════════════════════════════════════════

// TestPublicAPI 测试公共 API
func TestPublicAPI(t *testing.T) {
	bus, err := eventbus.New(eventbus.WithIdentifier("users"))
	require.NoError(t, err)

	a, w := &audit{}, &welcomer{}
	require.NoError(t, bus.Register(a))
	require.NoError(t, bus.Register(w))

	require.NoError(t, bus.Post(context.Background(), userCreated{Name: "ada"}))

	assert.Equal(t, []string{"ada"}, a.list())
	assert.Equal(t, []string{"hi ada"}, w.greeted)
	assert.Equal(t, "users", bus.Identifier())

	subs := bus.Subscribers(bus.EventTypes()[0])
	require.Len(t, subs, 2)
	assert.Equal(t, eventbus.ModeConcurrent, subs[0].Mode())

	t.Log("✅ 公共 API 可用")
}

// TestPublicErrors 测试公共错误
func TestPublicErrors(t *testing.T) {
	bus, err := eventbus.New()
	require.NoError(t, err)

	assert.ErrorIs(t, bus.Post(context.Background(), nil), eventbus.ErrNilEvent)
	assert.ErrorIs(t, bus.Register(welcomer{}), eventbus.ErrNonPointerSubscriber)
}

// TestNewAsync 测试异步总线
func TestNewAsync(t *testing.T) {
	pool := eventbus.NewPoolExecutor(2)
	bus, err := eventbus.NewAsync(pool)
	require.NoError(t, err)

	a := &audit{}
	require.NoError(t, bus.Register(a))
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Post(context.Background(), userCreated{Name: n}))
	}
	require.NoError(t, pool.Close(context.Background()))

	assert.ElementsMatch(t, []string{"a", "b", "c"}, a.list())
}

// TestPresets 测试预设配置
func TestPresets(t *testing.T) {
	assert.Equal(t, config.DispatcherPerGoroutine, eventbus.GetDefaultConfig().Bus.Dispatcher)
	assert.Equal(t, config.DispatcherImmediate, eventbus.GetImmediateConfig().Bus.Dispatcher)

	cfg := eventbus.GetAsyncConfig()
	assert.Equal(t, config.DispatcherAsync, cfg.Bus.Dispatcher)
	assert.Equal(t, config.ExecutorPool, cfg.Executor.Kind)
	assert.NoError(t, cfg.Validate())
}

// TestVersionInfo 测试版本信息
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, eventbus.VersionInfo(), eventbus.Version)
}

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 测试
// ════════════════════════════════════════════════════════════════════════════

// TestNewApp 测试 Fx 应用组装
func TestNewApp(t *testing.T) {
	cfg := eventbus.GetAsyncConfig()
	cfg.Metrics.Enabled = false

	a := &audit{}
	var bus eventbus.EventBus
	app := eventbus.NewApp(cfg,
		fx.Populate(&bus),
		fx.Invoke(func(b eventbus.EventBus) error {
			return b.Register(a)
		}),
	)
	require.NoError(t, app.Err())

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	require.NoError(t, bus.Post(ctx, userCreated{Name: "grace"}))

	// 停止时排空工作池
	require.NoError(t, app.Stop(ctx))
	assert.Equal(t, []string{"grace"}, a.list())

	assert.ErrorIs(t, bus.Post(ctx, userCreated{}), eventbus.ErrBusClosed)

	t.Log("✅ Fx 应用测试通过")
}
