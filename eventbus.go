package eventbus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-eventbus/config"
	core "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/executor"
	"github.com/dep2p/go-eventbus/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "go-eventbus " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Bus 事件总线
	Bus = core.Bus

	// DeadEvent 没有订阅者的事件
	DeadEvent = core.DeadEvent

	// Subscriber 已注册的处理方法
	Subscriber = core.Subscriber

	// Dispatcher 分发策略
	Dispatcher = core.Dispatcher

	// LoggingExceptionHandler 默认异常处理器
	LoggingExceptionHandler = core.LoggingExceptionHandler

	// Metrics Prometheus 指标
	Metrics = metrics.Metrics

	// EventBus 事件总线接口
	EventBus = pkgif.EventBus

	// HandlerMethod 处理方法描述
	HandlerMethod = pkgif.HandlerMethod

	// HandlerFinder 处理方法发现器
	HandlerFinder = pkgif.HandlerFinder

	// Executor 执行器
	Executor = pkgif.Executor

	// ExceptionHandler 异常处理器
	ExceptionHandler = pkgif.ExceptionHandler

	// ExceptionHandlerFunc 异常处理器函数适配器
	ExceptionHandlerFunc = pkgif.ExceptionHandlerFunc

	// ExceptionContext 处理方法失败上下文
	ExceptionContext = pkgif.ExceptionContext

	// HandlerMode 处理方法并发模式
	HandlerMode = types.HandlerMode
)

// 并发模式
const (
	ModeExclusive  = types.ModeExclusive
	ModeConcurrent = types.ModeConcurrent
)

// ════════════════════════════════════════════════════════════════════════════
//                              构造
// ════════════════════════════════════════════════════════════════════════════

// New 创建事件总线
func New(opts ...Option) (*Bus, error) {
	return core.New(opts...)
}

// NewAsync 创建共享队列分发的事件总线，处理方法在 exec 上执行
func NewAsync(exec Executor, opts ...Option) (*Bus, error) {
	return core.NewAsync(exec, opts...)
}

// NewFromConfig 按配置创建事件总线
func NewFromConfig(cfg *config.Config, opts ...Option) (*Bus, error) {
	return core.NewFromConfig(cfg, opts...)
}

// NewMetrics 创建 Prometheus 指标
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	return metrics.New(reg, namespace)
}

// ChainID 返回 ctx 所在调用链的标识
func ChainID(ctx context.Context) string {
	return core.ChainID(ctx)
}

// ════════════════════════════════════════════════════════════════════════════
//                              分发器与执行器
// ════════════════════════════════════════════════════════════════════════════

// ImmediateDispatcher 深度优先分发
func ImmediateDispatcher() Dispatcher {
	return core.ImmediateDispatcher()
}

// PerGoroutineDispatcher 按调用链排队分发（广度优先）
func PerGoroutineDispatcher() Dispatcher {
	return core.PerGoroutineDispatcher()
}

// AsyncDispatcher 共享队列分发
func AsyncDispatcher() Dispatcher {
	return core.AsyncDispatcher()
}

// DirectExecutor 在投递方 goroutine 同步执行
func DirectExecutor() Executor {
	return executor.Direct{}
}

// NewPoolExecutor 创建 workers 个工作 goroutine 的执行器
//
// 返回的执行器需要调用方通过 Close(ctx) 关闭。
func NewPoolExecutor(workers int) *executor.Pool {
	return executor.NewPool(workers)
}
