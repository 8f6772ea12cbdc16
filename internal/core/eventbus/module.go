package eventbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params 事件总线依赖参数
type Params struct {
	fx.In

	UnifiedCfg       *config.Config         `optional:"true"`
	Finder           pkgif.HandlerFinder    `optional:"true"`
	Executor         pkgif.Executor         `optional:"true"`
	ExceptionHandler pkgif.ExceptionHandler `optional:"true"`
	Metrics          *metrics.Metrics       `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.EventBus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) (Result, error) {
	opts := []Option{WithMetrics(p.Metrics)}
	if p.Finder != nil {
		opts = append(opts, WithFinder(p.Finder))
	}
	if p.Executor != nil {
		opts = append(opts, WithExecutor(p.Executor))
	}
	if p.ExceptionHandler != nil {
		opts = append(opts, WithExceptionHandler(p.ExceptionHandler))
	}

	bus, err := NewFromConfig(p.UnifiedCfg, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Bus: bus, EventBus: bus}, nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return input.Bus.Close(ctx)
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "事件总线模块，按事件类型将事件分发给订阅者的处理方法"
)
