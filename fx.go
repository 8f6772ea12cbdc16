package eventbus

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-eventbus/config"
	core "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/finder"
	"github.com/dep2p/go-eventbus/internal/core/metrics"
)

// Module 返回事件总线的全部 Fx 模块
//
// 组装 finder、metrics、eventbus 模块并注入配置。cfg 为 nil 时使用默认配置。
// 可嵌入调用方自己的 Fx 应用。
func Module(cfg *config.Config) fx.Option {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return fx.Options(
		fx.Supply(cfg),
		finder.Module,
		metrics.Module,
		core.Module(),
	)
}

// NewApp 构建包含事件总线的 Fx 应用
//
// opts 追加在内置模块之后，可用于 fx.Invoke 注册订阅者。
func NewApp(cfg *config.Config, opts ...fx.Option) *fx.App {
	modules := []fx.Option{Module(cfg)}
	modules = append(modules, opts...)
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)
	return fx.New(modules...)
}
