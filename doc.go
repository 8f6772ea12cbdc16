// Package eventbus 提供进程内发布/订阅事件总线
//
// 组件注册事件处理方法，不需要知道谁会投递事件；
// 其他组件投递事件，不需要知道谁（是否有人）会处理。
// 事件按运行时类型精确匹配，仅限进程内，不做持久化。
//
// # 快速开始
//
//	type OrderListener struct{}
//
//	func (l *OrderListener) OnOrderPlaced(ctx context.Context, e OrderPlaced) error {
//	    ...
//	}
//
//	bus, err := eventbus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = bus.Register(&OrderListener{})
//	_ = bus.Post(ctx, OrderPlaced{ID: 1})
//
// # 处理方法
//
// 订阅者上名为 On<Xxx> 的导出方法是处理方法，参数为 (E) 或 (ctx, E)，
// 返回值为空或 error。处理方法返回的错误和 panic 交给 ExceptionHandler，
// 不会返回给投递方。也可以实现 EventHandlers() 显式给出处理方法表：
//
//	func (s *Audit) EventHandlers() []eventbus.HandlerMethod {
//	    return []eventbus.HandlerMethod{
//	        eventbus.Handle(s.record),
//	        eventbus.Handle(s.sample, eventbus.Concurrent()),
//	    }
//	}
//
// # 分发策略
//
//   - PerGoroutineDispatcher（默认）: 广度优先
//   - ImmediateDispatcher: 深度优先
//   - AsyncDispatcher: 共享队列，配合 NewAsync 使用
//
// # Fx 集成
//
//	app := eventbus.NewApp(cfg, fx.Invoke(func(bus eventbus.EventBus) { ... }))
//	app.Run()
//
// # 文件组织
//
//   - eventbus.go: 总线构造与类型别名
//   - options.go: 总线选项与处理方法绑定
//   - errors.go: 公共错误
//   - presets.go: 预设配置
//   - fx.go: Fx 应用组装
package eventbus
