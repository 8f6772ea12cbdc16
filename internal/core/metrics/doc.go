// Package metrics 提供事件总线的监控指标
//
// 基于 Prometheus client_golang 实现：
//   - eventbus_events_posted_total{bus,event_type}: 投递事件数
//   - eventbus_dead_events_total{bus}: 无订阅者的事件数
//   - eventbus_handler_invocations_total{bus,outcome}: 处理方法调用数（ok/error/panic）
//   - eventbus_exception_handler_failures_total{bus}: 异常处理器自身失败数
//   - eventbus_handler_duration_seconds{bus}: 处理方法耗时
//
// 同时维护进程内累计值，Snapshot() 无需抓取即可读取。
//
// # 快速开始
//
//	m, err := metrics.New(prometheus.DefaultRegisterer, "eventbus")
//	bus, _ := eventbus.New(eventbus.WithMetrics(m))
//
//	stats := m.Snapshot()
//	fmt.Printf("posted=%d dead=%d\n", stats.Posted, stats.Dead)
//
// # nil 安全
//
// 所有方法在 nil *Metrics 上是空操作，禁用指标时直接传 nil。
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    fx.Invoke(func(m *metrics.Metrics) { ... }),
//	)
package metrics
