// Package eventbus 实现进程内事件总线
//
// 订阅者通过 Register 注册其全部处理方法，投递方通过 Post 投递事件，
// 双方互不感知。事件按运行时类型精确匹配（*T 与 T 是不同的键）。
//
// # 组成
//
//   - Subscriber: 订阅者对象 + 处理方法 + 事件类型，决定调用是否串行化
//   - Registry: 事件类型 → 订阅者集合，读无锁，写按类型串行化
//   - Dispatcher: 分发顺序策略（immediate / per-goroutine / async）
//   - Bus: 组合以上组件，处理死事件与异常路由
//
// # 分发顺序
//
//   - immediate: 深度优先，处理方法内投递的事件先于后续处理方法执行
//   - per-goroutine（默认）: 广度优先，同一 goroutine 内嵌套投递只入队
//   - async: 所有投递方共享一个 FIFO 队列
//
// # goroutine 状态（worker）
//
// 分发队列和已持有的 Exclusive 锁按 goroutine 记录，不依赖 ctx 的传递：
// 处理方法用新的 ctx 投递也保持广度优先，重入同一 Exclusive 处理方法不会死锁；
// ctx 交给其他 goroutine 后，那里的投递按新的 goroutine 处理，仍受互斥约束。
// ctx 只携带用于日志关联的调用链标识（ChainID）。
//
// # 使用示例
//
//	bus, _ := eventbus.New()
//	_ = bus.Register(&OrderListener{})
//	_ = bus.Post(ctx, OrderPlaced{ID: 1})
package eventbus
