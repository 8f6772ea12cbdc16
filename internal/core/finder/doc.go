// Package finder 发现订阅者上的事件处理方法
//
// # 命名约定
//
// 订阅者（必须是指针）上所有满足以下条件的导出方法都是处理方法：
//   - 方法名以前缀开头（默认 "On"），紧随一个大写字母，如 OnOrderPlaced
//   - 签名为以下之一，E 为具体事件类型（非接口）：
//
//	func (s *S) OnX(e E)
//	func (s *S) OnX(e E) error
//	func (s *S) OnX(ctx context.Context, e E)
//	func (s *S) OnX(ctx context.Context, e E) error
//
// 任何匹配前缀但签名不合法的方法都会使整个订阅者被拒绝，
// 所有问题通过 multierr 聚合在同一个错误中返回，且都包装 types.ErrInvalidHandlerSignature。
//
// 同一类型的扫描结果缓存在 LRU 中，重复注册同类型订阅者不再反射。
//
// # 并发模式
//
// 默认处理方法为 Exclusive（同一订阅者的同一方法不会并发调用）。
// 订阅者实现 interfaces.ConcurrentHandlers 可以声明允许并发调用的方法：
//
//	func (s *S) ConcurrentHandlers() []string { return []string{"OnMetric"} }
//
// # 显式绑定
//
// 订阅者实现 interfaces.HandlerProvider 时不做反射扫描，以其给出的表为准：
//
//	func (s *S) EventHandlers() []interfaces.HandlerMethod {
//	    return []interfaces.HandlerMethod{
//	        finder.Handle(s.onOrder),
//	        finder.Handle(s.onMetric, finder.Concurrent()),
//	    }
//	}
package finder
