// Package executor 提供处理方法的执行器
//
// 事件总线通过 interfaces.Executor 提交处理方法调用：
//   - Direct: 在投递方 goroutine 同步执行
//   - Pool: 固定数量的工作 goroutine 消费无界 FIFO 队列
//
// # 快速开始
//
//	pool := executor.NewPool(4)
//	defer pool.Close(ctx)
//
//	bus, _ := eventbus.NewAsync(pool)
//
// # 关闭语义
//
// Pool.Close 拒绝新任务并等待已排队任务执行完毕（或 ctx 到期）。
// 关闭后提交的任务被丢弃并记录告警日志。
package executor
