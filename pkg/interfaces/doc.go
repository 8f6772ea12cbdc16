// Package interfaces 定义 go-eventbus 的公共接口
//
// 事件总线核心只依赖这里定义的边界：
//   - eventbus.go - EventBus 门面、处理方法发现（HandlerFinder）、
//     执行器（Executor）、异常处理器（ExceptionHandler）
//   - metrics.go - 指标上报（MetricsReporter）
//
// 实现位于 internal/core 下，一个接口文件对应一个实现目录。
package interfaces
