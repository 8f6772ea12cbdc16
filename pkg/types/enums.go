package types

// ============================================================================
//                              HandlerMode - 处理器并发模式
// ============================================================================

// HandlerMode 处理器并发模式
//
// 决定同一订阅者的同一处理方法能否被多个 goroutine 同时进入。
type HandlerMode int

const (
	// ModeExclusive 互斥模式（默认）
	//
	// 同一 (对象, 方法) 在任意时刻最多只有一个调用在执行。
	ModeExclusive HandlerMode = iota
	// ModeConcurrent 并发模式
	//
	// 不加锁，同一对象的处理方法可以被多个 goroutine 同时调用。
	ModeConcurrent
)

// String 返回并发模式的字符串表示
func (m HandlerMode) String() string {
	switch m {
	case ModeExclusive:
		return "exclusive"
	case ModeConcurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}
