package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// ============================================================================
// Subscriber - 订阅者处理方法
// ============================================================================

// ownerKey 订阅者对象身份（动态类型 + 地址）
type ownerKey struct {
	typ reflect.Type
	ptr uintptr
}

// subscriberKey Subscriber 去重键
type subscriberKey struct {
	owner     ownerKey
	method    string
	eventType reflect.Type
}

// Subscriber 绑定到某个事件类型的一个处理方法
//
// 两个 Subscriber 相等当且仅当订阅者对象是同一个（指针身份）且处理方法相同。
// 值相等但不同的对象各自接收事件。
type Subscriber struct {
	bus    *Bus
	target any
	key    subscriberKey
	invoke pkgif.HandlerFunc
	mode   types.HandlerMode

	// mu Exclusive 模式下串行化调用
	mu sync.Mutex
}

// newSubscriber 创建 Subscriber，target 必须是非 nil 指针
func newSubscriber(bus *Bus, target any, owner ownerKey, m pkgif.HandlerMethod) *Subscriber {
	return &Subscriber{
		bus:    bus,
		target: target,
		key: subscriberKey{
			owner:     owner,
			method:    m.Name,
			eventType: m.EventType,
		},
		invoke: m.Invoke,
		mode:   m.Mode,
	}
}

// ownerOf 返回订阅者对象身份
func ownerOf(target any) ownerKey {
	v := reflect.ValueOf(target)
	return ownerKey{typ: v.Type(), ptr: v.Pointer()}
}

// Target 返回订阅者对象
func (s *Subscriber) Target() any {
	return s.target
}

// Method 返回处理方法标识
func (s *Subscriber) Method() string {
	return s.key.method
}

// EventType 返回事件类型
func (s *Subscriber) EventType() reflect.Type {
	return s.key.eventType
}

// Mode 返回并发模式
func (s *Subscriber) Mode() types.HandlerMode {
	return s.mode
}

// Equal 是否为同一订阅者的同一处理方法
func (s *Subscriber) Equal(other *Subscriber) bool {
	return other != nil && s.key == other.key
}

// String 返回描述
func (s *Subscriber) String() string {
	return fmt.Sprintf("%s.%s(%s)", s.key.owner.typ, s.key.method, s.key.eventType)
}

// ============================================================================
// 调用
// ============================================================================

// dispatch 通过总线执行器调用处理方法
func (s *Subscriber) dispatch(ctx context.Context, event any) {
	s.bus.submit(ctx, s, event)
}

// call 调用处理方法，返回错误或恢复的 panic
//
// Exclusive 模式持有互斥锁直到返回（包括 panic）。锁按 goroutine 记录：
// 同一 goroutine 重入时不再加锁，其他 goroutine 等待，与 ctx 如何传递无关。
func (s *Subscriber) call(ctx context.Context, event any) (err error) {
	if s.mode == types.ModeExclusive {
		w := enterWorker()
		defer w.leave()
		if !w.holds(s) {
			s.mu.Lock()
			defer s.mu.Unlock()
			w.acquire(s)
			defer w.release(s)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &types.HandlerError{
				Method:    s.key.method,
				EventType: s.key.eventType,
				Err:       fmt.Errorf("%w: %v", types.ErrHandlerPanicked, r),
				Panic:     r,
				Stack:     debug.Stack(),
			}
		}
	}()

	if e := s.invoke(ctx, event); e != nil {
		return &types.HandlerError{
			Method:    s.key.method,
			EventType: s.key.eventType,
			Err:       e,
		}
	}
	return nil
}
