package eventbus

import (
	"reflect"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// DeadEvent 包装没有任何订阅者的事件
//
// 订阅 DeadEvent 可以发现配置错误的事件分发。没有订阅者的 DeadEvent
// 会被丢弃，不会再次包装。
type DeadEvent struct {
	// Source 产生该事件的总线
	Source pkgif.EventBus

	// Event 无法投递的事件
	Event any
}

var deadEventType = reflect.TypeOf(DeadEvent{})
