package eventbus

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Registry - 事件类型 → 订阅者集合
// ============================================================================

// Registry 订阅者注册表
//
// 读取无锁：每个类型的集合是写时复制的切片。
// 写入按事件类型串行化，不同类型之间互不阻塞。
type Registry struct {
	entries sync.Map // reflect.Type -> *registryEntry
}

type registryEntry struct {
	mu   sync.Mutex
	subs atomic.Pointer[[]*Subscriber]
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{}
}

// snapshot 返回当前切片，调用方不得修改
func (e *registryEntry) snapshot() []*Subscriber {
	if p := e.subs.Load(); p != nil {
		return *p
	}
	return nil
}

// entry 返回类型条目，按需创建
func (r *Registry) entry(typ reflect.Type) *registryEntry {
	if e, ok := r.entries.Load(typ); ok {
		return e.(*registryEntry)
	}
	e, _ := r.entries.LoadOrStore(typ, &registryEntry{})
	return e.(*registryEntry)
}

// Register 添加订阅者，已存在的相等订阅者忽略
func (r *Registry) Register(subs []*Subscriber) {
	for typ, group := range groupByType(subs) {
		e := r.entry(typ)

		e.mu.Lock()
		cur := e.snapshot()
		next := make([]*Subscriber, len(cur), len(cur)+len(group))
		copy(next, cur)
		for _, s := range group {
			if indexOf(next, s) < 0 {
				next = append(next, s)
			}
		}
		if len(next) != len(cur) {
			e.subs.Store(&next)
		}
		e.mu.Unlock()
	}
}

// Unregister 移除相等的订阅者，不存在时忽略
func (r *Registry) Unregister(subs []*Subscriber) {
	for typ, group := range groupByType(subs) {
		v, ok := r.entries.Load(typ)
		if !ok {
			continue
		}
		e := v.(*registryEntry)

		e.mu.Lock()
		cur := e.snapshot()
		next := make([]*Subscriber, 0, len(cur))
		for _, s := range cur {
			if indexOf(group, s) < 0 {
				next = append(next, s)
			}
		}
		if len(next) != len(cur) {
			e.subs.Store(&next)
		}
		e.mu.Unlock()
	}
}

// Lookup 返回事件类型的订阅者快照（按注册顺序）
//
// 返回的切片不会再被修改，调用方也不得修改。
func (r *Registry) Lookup(typ reflect.Type) []*Subscriber {
	v, ok := r.entries.Load(typ)
	if !ok {
		return nil
	}
	return v.(*registryEntry).snapshot()
}

// Count 返回事件类型的订阅者数量
func (r *Registry) Count(typ reflect.Type) int {
	return len(r.Lookup(typ))
}

// EventTypes 返回至少有一个订阅者的事件类型（按名称排序）
func (r *Registry) EventTypes() []reflect.Type {
	var out []reflect.Type
	r.entries.Range(func(k, v any) bool {
		if len(v.(*registryEntry).snapshot()) > 0 {
			out = append(out, k.(reflect.Type))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// ============================================================================
// 辅助函数
// ============================================================================

func groupByType(subs []*Subscriber) map[reflect.Type][]*Subscriber {
	groups := make(map[reflect.Type][]*Subscriber)
	for _, s := range subs {
		groups[s.key.eventType] = append(groups[s.key.eventType], s)
	}
	return groups
}

func indexOf(subs []*Subscriber, s *Subscriber) int {
	for i, x := range subs {
		if x.Equal(s) {
			return i
		}
	}
	return -1
}
