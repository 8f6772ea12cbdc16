package config

import (
	"errors"
	"fmt"
)

// DispatcherKind 分发策略
type DispatcherKind string

const (
	// DispatcherImmediate 立即分发（深度优先）
	DispatcherImmediate DispatcherKind = "immediate"

	// DispatcherPerGoroutine 按投递调用链排队（广度优先）
	DispatcherPerGoroutine DispatcherKind = "per-goroutine"

	// DispatcherAsync 全局共享队列
	DispatcherAsync DispatcherKind = "async"
)

// DefaultIdentifier 默认总线标识
const DefaultIdentifier = "default"

// BusConfig 总线配置
type BusConfig struct {
	// Identifier 总线标识，多总线时用于日志和指标区分
	Identifier string `json:"identifier" yaml:"identifier"`

	// Dispatcher 分发策略
	Dispatcher DispatcherKind `json:"dispatcher" yaml:"dispatcher"`
}

// DefaultBusConfig 返回默认总线配置
func DefaultBusConfig() BusConfig {
	return BusConfig{
		Identifier: DefaultIdentifier,
		Dispatcher: DispatcherPerGoroutine,
	}
}

// Validate 验证总线配置
func (c BusConfig) Validate() error {
	if c.Identifier == "" {
		return errors.New("bus identifier must not be empty")
	}
	switch c.Dispatcher {
	case DispatcherImmediate, DispatcherPerGoroutine, DispatcherAsync:
		return nil
	default:
		return fmt.Errorf("unknown dispatcher: %q", c.Dispatcher)
	}
}
