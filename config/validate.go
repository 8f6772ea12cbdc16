package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 空总线标识 -> "default"
//   - 空分发策略 -> per-goroutine
//   - 空执行器类型 -> direct
//   - 非正的工作池大小 -> 默认值
//   - 空方法前缀、非正缓存大小 -> 默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Bus.Identifier == "" {
		c.Bus.Identifier = DefaultIdentifier
	}
	if c.Bus.Dispatcher == "" {
		c.Bus.Dispatcher = DispatcherPerGoroutine
	}
	if c.Executor.Kind == "" {
		c.Executor.Kind = ExecutorDirect
	}
	if c.Executor.Workers <= 0 {
		c.Executor.Workers = DefaultExecutorConfig().Workers
	}
	if c.Finder.MethodPrefix == "" {
		c.Finder.MethodPrefix = DefaultFinderConfig().MethodPrefix
	}
	if c.Finder.CacheSize <= 0 {
		c.Finder.CacheSize = DefaultFinderConfig().CacheSize
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
