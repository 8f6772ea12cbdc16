package config

import (
	"errors"
	"fmt"
	"time"
)

// ExecutorKind 执行器类型
type ExecutorKind string

const (
	// ExecutorDirect 在投递方 goroutine 同步执行
	ExecutorDirect ExecutorKind = "direct"

	// ExecutorPool 固定数量的工作 goroutine
	ExecutorPool ExecutorKind = "pool"
)

// ExecutorConfig 执行器配置
type ExecutorConfig struct {
	// Kind 执行器类型
	Kind ExecutorKind `json:"kind" yaml:"kind"`

	// Workers 工作 goroutine 数量（仅 pool）
	Workers int `json:"workers" yaml:"workers"`

	// ShutdownTimeout 关闭时等待队列排空的超时
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultExecutorConfig 返回默认执行器配置
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Kind:            ExecutorDirect,
		Workers:         8,
		ShutdownTimeout: Duration(5 * time.Second),
	}
}

// Validate 验证执行器配置
func (c ExecutorConfig) Validate() error {
	switch c.Kind {
	case ExecutorDirect:
	case ExecutorPool:
		if c.Workers <= 0 {
			return errors.New("executor workers must be positive")
		}
	default:
		return fmt.Errorf("unknown executor kind: %q", c.Kind)
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("executor shutdown timeout must not be negative")
	}
	return nil
}
