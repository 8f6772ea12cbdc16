package executor

import (
	"context"
	"fmt"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

var log = logger.Logger("executor")

// ============================================================================
// Direct
// ============================================================================

// Direct 在调用方 goroutine 同步执行任务
type Direct struct{}

var _ pkgif.Executor = Direct{}

// Submit 立即执行任务
func (Direct) Submit(task func()) {
	task()
}

// String 返回执行器描述
func (Direct) String() string {
	return "executor.Direct"
}

// ============================================================================
// 构造
// ============================================================================

// Closer 可关闭的执行器
type Closer interface {
	Close(ctx context.Context) error
}

// FromConfig 根据配置创建执行器
func FromConfig(cfg config.ExecutorConfig) (pkgif.Executor, error) {
	switch cfg.Kind {
	case config.ExecutorDirect, "":
		return Direct{}, nil
	case config.ExecutorPool:
		if cfg.Workers <= 0 {
			return nil, fmt.Errorf("executor: invalid worker count %d", cfg.Workers)
		}
		return NewPool(cfg.Workers), nil
	default:
		return nil, fmt.Errorf("executor: unknown kind %q", cfg.Kind)
	}
}
