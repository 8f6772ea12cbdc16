package finder

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-eventbus/config"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// Params Finder 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Finder 输出
type Result struct {
	fx.Out

	Finder        *Finder
	HandlerFinder pkgif.HandlerFinder
}

// Module 是 finder 的 Fx 模块
var Module = fx.Module("finder",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Finder
func NewFromParams(p Params) (Result, error) {
	cfg := config.DefaultFinderConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Finder
	}
	f, err := New(cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Finder: f, HandlerFinder: f}, nil
}
