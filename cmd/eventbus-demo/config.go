package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dep2p/go-eventbus/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量（均使用 EVENTBUS_ 前缀）
const (
	envPrefix     = "EVENTBUS_"
	envPreset     = "PRESET"
	envDispatcher = "DISPATCHER"
	envWorkers    = "WORKERS"
)

// loadConfig 加载配置
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 预设。
func loadConfig(path, preset string) (*config.Config, error) {
	cfg := config.NewConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(envPrefix + envPreset); v != "" && preset == "" {
		preset = v
	}
	if err := config.ApplyPreset(cfg, preset); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 支持的环境变量：
//   - EVENTBUS_DISPATCHER: 分发策略
//   - EVENTBUS_WORKERS: 工作池大小
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envPrefix + envDispatcher); v != "" {
		cfg.Bus.Dispatcher = config.DispatcherKind(v)
	}
	if v := os.Getenv(envPrefix + envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Executor.Workers = n
		}
	}
}

// printConfig 按格式输出配置
func printConfig(cfg *config.Config, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = config.ToJSON(cfg)
	case "yaml", "yml":
		data, err = config.ToYAML(cfg)
	default:
		return fmt.Errorf("未知配置格式: %s", format)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
