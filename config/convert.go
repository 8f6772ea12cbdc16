package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "bus": {"identifier": "orders", "dispatcher": "async"},
//	  "executor": {"kind": "pool", "workers": 4, "shutdown_timeout": "3s"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// FromYAML 从 YAML 数据创建配置
//
// 字段名与 JSON 相同，未出现的字段保留默认值，未知字段报错。
//
// 示例 YAML:
//
//	bus:
//	  identifier: orders
//	  dispatcher: async
//	executor:
//	  kind: pool
//	  workers: 4
//	  shutdown_timeout: 3s
func FromYAML(data []byte) (*Config, error) {
	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToYAML 将配置序列化为 YAML
func ToYAML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return yaml.Marshal(cfg)
}

// LoadFile 从文件加载配置
//
// 扩展名为 .yaml/.yml 时按 YAML 解析，其余按 JSON 解析。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return FromJSON(data)
	}
}

// 预设名称
const (
	PresetDefault   = "default"
	PresetImmediate = "immediate"
	PresetAsync     = "async"
)

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "default": 广度优先分发，同步执行
//   - "immediate": 深度优先分发，同步执行
//   - "async": 共享队列分发，工作池执行
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case PresetDefault:
		cfg.Bus.Dispatcher = DispatcherPerGoroutine
		cfg.Executor.Kind = ExecutorDirect
	case PresetImmediate:
		cfg.Bus.Dispatcher = DispatcherImmediate
		cfg.Executor.Kind = ExecutorDirect
	case PresetAsync:
		cfg.Bus.Dispatcher = DispatcherAsync
		cfg.Executor.Kind = ExecutorPool
		if cfg.Executor.Workers <= 0 {
			cfg.Executor.Workers = DefaultExecutorConfig().Workers
		}
	case "":
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// CloneConfig 克隆配置
//
// 所有子配置都是值类型，浅拷贝即为深拷贝。
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	return &cloned
}
