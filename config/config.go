// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（default/immediate/async）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Bus.Identifier = "orders"
//
//	// 应用预设
//	config.ApplyPreset(cfg, "async")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 go-eventbus 的完整配置结构
//
// 配置按照组件组织：
//   - Bus: 总线标识与分发策略
//   - Executor: 处理方法执行器
//   - Finder: 处理方法发现
//   - Metrics: Prometheus 指标
type Config struct {
	// Bus 总线配置
	Bus BusConfig `json:"bus" yaml:"bus"`

	// Executor 执行器配置
	Executor ExecutorConfig `json:"executor" yaml:"executor"`

	// Finder 处理方法发现配置
	Finder FinderConfig `json:"finder" yaml:"finder"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// NewConfig 创建默认配置
//
// 默认配置：按 goroutine 排队（广度优先）分发、同步执行、反射发现 On* 方法、启用指标。
func NewConfig() *Config {
	return &Config{
		Bus:      DefaultBusConfig(),
		Executor: DefaultExecutorConfig(),
		Finder:   DefaultFinderConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Bus.Validate(); err != nil {
		return err
	}
	if err := c.Executor.Validate(); err != nil {
		return err
	}
	if err := c.Finder.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
