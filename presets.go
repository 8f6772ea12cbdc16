package eventbus

import "github.com/dep2p/go-eventbus/config"

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置获取
// ════════════════════════════════════════════════════════════════════════════

// GetDefaultConfig 获取默认配置
//
// 特点：
//   - 广度优先分发
//   - 同步执行
//
// 示例：
//
//	cfg := eventbus.GetDefaultConfig()
func GetDefaultConfig() *config.Config {
	return config.NewConfig()
}

// GetImmediateConfig 获取深度优先配置
//
// 适用场景：需要嵌套事件立即处理的同步流程
func GetImmediateConfig() *config.Config {
	return presetConfig(config.PresetImmediate)
}

// GetAsyncConfig 获取异步配置
//
// 适用场景：处理方法耗时较长，不希望阻塞投递方
// 特点：
//   - 共享队列分发
//   - 工作池执行，总线关闭时排空
func GetAsyncConfig() *config.Config {
	return presetConfig(config.PresetAsync)
}

func presetConfig(name string) *config.Config {
	cfg := config.NewConfig()
	// 预设名称均为常量，不会失败
	_ = config.ApplyPreset(cfg, name)
	return cfg
}
