package config

import "errors"

// FinderConfig 处理方法发现配置
type FinderConfig struct {
	// MethodPrefix 处理方法名前缀，前缀之后必须是大写字母
	MethodPrefix string `json:"method_prefix" yaml:"method_prefix"`

	// CacheSize 按类型缓存扫描结果的条目数
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// DefaultFinderConfig 返回默认发现配置
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		MethodPrefix: "On",
		CacheSize:    256,
	}
}

// Validate 验证发现配置
func (c FinderConfig) Validate() error {
	if c.MethodPrefix == "" {
		return errors.New("finder method prefix must not be empty")
	}
	if c.CacheSize <= 0 {
		return errors.New("finder cache size must be positive")
	}
	return nil
}
