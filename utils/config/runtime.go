package config

// RuntimeConfig 运行时配置
// 功能：存储经过检查的配置，并提供运行时常用的派生量
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	DT float64 // 每步时长（秒）
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：检查配置合法性并计算派生量
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
		DT:  1 / config.Control.TickRate,
	}, nil
}
