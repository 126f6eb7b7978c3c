package entity

import (
	"github.com/tsinghua-fib-lab/gridsim-oss/clock"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

// ITaskContext 仿真任务上下文，显式传递给各个管理器，替代全局变量
type ITaskContext interface {
	Clock() *clock.Clock
	RoadNetwork() IRoadNetwork
	JunctionManager() IJunctionManager
	RuntimeConfig() *config.RuntimeConfig
}
