package entity

import (
	"git.fiblab.net/sim/syncer/v3"
)

// Manager依赖倒置

// entity/junction/manager.go的依赖倒置
type IJunctionManager interface {
	ISignalGetter
	Register(sidecar *syncer.Sidecar) // 注册到Sidecar

	Update()                       // 更新阶段
	Lights() map[int32]SignalGroup // 所有路口当前灯色的拷贝
}
