package junction

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/junction/trafficlight"
)

// 依赖倒置，表达junction对信号灯实现的接口需求

// 给交通参与者提供的信控读取接口
type ITrafficLightGetter interface {
	SignalFor(intersection int32, d entity.Direction) mapv2.LightState // 指定路口、方向的灯色
	Group(intersection int32) entity.SignalGroup                       // 指定路口四方向灯色
	Phase() trafficlight.Phase                                         // 当前相位
	RemainingTicks() int32                                             // 当前相位剩余步数
	Program(junctionID int32, dt float64) *mapv2.TrafficLight          // 信控程序
}

// 信号灯接口
type ITrafficLight interface {
	ITrafficLightGetter
	Update() // 更新阶段，推进相位
}
