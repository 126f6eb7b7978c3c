// 提供全网同步的固定配时信号灯控制
// 所有路口共用一个相位：南北绿 -> 全红 -> 东西绿 -> 全红 -> ...
package trafficlight

import (
	"errors"
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
)

var (
	ErrInvalidDuration = errors.New("traffic light duration must be positive")
)

// Phase 控制器相位
type Phase int32

const (
	PhaseNSGreen    Phase = iota // 南北向绿灯
	PhaseAllRedToEW              // 全红清空，之后进入东西向绿灯
	PhaseEWGreen                 // 东西向绿灯
	PhaseAllRedToNS              // 全红清空，之后进入南北向绿灯
)

func (p Phase) String() string {
	switch p {
	case PhaseNSGreen:
		return "NS_GREEN"
	case PhaseAllRedToEW:
		return "ALL_RED_TO_EW"
	case PhaseEWGreen:
		return "EW_GREEN"
	case PhaseAllRedToNS:
		return "ALL_RED_TO_NS"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IsClearing 是否处于全红清空相位
func (p Phase) IsClearing() bool {
	return p == PhaseAllRedToEW || p == PhaseAllRedToNS
}

// transition 相位转移表项
type transition struct {
	next     Phase // 下一相位
	duration int32 // 本相位持续步数
}

// Group 相位对应的单个路口四个方向的灯色
func (p Phase) Group() entity.SignalGroup {
	g := entity.SignalGroup{
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
	}
	switch p {
	case PhaseNSGreen:
		g[entity.DirectionUp] = mapv2.LightState_LIGHT_STATE_GREEN
		g[entity.DirectionDown] = mapv2.LightState_LIGHT_STATE_GREEN
	case PhaseEWGreen:
		g[entity.DirectionLeft] = mapv2.LightState_LIGHT_STATE_GREEN
		g[entity.DirectionRight] = mapv2.LightState_LIGHT_STATE_GREEN
	}
	return g
}

// FixedTimeTrafficLight 全网同步的固定配时信号灯控制器
// 功能：以显式转移表驱动的四相位状态机，相位切换时把灯色统一写入所有路口
// 说明：灯色只在相位切换时写入，读取时不重新计算
type FixedTimeTrafficLight struct {
	transitions [4]transition
	phase       Phase
	elapsed     int32                // 当前相位已持续的步数
	lights      []entity.SignalGroup // 路口ID->灯色
}

// NewFixedTimeTrafficLight 创建固定配时信号灯控制器
// 功能：初始化转移表，从南北绿灯开始
// 参数：numIntersections-路口数量，green-绿灯步数，clearance-全红步数
// 返回：控制器实例，时长非正时返回错误
func NewFixedTimeTrafficLight(numIntersections int, green, clearance int32) (*FixedTimeTrafficLight, error) {
	if green <= 0 || clearance <= 0 {
		return nil, fmt.Errorf("%w: green=%d clearance=%d", ErrInvalidDuration, green, clearance)
	}
	if numIntersections < 0 {
		return nil, fmt.Errorf("negative number of intersections %d", numIntersections)
	}
	l := &FixedTimeTrafficLight{
		transitions: [4]transition{
			PhaseNSGreen:    {next: PhaseAllRedToEW, duration: green},
			PhaseAllRedToEW: {next: PhaseEWGreen, duration: clearance},
			PhaseEWGreen:    {next: PhaseAllRedToNS, duration: green},
			PhaseAllRedToNS: {next: PhaseNSGreen, duration: clearance},
		},
		phase:  PhaseNSGreen,
		lights: make([]entity.SignalGroup, numIntersections),
	}
	l.apply()
	return l, nil
}

// apply 将当前相位的灯色写入所有路口
func (l *FixedTimeTrafficLight) apply() {
	g := l.phase.Group()
	for i := range l.lights {
		l.lights[i] = g
	}
}

// Update 更新阶段，每步调用一次
// 功能：推进相位计时，达到相位时长后按转移表切换相位并重置计时
func (l *FixedTimeTrafficLight) Update() {
	l.elapsed++
	if t := l.transitions[l.phase]; l.elapsed >= t.duration {
		log.Debugf("traffic light: %v -> %v", l.phase, t.next)
		l.phase = t.next
		l.elapsed = 0
		l.apply()
	}
}

// SignalFor 获取指定路口、指定方向的灯色
func (l *FixedTimeTrafficLight) SignalFor(intersection int32, d entity.Direction) mapv2.LightState {
	if intersection < 0 || int(intersection) >= len(l.lights) {
		log.Panicf("no intersection %d in traffic light", intersection)
	}
	return l.lights[intersection][d]
}

// Group 获取指定路口的四方向灯色
func (l *FixedTimeTrafficLight) Group(intersection int32) entity.SignalGroup {
	return l.lights[intersection]
}

// Phase 当前相位
func (l *FixedTimeTrafficLight) Phase() Phase {
	return l.phase
}

// Elapsed 当前相位已持续的步数
func (l *FixedTimeTrafficLight) Elapsed() int32 {
	return l.elapsed
}

// RemainingTicks 当前相位剩余步数
func (l *FixedTimeTrafficLight) RemainingTicks() int32 {
	return l.transitions[l.phase].duration - l.elapsed
}

// Program 以信控程序的形式描述固定配时周期
// 功能：生成四个相位的mapv2.TrafficLight，每个相位的States按Directions顺序排列
// 参数：junctionID-路口ID，dt-每步时长（秒）
// 返回：信控程序
func (l *FixedTimeTrafficLight) Program(junctionID int32, dt float64) *mapv2.TrafficLight {
	tl := &mapv2.TrafficLight{
		JunctionId: junctionID,
		Phases:     make([]*mapv2.Phase, 0, len(l.transitions)),
	}
	for p := PhaseNSGreen; p <= PhaseAllRedToNS; p++ {
		g := p.Group()
		tl.Phases = append(tl.Phases, &mapv2.Phase{
			Duration: float64(l.transitions[p].duration) * dt,
			States:   g[:],
		})
	}
	return tl
}
