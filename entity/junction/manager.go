package junction

import (
	"fmt"
	"sync"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/junction/trafficlight"
)

// Junction管理器
// 功能：持有所有路口与全网同步的信号灯控制器，为车辆提供信控读取，为RPC提供只读快照
type JunctionManager struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	ctx entity.ITaskContext

	data          map[int32]entity.Intersection
	intersections []entity.Intersection
	trafficLight  ITrafficLight
	programs      map[int32]*mapv2.TrafficLight

	// 供RPC读取的快照，在Update末尾写入
	snapshotMtx       sync.RWMutex
	snapshotPhase     trafficlight.Phase
	snapshotRemaining int32
}

// NewManager 创建Junction管理器实例
// 功能：根据路网中的路口创建信号灯控制器，生成每个路口的信控程序描述
// 参数：ctx-任务上下文
// 返回：新创建的Junction管理器实例，信控时长非法时返回错误
func NewManager(ctx entity.ITaskContext) (*JunctionManager, error) {
	intersections := ctx.RoadNetwork().Intersections()
	signal := ctx.RuntimeConfig().All.Signal
	tl, err := trafficlight.NewFixedTimeTrafficLight(len(intersections), signal.GreenTicks, signal.ClearanceTicks)
	if err != nil {
		return nil, fmt.Errorf("junction: %w", err)
	}
	m := &JunctionManager{
		ctx:           ctx,
		intersections: intersections,
		trafficLight:  tl,
	}
	m.data = lo.SliceToMap(intersections, func(in entity.Intersection) (int32, entity.Intersection) {
		return in.ID, in
	})
	dt := ctx.RuntimeConfig().DT
	m.programs = lo.SliceToMap(intersections, func(in entity.Intersection) (int32, *mapv2.TrafficLight) {
		return in.ID, tl.Program(in.ID, dt)
	})
	m.takeSnapshot()
	log.Infof("junction: %d intersections, green %d ticks, clearance %d ticks",
		len(intersections), signal.GreenTicks, signal.ClearanceTicks)
	return m, nil
}

// Get 根据ID获取路口，如果不存在则panic
func (m *JunctionManager) Get(id int32) entity.Intersection {
	if in, ok := m.data[id]; !ok {
		log.Panicf("no id %d in junction data", id)
		return entity.Intersection{}
	} else {
		return in
	}
}

// GetOrError 根据ID获取路口，如果不存在则返回错误
func (m *JunctionManager) GetOrError(id int32) (entity.Intersection, error) {
	if in, ok := m.data[id]; !ok {
		return entity.Intersection{}, fmt.Errorf("no id %d in junction data", id)
	} else {
		return in, nil
	}
}

// Update 更新阶段，推进信号灯相位并刷新快照
func (m *JunctionManager) Update() {
	prev := m.trafficLight.Phase()
	m.trafficLight.Update()
	if cur := m.trafficLight.Phase(); cur != prev {
		log.Debugf("step %d: phase %v -> %v", m.ctx.Clock().InternalStep, prev, cur)
	}
	m.takeSnapshot()
}

func (m *JunctionManager) takeSnapshot() {
	m.snapshotMtx.Lock()
	defer m.snapshotMtx.Unlock()
	m.snapshotPhase = m.trafficLight.Phase()
	m.snapshotRemaining = m.trafficLight.RemainingTicks()
}

// SignalFor 车辆读取指定路口、指定方向的灯色
func (m *JunctionManager) SignalFor(intersection int32, d entity.Direction) mapv2.LightState {
	return m.trafficLight.SignalFor(intersection, d)
}

// Phase 当前相位
func (m *JunctionManager) Phase() trafficlight.Phase {
	return m.trafficLight.Phase()
}

// Lights 所有路口当前灯色
// 返回：路口ID->四方向灯色的拷贝，可交给其他协程只读使用
func (m *JunctionManager) Lights() map[int32]entity.SignalGroup {
	return lo.SliceToMap(m.intersections, func(in entity.Intersection) (int32, entity.SignalGroup) {
		return in.ID, m.trafficLight.Group(in.ID)
	})
}
