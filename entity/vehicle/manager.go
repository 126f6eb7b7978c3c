package vehicle

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/container"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/randengine"
)

// decision 一辆车在本步的停车决策
type decision struct {
	v    *Vehicle
	stop bool
}

// VehicleManager Vehicle管理器
// 功能：管理在网车辆的生成、移动与移除
// 说明：移动分两遍，先基于步初快照并行计算所有车辆的停车决策，再统一写入位置
type VehicleManager struct {
	ctx entity.ITaskContext

	env      *Env
	spawner  *SpawnController
	vehicles *container.IncrementalArray[*Vehicle]

	nextID int32
	speed  float64
}

// NewManager 创建Vehicle管理器实例
// 参数：ctx-任务上下文，rng-生成车辆使用的随机数引擎
func NewManager(ctx entity.ITaskContext, rng *randengine.Engine) *VehicleManager {
	c := ctx.RuntimeConfig().All
	network := ctx.RoadNetwork()
	points := SpawnPoints(network)
	m := &VehicleManager{
		ctx: ctx,
		env: &Env{
			Network:      network,
			Signals:      ctx.JunctionManager(),
			SafeDistance: c.Vehicle.SafeDistance,
			Width:        c.Bounds.Width,
			Height:       c.Bounds.Height,
		},
		spawner: NewSpawnController(
			rng, points,
			c.Spawn.Probability, c.Spawn.Cap,
			c.Vehicle.SafeDistance, network.CellSize(),
			c.Vehicle.ClassWeights,
		),
		vehicles: container.NewIncrementalArray[*Vehicle](),
		speed:    c.Vehicle.Speed,
	}
	log.Infof("vehicle: %d spawn points, cap %d", len(points), c.Spawn.Cap)
	return m
}

// Env 车辆决策环境
func (m *VehicleManager) Env() *Env {
	return m.env
}

// Len 在网车辆数
func (m *VehicleManager) Len() int {
	return m.vehicles.Len()
}

// Data 在网车辆
func (m *VehicleManager) Data() []*Vehicle {
	return m.vehicles.Data()
}

// Snapshots 在网车辆的位置快照
func (m *VehicleManager) Snapshots() []Snapshot {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) Snapshot {
		return v.Snapshot()
	})
}

// Views 在网车辆的只读视图
func (m *VehicleManager) Views() []View {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) View {
		return v.View()
	})
}

// Add 直接加入一辆车，在下一次Prepare时生效
func (m *VehicleManager) Add(v *Vehicle) {
	m.vehicles.Add(v)
	if v.id >= m.nextID {
		m.nextID = v.id + 1
	}
}

// Prepare 使待加入与待删除的车辆生效
func (m *VehicleManager) Prepare() {
	m.vehicles.Prepare()
}

// Spawn 生成阶段：最多生成一辆车，新车立即生效并参与本步移动
func (m *VehicleManager) Spawn() (*Vehicle, bool) {
	p, class, ok := m.spawner.MaybeSpawn(m.Snapshots())
	if !ok {
		return nil, false
	}
	v := New(m.nextID, p.Cell, p.Direction, m.speed, m.env.Network.CellSize(), class)
	m.Add(v)
	m.vehicles.Prepare()
	log.Debugf("step %d: spawn vehicle %d at %v moving %v",
		m.ctx.Clock().InternalStep, v.id, p.Cell, p.Direction)
	return v, true
}

// Update 移动阶段
// 算法说明：
// 1. 记录所有车辆的步初位置快照
// 2. 并行计算每辆车的停车决策，只读取快照
// 3. 统一前进所有不需要停车的车辆
// 4. 移除驶出仿真区域的车辆并返回
func (m *VehicleManager) Update() (expired []*Vehicle) {
	data := m.vehicles.Data()
	peers := m.Snapshots()
	decisions := parallel.GoMap(data, func(v *Vehicle) decision {
		return decision{v: v, stop: v.ShouldStop(m.env, peers)}
	})
	for _, d := range decisions {
		if !d.stop {
			d.v.advance(m.env.Network)
		}
	}
	for _, v := range data {
		if v.IsOffBounds(m.env) {
			m.vehicles.Remove(v)
			expired = append(expired, v)
		}
	}
	m.vehicles.Prepare()
	return expired
}
