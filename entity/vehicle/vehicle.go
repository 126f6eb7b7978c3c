package vehicle

import (
	"math"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/container"
)

// Env 车辆决策所需的外部环境
type Env struct {
	Network      entity.IRoadNetwork
	Signals      entity.ISignalGetter
	SafeDistance float64 // 安全跟车距离
	Width        float64 // 仿真区域宽度
	Height       float64 // 仿真区域高度
}

// Snapshot 步初的车辆位置快照，同一步内所有车辆只读取快照而不读取正在更新的位置
type Snapshot struct {
	ID int32
	X  float64
	Y  float64
}

// View 供显示与外部读取的车辆只读视图
type View struct {
	ID        int32               `json:"id"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Direction entity.Direction    `json:"direction"`
	Class     entity.VehicleClass `json:"class"`
	Color     [3]uint8            `json:"color"`
}

// Vehicle 车辆
// 功能：以固定速度沿固定方向行驶，遇红灯或前车过近时原地停车
// 说明：方向在创建后不可修改，位置只由move修改
type Vehicle struct {
	container.IncrementalItemBase

	id    int32
	class entity.VehicleClass

	x, y   float64          // 连续坐标（长度单位）
	dir    entity.Direction // 行驶方向
	dx, dy float64          // 方向单位向量
	speed  float64          // 每步移动距离

	cell        entity.Cell // 当前所在单元格
	spawnCell   entity.Cell // 生成时所在单元格
	enteredGrid bool        // 是否曾进入过道路单元格
}

// New 在指定单元格左上角创建车辆
func New(id int32, cell entity.Cell, dir entity.Direction, speed, cellSize float64, class entity.VehicleClass) *Vehicle {
	dx, dy := dir.Vector()
	return &Vehicle{
		id:        id,
		class:     class,
		x:         float64(cell.X) * cellSize,
		y:         float64(cell.Y) * cellSize,
		dir:       dir,
		dx:        dx,
		dy:        dy,
		speed:     speed,
		cell:      cell,
		spawnCell: cell,
	}
}

func (v *Vehicle) ID() int32 {
	return v.id
}

func (v *Vehicle) Position() (x, y float64) {
	return v.x, v.y
}

func (v *Vehicle) Direction() entity.Direction {
	return v.dir
}

func (v *Vehicle) Class() entity.VehicleClass {
	return v.class
}

func (v *Vehicle) Cell() entity.Cell {
	return v.cell
}

func (v *Vehicle) SpawnCell() entity.Cell {
	return v.spawnCell
}

// EnteredGrid 是否曾进入过道路单元格
func (v *Vehicle) EnteredGrid() bool {
	return v.enteredGrid
}

// TravelledCells 当前单元格与生成单元格的曼哈顿距离
func (v *Vehicle) TravelledCells() int {
	return v.cell.Manhattan(v.spawnCell)
}

func (v *Vehicle) Snapshot() Snapshot {
	return Snapshot{ID: v.id, X: v.x, Y: v.y}
}

func (v *Vehicle) View() View {
	return View{
		ID:        v.id,
		X:         v.x,
		Y:         v.y,
		Direction: v.dir,
		Class:     v.class,
		Color:     v.class.Color(),
	}
}

// Move 根据快照判断是否停车，不停车则前进一步
// 返回：是否移动
func (v *Vehicle) Move(env *Env, peers []Snapshot) bool {
	if v.ShouldStop(env, peers) {
		return false
	}
	v.advance(env.Network)
	return true
}

// advance 前进一步并更新所在单元格
func (v *Vehicle) advance(network entity.IRoadNetwork) {
	v.x += v.dx * v.speed
	v.y += v.dy * v.speed
	v.cell = network.CellOf(v.x, v.y)
	if network.IsRoad(v.cell) {
		v.enteredGrid = true
	}
}

// ShouldStop 是否需要停车：红灯或前车过近，任一满足即停车
func (v *Vehicle) ShouldStop(env *Env, peers []Snapshot) bool {
	return v.StopForSignal(env) || v.StopForLeader(env, peers)
}

// StopForSignal 信号停车判断
// 算法说明：
// 1. 已在路口内的车辆不因信号停车，必须驶出路口
// 2. 沿行驶方向前探一个单元格，若该单元格属于某路口且本方向不是绿灯则停车
func (v *Vehicle) StopForSignal(env *Env) bool {
	if v.IsInIntersection(env.Network) {
		return false
	}
	cs := env.Network.CellSize()
	next := env.Network.CellOf(v.x+v.dx*cs, v.y+v.dy*cs)
	if !env.Network.IsRoad(next) {
		return false
	}
	in, ok := env.Network.IntersectionAt(next)
	if !ok {
		return false
	}
	return env.Signals.SignalFor(in.ID, v.dir) != mapv2.LightState_LIGHT_STATE_GREEN
}

// StopForLeader 跟车停车判断：同一车道前方存在距离小于安全距离的车辆
// 说明：找到任意一辆即可，不需要找最近的
func (v *Vehicle) StopForLeader(env *Env, peers []Snapshot) bool {
	for _, p := range peers {
		if p.ID == v.id {
			continue
		}
		if v.isAhead(p) && math.Hypot(v.x-p.X, v.y-p.Y) < env.SafeDistance {
			return true
		}
	}
	return false
}

// isAhead 同一车道（垂直于行驶方向的坐标相等）且位于行驶方向前方
func (v *Vehicle) isAhead(p Snapshot) bool {
	switch v.dir {
	case entity.DirectionRight:
		return p.Y == v.y && p.X > v.x
	case entity.DirectionLeft:
		return p.Y == v.y && p.X < v.x
	case entity.DirectionDown:
		return p.X == v.x && p.Y > v.y
	case entity.DirectionUp:
		return p.X == v.x && p.Y < v.y
	}
	return false
}

// IsOffBounds 是否已驶出仿真区域，允许越界一个单元格以容忍浮点误差
func (v *Vehicle) IsOffBounds(env *Env) bool {
	cs := env.Network.CellSize()
	return v.x < -cs || v.x > env.Width || v.y < -cs || v.y > env.Height
}

// IsInIntersection 当前单元格是否位于任一路口footprint内
func (v *Vehicle) IsInIntersection(network entity.IRoadNetwork) bool {
	_, ok := network.IntersectionAt(v.cell)
	return ok
}
