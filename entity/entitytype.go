package entity

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// Cell 网格单元坐标（列, 行）
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan 两个单元格之间的曼哈顿距离（单位：格）
func (c Cell) Manhattan(o Cell) int {
	dx, dy := c.X-o.X, c.Y-o.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Direction 车辆行驶方向，创建后不可修改
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// Directions 所有方向，顺序与信号灯状态数组下标一致
var Directions = [4]Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// Vector 方向对应的单位步长向量（屏幕坐标系，y向下）
func (d Direction) Vector() (dx, dy float64) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	}
	panic(fmt.Sprintf("entity: invalid direction %d", int(d)))
}

// IsVertical 是否为南北向（上/下）
func (d Direction) IsVertical() bool {
	return d == DirectionUp || d == DirectionDown
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText 用于JSON输出
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// VehicleClass 车辆类别（决定显示颜色）
type VehicleClass int32

const (
	VehicleClassStandard    VehicleClass = iota // 普通车辆
	VehicleClassHighlighted                     // 高亮车辆
)

// Color 类别对应的RGB颜色
func (c VehicleClass) Color() [3]uint8 {
	if c == VehicleClassHighlighted {
		return [3]uint8{255, 0, 255}
	}
	return [3]uint8{0, 0, 0}
}

// Intersection 路口：footprint左上角单元格与边长
type Intersection struct {
	ID     int32 `json:"id"`
	Anchor Cell  `json:"anchor"`
	Size   int   `json:"size"`
}

// Contains 判断单元格是否位于路口footprint内
func (i Intersection) Contains(c Cell) bool {
	return i.Anchor.X <= c.X && c.X < i.Anchor.X+i.Size &&
		i.Anchor.Y <= c.Y && c.Y < i.Anchor.Y+i.Size
}

// SignalGroup 一个路口四个方向的信号灯状态，下标为Direction
type SignalGroup [4]mapv2.LightState

// entity/road的依赖倒置
type IRoadNetwork interface {
	// 网格边长（格）
	Size() int
	// 道路带宽度（格）
	RoadWidth() int
	// 道路带起始行/列
	Bands() []int
	CellSize() float64
	// 连续坐标所在的单元格
	CellOf(x, y float64) Cell
	// 是否为可行驶单元格
	IsRoad(c Cell) bool
	// 单元格所在路口
	IntersectionAt(c Cell) (Intersection, bool)
	Intersections() []Intersection
}

// entity/junction的依赖倒置，给车辆提供的信控读取接口
type ISignalGetter interface {
	SignalFor(intersection int32, d Direction) mapv2.LightState
}
