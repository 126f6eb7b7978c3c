package road

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

var (
	ErrInvalidGrid = errors.New("invalid grid parameters")
)

// Network 静态路网
// 功能：根据网格参数生成可行驶单元格集合与路口列表，启动时构建一次，之后只读
// 说明：水平与垂直道路带宽度为road_width，从偏移road_width处开始每隔spacing格重复
type Network struct {
	size     int
	spacing  int
	width    int
	cellSize float64

	// 道路带起始坐标（水平、垂直相同）
	bands         []int
	roads         map[entity.Cell]struct{}
	intersections []entity.Intersection

	// 单元格->路口ID
	footprint map[entity.Cell]int32
}

// New 构建路网
// 功能：生成道路单元格与路口，参数非法时立即返回错误
// 参数：g-网格配置
// 返回：路网指针与错误信息
// 算法说明：
// 1. 计算道路带起点 road_width, road_width+spacing, ...（小于size）
// 2. 每个起点向下/向右铺设road_width格宽的道路带，覆盖整个网格
// 3. 水平带与垂直带起点两两组合得到路口，按x优先的顺序编号
func New(g config.Grid) (*Network, error) {
	if g.Size <= 0 || g.Spacing <= 0 || g.RoadWidth <= 0 || g.CellSize <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidGrid, g)
	}
	if g.RoadWidth >= g.Spacing {
		return nil, fmt.Errorf("%w: road width %d overlaps spacing %d", ErrInvalidGrid, g.RoadWidth, g.Spacing)
	}
	n := &Network{
		size:      g.Size,
		spacing:   g.Spacing,
		width:     g.RoadWidth,
		cellSize:  g.CellSize,
		bands:     make([]int, 0),
		roads:     make(map[entity.Cell]struct{}),
		footprint: make(map[entity.Cell]int32),
	}
	for b := g.RoadWidth; b < g.Size; b += g.Spacing {
		n.bands = append(n.bands, b)
	}
	if len(n.bands) == 0 {
		return nil, fmt.Errorf("%w: no road band fits in grid of size %d", ErrInvalidGrid, g.Size)
	}
	for _, b := range n.bands {
		for k := 0; k < g.RoadWidth && b+k < g.Size; k++ {
			for i := 0; i < g.Size; i++ {
				n.roads[entity.Cell{X: i, Y: b + k}] = struct{}{} // 水平带
				n.roads[entity.Cell{X: b + k, Y: i}] = struct{}{} // 垂直带
			}
		}
	}
	for _, x := range n.bands {
		for _, y := range n.bands {
			in := entity.Intersection{
				ID:     int32(len(n.intersections)),
				Anchor: entity.Cell{X: x, Y: y},
				Size:   g.RoadWidth,
			}
			n.intersections = append(n.intersections, in)
			for dx := 0; dx < in.Size; dx++ {
				for dy := 0; dy < in.Size; dy++ {
					n.footprint[entity.Cell{X: x + dx, Y: y + dy}] = in.ID
				}
			}
		}
	}
	log.Debugf("road network: %d road cells, %d intersections", len(n.roads), len(n.intersections))
	return n, nil
}

// Size 网格边长（格）
func (n *Network) Size() int {
	return n.size
}

// RoadWidth 道路带宽度（格）
func (n *Network) RoadWidth() int {
	return n.width
}

func (n *Network) CellSize() float64 {
	return n.cellSize
}

// Bands 道路带起始坐标
func (n *Network) Bands() []int {
	return slices.Clone(n.bands)
}

// CellOf 连续坐标所在的单元格（向下取整）
func (n *Network) CellOf(x, y float64) entity.Cell {
	return entity.Cell{
		X: int(math.Floor(x / n.cellSize)),
		Y: int(math.Floor(y / n.cellSize)),
	}
}

// IsRoad 判断单元格是否可行驶
func (n *Network) IsRoad(c entity.Cell) bool {
	_, ok := n.roads[c]
	return ok
}

// IntersectionAt 查找单元格所在路口
func (n *Network) IntersectionAt(c entity.Cell) (entity.Intersection, bool) {
	id, ok := n.footprint[c]
	if !ok {
		return entity.Intersection{}, false
	}
	return n.intersections[id], true
}

// Intersections 路口列表（按ID排序）
func (n *Network) Intersections() []entity.Intersection {
	return slices.Clone(n.intersections)
}

// Roads 全部道路单元格，按(y, x)排序
func (n *Network) Roads() []entity.Cell {
	cells := lo.Keys(n.roads)
	slices.SortFunc(cells, func(a, b entity.Cell) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return cells
}
