package vehicle

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/randengine"
)

// SpawnPoint 车辆入口：网格边缘的道路带单元格与朝向网格内部的方向
type SpawnPoint struct {
	Cell      entity.Cell
	Direction entity.Direction
}

// SpawnPoints 根据路网生成所有入口
// 说明：
// 1. 横向道路带：第一行自左边缘向右行驶，最后一行自右边缘向左行驶
// 2. 纵向道路带：第一列自上边缘向下行驶，最后一列自下边缘向上行驶
// 3. 同一道路带的两个方向分处不同车道，不会迎面共用车道
// 4. 不在道路上的入口被丢弃
func SpawnPoints(network entity.IRoadNetwork) []SpawnPoint {
	n := network.Size()
	w := network.RoadWidth()
	bands := network.Bands()
	points := make([]SpawnPoint, 0, 4*len(bands))
	for _, b := range bands {
		points = append(points,
			SpawnPoint{Cell: entity.Cell{X: 0, Y: b}, Direction: entity.DirectionRight},
			SpawnPoint{Cell: entity.Cell{X: n - 1, Y: b + w - 1}, Direction: entity.DirectionLeft},
		)
	}
	for _, b := range bands {
		points = append(points,
			SpawnPoint{Cell: entity.Cell{X: b, Y: 0}, Direction: entity.DirectionDown},
			SpawnPoint{Cell: entity.Cell{X: b + w - 1, Y: n - 1}, Direction: entity.DirectionUp},
		)
	}
	// 最后一条道路带可能被网格边界截断
	return lo.Filter(points, func(p SpawnPoint, _ int) bool {
		return network.IsRoad(p.Cell)
	})
}

// SpawnController 车辆生成控制
// 功能：每步以固定概率尝试生成一辆车，受在网车辆上限与入口安全距离约束
// 说明：随机数的消耗顺序固定（概率、打乱入口、类别），保证同一种子结果可复现
type SpawnController struct {
	rng    *randengine.Engine
	points []SpawnPoint

	probability  float64
	limit        int
	safeDistance float64
	cellSize     float64
	classWeights []float64
}

// NewSpawnController 创建生成控制器
func NewSpawnController(
	rng *randengine.Engine,
	points []SpawnPoint,
	probability float64,
	limit int,
	safeDistance, cellSize float64,
	classWeights []float64,
) *SpawnController {
	return &SpawnController{
		rng:          rng,
		points:       points,
		probability:  probability,
		limit:        limit,
		safeDistance: safeDistance,
		cellSize:     cellSize,
		classWeights: classWeights,
	}
}

func (s *SpawnController) Points() []SpawnPoint {
	return s.points
}

// MaybeSpawn 尝试选择一个入口
// 参数：active-当前在网车辆的位置
// 返回：选中的入口、车辆类别，本步不生成时ok为false
// 算法说明：
// 1. 以probability的概率进入尝试，否则本步不生成
// 2. 在网车辆达到上限时不生成
// 3. 打乱入口顺序，选择第一个与所有在网车辆距离都不小于安全距离的入口
// 4. 没有可用入口时不生成，不会强行放入被占用的入口
func (s *SpawnController) MaybeSpawn(active []Snapshot) (p SpawnPoint, class entity.VehicleClass, ok bool) {
	if !s.rng.PTrue(s.probability) {
		return
	}
	if len(active) >= s.limit {
		log.Debugf("spawn skipped: %d vehicles at cap", len(active))
		return
	}
	candidates := make([]SpawnPoint, len(s.points))
	copy(candidates, s.points)
	randengine.ShuffleSlice(s.rng, candidates)
	for _, c := range candidates {
		if s.isClear(c, active) {
			class = entity.VehicleClass(s.rng.DiscreteDistribution(s.classWeights))
			return c, class, true
		}
	}
	log.Debugf("spawn skipped: all %d entries blocked", len(candidates))
	return
}

// isClear 入口与所有在网车辆的距离都不小于安全距离
func (s *SpawnController) isClear(p SpawnPoint, active []Snapshot) bool {
	x, y := float64(p.Cell.X)*s.cellSize, float64(p.Cell.Y)*s.cellSize
	for _, a := range active {
		if math.Hypot(a.X-x, a.Y-y) < s.safeDistance {
			return false
		}
	}
	return true
}
