package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Default 默认配置
// 说明：40×40网格，每10格一条2格宽的道路带，30步/秒，绿灯150步，全红30步
func Default() Config {
	return Config{
		Grid: Grid{
			Size:      40,
			Spacing:   10,
			RoadWidth: 2,
			CellSize:  32,
		},
		Bounds: Bounds{
			Width:  1600,
			Height: 1200,
		},
		Control: Control{
			Step:     ControlStep{Start: 0, Total: 9000},
			TickRate: 30,
		},
		Signal: Signal{
			GreenTicks:     150,
			ClearanceTicks: 30,
		},
		Vehicle: Vehicle{
			Speed:        1.5,
			SafeDistance: 32,
			ClassWeights: []float64{0.85, 0.15},
		},
		Spawn: Spawn{
			Probability: 0.35,
			Cap:         120,
			Seed:        42,
		},
		Metrics: Metrics{
			MinTravelCells: 5,
			Checkpoints:    []float64{60, 90, 120, 180, 300},
		},
	}
}

// Parse 从YAML数据解析配置
// 功能：在默认配置基础上覆盖YAML中出现的字段，并检查配置合法性
// 参数：data-YAML数据
// 返回：配置对象与错误信息
// 说明：未知字段视为错误
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate 检查配置合法性
// 功能：启动时检查所有必须为正的参数，非法配置直接返回错误
// 返回：第一个发现的错误，合法则返回nil
func (c Config) Validate() error {
	g := c.Grid
	switch {
	case g.Size <= 0:
		return invalid("grid.size must be positive, got %d", g.Size)
	case g.Spacing <= 0:
		return invalid("grid.spacing must be positive, got %d", g.Spacing)
	case g.RoadWidth <= 0:
		return invalid("grid.road_width must be positive, got %d", g.RoadWidth)
	case g.RoadWidth >= g.Spacing:
		return invalid("grid.road_width %d must be less than grid.spacing %d", g.RoadWidth, g.Spacing)
	case g.RoadWidth >= g.Size:
		return invalid("grid.road_width %d must be less than grid.size %d", g.RoadWidth, g.Size)
	case g.CellSize <= 0:
		return invalid("grid.cell_size must be positive, got %v", g.CellSize)
	}
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
		return invalid("bounds must be positive, got %vx%v", c.Bounds.Width, c.Bounds.Height)
	}
	if c.Control.TickRate <= 0 {
		return invalid("control.tick_rate must be positive, got %v", c.Control.TickRate)
	}
	if c.Control.Step.Start < 0 || c.Control.Step.Total < 0 {
		return invalid("control.step must not be negative, got %+v", c.Control.Step)
	}
	if c.Signal.GreenTicks <= 0 {
		return invalid("signal.green_ticks must be positive, got %d", c.Signal.GreenTicks)
	}
	if c.Signal.ClearanceTicks <= 0 {
		return invalid("signal.clearance_ticks must be positive, got %d", c.Signal.ClearanceTicks)
	}
	if c.Vehicle.Speed <= 0 {
		return invalid("vehicle.speed must be positive, got %v", c.Vehicle.Speed)
	}
	if c.Vehicle.SafeDistance <= 0 {
		return invalid("vehicle.safe_distance must be positive, got %v", c.Vehicle.SafeDistance)
	}
	if len(c.Vehicle.ClassWeights) == 0 {
		return invalid("vehicle.class_weights must not be empty")
	}
	sum := 0.
	for i, w := range c.Vehicle.ClassWeights {
		if w < 0 {
			return invalid("vehicle.class_weights[%d] must not be negative, got %v", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return invalid("vehicle.class_weights must sum to a positive value")
	}
	if c.Spawn.Probability < 0 || c.Spawn.Probability > 1 {
		return invalid("spawn.probability must be in [0, 1], got %v", c.Spawn.Probability)
	}
	if c.Spawn.Cap <= 0 {
		return invalid("spawn.cap must be positive, got %d", c.Spawn.Cap)
	}
	if c.Metrics.MinTravelCells < 0 {
		return invalid("metrics.min_travel_cells must not be negative, got %d", c.Metrics.MinTravelCells)
	}
	for i, cp := range c.Metrics.Checkpoints {
		if cp <= 0 {
			return invalid("metrics.checkpoints[%d] must be positive, got %v", i, cp)
		}
	}
	if c.Output.URI != "" && (c.Output.DB == "" || c.Output.Col == "") {
		return invalid("output.db and output.col are required when output.uri is set")
	}
	return nil
}
