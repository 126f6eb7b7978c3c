package task

import (
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/gridsim-oss/metrics"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

// TickReport 单步仿真结果
type TickReport struct {
	Step        int32                `json:"step"`        // 当前步数
	Elapsed     float64              `json:"elapsed"`     // 已仿真时间（秒）
	Exited      int32                `json:"exited"`      // 当前通过量
	Active      int                  `json:"active"`      // 在网车辆数
	Spawned     bool                 `json:"spawned"`     // 本步是否生成了车辆
	Phase       trafficlight.Phase   `json:"phase"`       // 信号灯相位
	Checkpoints []metrics.Checkpoint `json:"checkpoints"` // 本步新冻结的采样点
}

// Frame 发给显示端的单步状态
type Frame struct {
	Report   TickReport                   `json:"report"`
	Vehicles []vehicle.View               `json:"vehicles"`
	Lights   map[int32]entity.SignalGroup `json:"lights"`
}

// Layout 静态路网布局，显示端连接时发送一次
type Layout struct {
	Grid          config.Grid           `json:"grid"`
	Bounds        config.Bounds         `json:"bounds"`
	Roads         []entity.Cell         `json:"roads"`
	Intersections []entity.Intersection `json:"intersections"`
}

// IFrameSink 显示端，每步接收一份只读状态
type IFrameSink interface {
	Publish(frame *Frame)
}

// IOutput 统计结果输出
type IOutput interface {
	WriteCheckpoint(step int32, cp metrics.Checkpoint) error
	WriteSummary(step int32, summary metrics.Summary) error
	Close() error
}
