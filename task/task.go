package task

import (
	"fmt"
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/gridsim-oss/clock"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/junction"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/road"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/gridsim-oss/metrics"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，显式传递给各个管理器
// 说明：管理仿真系统的所有组件，包括时钟、路网、信控、车辆、统计、输出等
type Context struct {

	// 任务名
	job string
	// 停止指令，在两步之间检查
	stopped atomic.Bool
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 随机数引擎，只由车辆生成使用
	rng *randengine.Engine

	// 辅助程序，处理分布式模式下相关调用，为nil时不提供RPC
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 是否由本上下文启动了sidecar服务
	serving bool

	// 路网
	network *road.Network
	// Junction管理器
	junctionManager *junction.JunctionManager
	// Vehicle管理器
	vehicleManager *vehicle.VehicleManager
	// 通过量统计
	recorder *metrics.Recorder

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 显示端
	sinks []IFrameSink
	// 统计结果输出
	output IOutput
}

// NewContext 创建新的仿真任务上下文
// 功能：检查配置并初始化仿真系统的所有组件
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: 外部sidecar实例，为nil时不注册RPC服务
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例，配置非法时返回错误
// 算法说明：
// 1. 检查配置，生成运行时配置
// 2. 初始化时钟、随机数引擎、统计
// 3. 生成路网，创建路口与车辆管理器
// 4. 注册RPC服务到sidecar，并启动sidecar服务（如果需要）
func NewContext(
	job string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
	}
	ctx.clock = clock.New(c.Control)
	ctx.rng = randengine.New(c.Spawn.Seed)
	ctx.recorder = metrics.NewRecorder(c.Metrics)

	if ctx.network, err = road.New(c.Grid); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	if ctx.junctionManager, err = junction.NewManager(ctx); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	ctx.vehicleManager = vehicle.NewManager(ctx, ctx.rng)

	log.Infof("Grid: %dx%d, road cells: %d", c.Grid.Size, c.Grid.Size, len(ctx.network.Roads()))
	log.Infof("Intersection: %v", len(ctx.network.Intersections()))

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		ctx.junctionManager.Register(ctx.sidecar)

		// sidecar协程，用于提供RPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx, nil
}

// AddFrameSink 增加显示端
func (ctx *Context) AddFrameSink(sink IFrameSink) {
	ctx.sinks = append(ctx.sinks, sink)
}

// SetOutput 设置统计结果输出
func (ctx *Context) SetOutput(output IOutput) {
	ctx.output = output
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RoadNetwork() entity.IRoadNetwork {
	return ctx.network
}

func (ctx *Context) JunctionManager() entity.IJunctionManager {
	return ctx.junctionManager
}

func (ctx *Context) VehicleManager() *vehicle.VehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) Recorder() *metrics.Recorder {
	return ctx.recorder
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Vehicles 在网车辆的只读视图
func (ctx *Context) Vehicles() []vehicle.View {
	return ctx.vehicleManager.Views()
}

// Lights 所有路口当前灯色
func (ctx *Context) Lights() map[int32]entity.SignalGroup {
	return ctx.junctionManager.Lights()
}

// Roads 所有道路单元格
func (ctx *Context) Roads() []entity.Cell {
	return ctx.network.Roads()
}

// Intersections 所有路口
func (ctx *Context) Intersections() []entity.Intersection {
	return ctx.network.Intersections()
}

// Layout 静态路网布局
func (ctx *Context) Layout() *Layout {
	c := ctx.runtimeConfig.All
	return &Layout{
		Grid:          c.Grid,
		Bounds:        c.Bounds,
		Roads:         ctx.Roads(),
		Intersections: ctx.Intersections(),
	}
}

// Stop 请求在当前步结束后停止
func (ctx *Context) Stop() {
	ctx.stopped.Store(true)
}

// Stopped 是否已请求停止
func (ctx *Context) Stopped() bool {
	return ctx.stopped.Load()
}

// Close 关闭sidecar与输出
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	if ctx.output != nil {
		if err := ctx.output.Close(); err != nil {
			log.Errorf("failed to close output: %v", err)
		}
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		if ctx.serving {
			// wait for graceful stop
			<-ctx.sidecarCloseCh
		}
	}
}
