package task

import (
	"flag"

	"github.com/tsinghua-fib-lab/gridsim-oss/metrics"
)

const (
	SelfName = "gridsim" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 300, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并对到达的采样时刻冻结通过量
// 返回：本步新冻结的采样点
// 说明：采样发生在本步车辆移动之前，记录的是上一步结束时的通过量
func (ctx *Context) prepare() []metrics.Checkpoint {
	step := ctx.clock.Advance()
	log.Debugf("step %d: prepare", step)

	if *heartBeatInterval > 0 && step%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) active: %d exited: %d",
			step,
			hour, minute, second,
			ctx.vehicleManager.Len(), ctx.recorder.Exited(),
		)
	}
	return ctx.recorder.Capture(ctx.clock)
}

// update 更新阶段，每步执行一次
// 功能：在每个仿真步骤中执行主要的仿真逻辑
// 算法说明：
// 1. 信号灯推进相位
// 2. 尝试生成一辆车
// 3. 所有车辆基于步初快照移动
// 4. 驶出仿真区域的车辆移除并计入统计
// 5. 输出新冻结的采样点，向显示端发布本步状态
func (ctx *Context) update(captured []metrics.Checkpoint) TickReport {
	ctx.junctionManager.Update()

	_, spawned := ctx.vehicleManager.Spawn()
	if spawned {
		ctx.recorder.RecordSpawn()
	}

	for _, v := range ctx.vehicleManager.Update() {
		ctx.recorder.RecordExit(v)
	}

	report := TickReport{
		Step:        ctx.clock.InternalStep,
		Elapsed:     ctx.clock.T,
		Exited:      ctx.recorder.Exited(),
		Active:      ctx.vehicleManager.Len(),
		Spawned:     spawned,
		Phase:       ctx.junctionManager.Phase(),
		Checkpoints: captured,
	}

	if ctx.output != nil {
		for _, cp := range captured {
			if err := ctx.output.WriteCheckpoint(report.Step, cp); err != nil {
				log.Errorf("failed to write checkpoint %vs: %v", cp.Seconds, err)
			}
		}
	}
	if len(ctx.sinks) > 0 {
		frame := &Frame{
			Report:   report,
			Vehicles: ctx.vehicleManager.Views(),
			Lights:   ctx.junctionManager.Lights(),
		}
		for _, sink := range ctx.sinks {
			sink.Publish(frame)
		}
	}
	return report
}

// Tick 推进一步
// 功能：时钟推进 -> 采样 -> 信控更新 -> 车辆生成 -> 车辆移动 -> 移除与统计
// 返回：本步结果
func (ctx *Context) Tick() TickReport {
	return ctx.update(ctx.prepare())
}

// finish 输出汇总
func (ctx *Context) finish() metrics.Summary {
	summary := ctx.recorder.Summary()
	log.Infof("engine complete at step %d: exited %d, spawned %d, uncounted %d",
		ctx.clock.InternalStep, summary.Exited, summary.Spawned, summary.Uncounted)
	for _, cp := range summary.Checkpoints {
		if cp.Captured {
			log.Infof("At %vs: %d exited", cp.Seconds, cp.Value)
		}
	}
	if ctx.output != nil {
		if err := ctx.output.WriteSummary(ctx.clock.InternalStep, summary); err != nil {
			log.Errorf("failed to write summary: %v", err)
		}
	}
	return summary
}

// Run 运行
// 功能：循环推进仿真直到达到结束步、收到停止指令或syncer要求关闭
// 说明：没有sidecar时独立运行，不与syncer同步
func (ctx *Context) Run() metrics.Summary {
	if ctx.sidecar != nil {
		// init syncer
		ctx.sidecar.Step(false)
	}
	for !ctx.clock.Finished() && !ctx.stopped.Load() {
		captured := ctx.prepare()
		if ctx.sidecar != nil {
			// 通知准备阶段完成
			log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
			ctx.sidecar.NotifyStepReady()
		}
		ctx.update(captured)
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		if ctx.sidecar != nil {
			last := ctx.clock.END_STEP >= 0 && ctx.clock.InternalStep+1 >= ctx.clock.END_STEP
			if ctx.sidecar.Step(last) {
				break
			}
		}
	}
	summary := ctx.finish()
	ctx.Close()
	return summary
}
