// 通过量统计：累计驶出网格的车辆数，并在固定时刻冻结采样
package metrics

import (
	"sync"

	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

// Candidate 驶出仿真区域的车辆
type Candidate interface {
	ID() int32
	EnteredGrid() bool
	TravelledCells() int
}

// Checkpoint 采样点
type Checkpoint struct {
	Seconds  float64 `json:"seconds"`  // 采样时刻（秒）
	Value    int32   `json:"value"`    // 采样时的通过量
	Captured bool    `json:"captured"` // 是否已采样，采样后不再修改
}

// Summary 统计汇总
type Summary struct {
	Exited      int32        `json:"exited"`      // 计入通过量的车辆数
	Spawned     int32        `json:"spawned"`     // 生成的车辆数
	Uncounted   int32        `json:"uncounted"`   // 驶出但不计入通过量的车辆数
	Checkpoints []Checkpoint `json:"checkpoints"` // 采样点
}

// Recorder 通过量统计
// 功能：维护单调递增的通过量计数，并在每个采样时刻首次到达时冻结当时的计数
// 说明：写入只发生在仿真主循环，读取可以来自其他协程
type Recorder struct {
	minTravelCells int

	mtx         sync.RWMutex
	exited      int32
	spawned     int32
	uncounted   int32
	checkpoints []Checkpoint
}

// NewRecorder 创建统计器
func NewRecorder(c config.Metrics) *Recorder {
	r := &Recorder{
		minTravelCells: c.MinTravelCells,
		checkpoints:    make([]Checkpoint, len(c.Checkpoints)),
	}
	for i, s := range c.Checkpoints {
		r.checkpoints[i].Seconds = s
	}
	return r
}

// Clock 采样所需的时钟接口
type Clock interface {
	Reached(seconds float64) bool
}

// Capture 采样
// 功能：对所有未采样且时刻已到达的采样点，记录当前通过量
// 返回：本次新冻结的采样点
func (r *Recorder) Capture(clock Clock) []Checkpoint {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	var captured []Checkpoint
	for i := range r.checkpoints {
		cp := &r.checkpoints[i]
		if cp.Captured || !clock.Reached(cp.Seconds) {
			continue
		}
		cp.Value = r.exited
		cp.Captured = true
		captured = append(captured, *cp)
		log.Infof("checkpoint %vs: %d exited", cp.Seconds, cp.Value)
	}
	return captured
}

// RecordSpawn 记录一辆新生成的车辆
func (r *Recorder) RecordSpawn() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.spawned++
}

// RecordExit 记录一辆驶出仿真区域的车辆
// 功能：只有曾进入道路且行驶距离不小于最小距离的车辆计入通过量
// 返回：是否计入
func (r *Recorder) RecordExit(v Candidate) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if !v.EnteredGrid() || v.TravelledCells() < r.minTravelCells {
		r.uncounted++
		log.Debugf("vehicle %d exited without counting (entered=%v travelled=%d)",
			v.ID(), v.EnteredGrid(), v.TravelledCells())
		return false
	}
	r.exited++
	return true
}

// Exited 当前通过量
func (r *Recorder) Exited() int32 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.exited
}

// Checkpoints 所有采样点的拷贝
func (r *Recorder) Checkpoints() []Checkpoint {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := make([]Checkpoint, len(r.checkpoints))
	copy(out, r.checkpoints)
	return out
}

// Summary 统计汇总
func (r *Recorder) Summary() Summary {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := Summary{
		Exited:      r.exited,
		Spawned:     r.spawned,
		Uncounted:   r.uncounted,
		Checkpoints: make([]Checkpoint, len(r.checkpoints)),
	}
	copy(out.Checkpoints, r.checkpoints)
	return out
}
