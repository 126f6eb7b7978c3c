package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

// Clock 仿真时钟
// 功能：以固定步长推进仿真时间，维护当前步数与对应的仿真秒数
// 说明：时间由步数推导，T = InternalStep * DT，避免浮点累加误差
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步时间间隔（秒），等于1/tick_rate
	TickRate   float64 // 每秒步数
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)，Total为0时为-1表示不限

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：control-控制配置，包含起始步、总步数与步频
// 返回：初始化完成的时钟实例
func New(control config.Control) *Clock {
	end := int32(-1)
	if control.Step.Total > 0 {
		end = control.Step.Start + control.Step.Total
	}
	c := &Clock{
		DT:         1 / control.TickRate,
		TickRate:   control.TickRate,
		START_STEP: control.Step.Start,
		END_STEP:   end,
	}
	c.Init()
	return c
}

// Init 重置时钟到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Advance 推进一步
// 返回：推进后的步数
func (c *Clock) Advance() int32 {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
	return c.InternalStep
}

// Reached 判断当前步数对应的时间是否已达到指定秒数
// 说明：以步数比较，60秒在30步/秒下恰好是第1800步
func (c *Clock) Reached(seconds float64) bool {
	return float64(c.InternalStep) >= seconds*c.TickRate
}

// Finished 是否已到达结束步
func (c *Clock) Finished() bool {
	return c.END_STEP >= 0 && c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示
// 返回：格式化的时间字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
