package trafficlight_test

import (
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/junction/trafficlight"
)

const (
	green = mapv2.LightState_LIGHT_STATE_GREEN
	red   = mapv2.LightState_LIGHT_STATE_RED
)

func updateN(l *trafficlight.FixedTimeTrafficLight, n int) {
	for i := 0; i < n; i++ {
		l.Update()
	}
}

func TestPhaseSchedule(t *testing.T) {
	l, err := trafficlight.NewFixedTimeTrafficLight(16, 150, 30)
	require.NoError(t, err)
	assert.Equal(t, trafficlight.PhaseNSGreen, l.Phase())

	updateN(l, 149)
	assert.Equal(t, trafficlight.PhaseNSGreen, l.Phase())
	updateN(l, 1) // tick 150
	assert.Equal(t, trafficlight.PhaseAllRedToEW, l.Phase())
	updateN(l, 29)
	assert.Equal(t, trafficlight.PhaseAllRedToEW, l.Phase())
	updateN(l, 1) // tick 180
	assert.Equal(t, trafficlight.PhaseEWGreen, l.Phase())
	updateN(l, 149)
	assert.Equal(t, trafficlight.PhaseEWGreen, l.Phase())
	updateN(l, 1) // tick 330
	assert.Equal(t, trafficlight.PhaseAllRedToNS, l.Phase())
	updateN(l, 30) // tick 360
	assert.Equal(t, trafficlight.PhaseNSGreen, l.Phase())
	assert.Equal(t, int32(0), l.Elapsed())
	assert.Equal(t, int32(150), l.RemainingTicks())
}

func TestSignalInvariant(t *testing.T) {
	l, err := trafficlight.NewFixedTimeTrafficLight(4, 20, 7)
	require.NoError(t, err)
	for tick := 0; tick < 1000; tick++ {
		for id := int32(0); id < 4; id++ {
			up := l.SignalFor(id, entity.DirectionUp)
			down := l.SignalFor(id, entity.DirectionDown)
			left := l.SignalFor(id, entity.DirectionLeft)
			right := l.SignalFor(id, entity.DirectionRight)
			assert.Equal(t, up, down)
			assert.Equal(t, left, right)
			assert.False(t, up == green && left == green, "both groups green at tick %d", tick)
			if l.Phase().IsClearing() {
				assert.Equal(t, red, up)
				assert.Equal(t, red, left)
			} else {
				assert.True(t, up == green || left == green)
			}
			// 所有路口同步
			assert.Equal(t, l.Group(0), l.Group(id))
		}
		l.Update()
	}
}

func TestGroupLights(t *testing.T) {
	assert.Equal(t, entity.SignalGroup{green, green, red, red}, trafficlight.PhaseNSGreen.Group())
	assert.Equal(t, entity.SignalGroup{red, red, green, green}, trafficlight.PhaseEWGreen.Group())
	assert.Equal(t, entity.SignalGroup{red, red, red, red}, trafficlight.PhaseAllRedToEW.Group())
	assert.Equal(t, entity.SignalGroup{red, red, red, red}, trafficlight.PhaseAllRedToNS.Group())
}

func TestInvalidDurations(t *testing.T) {
	_, err := trafficlight.NewFixedTimeTrafficLight(1, 0, 30)
	assert.ErrorIs(t, err, trafficlight.ErrInvalidDuration)
	_, err = trafficlight.NewFixedTimeTrafficLight(1, 150, -1)
	assert.ErrorIs(t, err, trafficlight.ErrInvalidDuration)
}

func TestUnknownIntersectionPanics(t *testing.T) {
	l, err := trafficlight.NewFixedTimeTrafficLight(2, 150, 30)
	require.NoError(t, err)
	assert.Panics(t, func() { l.SignalFor(2, entity.DirectionUp) })
}

func TestProgram(t *testing.T) {
	l, err := trafficlight.NewFixedTimeTrafficLight(1, 150, 30)
	require.NoError(t, err)
	tl := l.Program(3, 1.0/30)
	assert.Equal(t, int32(3), tl.JunctionId)
	require.Len(t, tl.Phases, 4)
	assert.InDelta(t, 5.0, tl.Phases[0].Duration, 1e-9)
	assert.InDelta(t, 1.0, tl.Phases[1].Duration, 1e-9)
	assert.Equal(t, []mapv2.LightState{red, red, green, green}, tl.Phases[2].States)
}
