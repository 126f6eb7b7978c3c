package vehicle

import (
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity"
	"github.com/tsinghua-fib-lab/gridsim-oss/entity/road"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

// fakeSignals 所有路口同一组灯色
type fakeSignals struct {
	group entity.SignalGroup
}

func (s *fakeSignals) SignalFor(intersection int32, d entity.Direction) mapv2.LightState {
	return s.group[d]
}

func allRed() entity.SignalGroup {
	return entity.SignalGroup{
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
		mapv2.LightState_LIGHT_STATE_RED,
	}
}

func allGreen() entity.SignalGroup {
	return entity.SignalGroup{
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_GREEN,
		mapv2.LightState_LIGHT_STATE_GREEN,
	}
}

func newEnv(t *testing.T, signals *fakeSignals) *Env {
	t.Helper()
	c := config.Default()
	network, err := road.New(c.Grid)
	require.NoError(t, err)
	return &Env{
		Network:      network,
		Signals:      signals,
		SafeDistance: c.Vehicle.SafeDistance,
		Width:        c.Bounds.Width,
		Height:       c.Bounds.Height,
	}
}

// newAt 在任意连续坐标处创建车辆
func newAt(env *Env, id int32, x, y float64, dir entity.Direction) *Vehicle {
	v := New(id, env.Network.CellOf(x, y), dir, 1.5, env.Network.CellSize(), entity.VehicleClassStandard)
	v.x, v.y = x, y
	return v
}

func TestNewVehicle(t *testing.T) {
	v := New(3, entity.Cell{X: 0, Y: 12}, entity.DirectionRight, 1.5, 32, entity.VehicleClassHighlighted)
	x, y := v.Position()
	assert.Equal(t, 0., x)
	assert.Equal(t, 384., y)
	assert.Equal(t, entity.Cell{X: 0, Y: 12}, v.SpawnCell())
	assert.False(t, v.EnteredGrid())
	assert.Equal(t, [3]uint8{255, 0, 255}, v.View().Color)
}

func TestStopBeforeRedIntersection(t *testing.T) {
	signals := &fakeSignals{group: allRed()}
	env := newEnv(t, signals)
	// 路口(12,2)左侧，向右行驶
	v := newAt(env, 1, 10*32, 64, entity.DirectionRight)

	for range 100 {
		v.Move(env, []Snapshot{v.Snapshot()})
	}
	x, _ := v.Position()
	assert.Equal(t, 353., x)
	assert.Equal(t, entity.Cell{X: 11, Y: 2}, v.Cell())
	assert.True(t, v.ShouldStop(env, nil))
	assert.False(t, v.IsInIntersection(env.Network))

	// 红灯期间始终停车
	for range 30 {
		assert.False(t, v.Move(env, nil))
	}
	x, _ = v.Position()
	assert.Equal(t, 353., x)

	// 变为绿灯后前进
	signals.group = allGreen()
	assert.True(t, v.Move(env, nil))
	x, _ = v.Position()
	assert.Equal(t, 354.5, x)
	assert.True(t, v.EnteredGrid())
}

func TestNoSignalStopInsideIntersection(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allRed()})
	v := newAt(env, 1, 12*32, 64, entity.DirectionRight)
	require.True(t, v.IsInIntersection(env.Network))
	assert.False(t, v.StopForSignal(env))
	assert.True(t, v.Move(env, nil))

	// 驶出路口的过程中均不因信号停车
	for range 40 {
		if v.IsInIntersection(env.Network) {
			assert.False(t, v.ShouldStop(env, nil))
		}
		v.Move(env, nil)
	}
}

func TestNoSignalStopOffRoadCell(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allRed()})
	// 前方单元格不属于任何路口
	v := newAt(env, 1, 0, 64, entity.DirectionRight)
	assert.False(t, v.ShouldStop(env, nil))
}

func TestFollowingDistance(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allGreen()})
	follower := newAt(env, 1, 100, 64, entity.DirectionRight)
	leader := newAt(env, 2, 120, 64, entity.DirectionRight)
	peers := []Snapshot{follower.Snapshot(), leader.Snapshot()}

	assert.True(t, follower.StopForLeader(env, peers))
	assert.True(t, follower.ShouldStop(env, peers))
	assert.False(t, leader.ShouldStop(env, peers))

	// 刚好达到安全距离不停车
	far := newAt(env, 3, 100+32, 64, entity.DirectionRight)
	assert.False(t, follower.StopForLeader(env, []Snapshot{far.Snapshot()}))

	// 不同车道不影响
	other := newAt(env, 4, 110, 96, entity.DirectionRight)
	assert.False(t, follower.StopForLeader(env, []Snapshot{other.Snapshot()}))

	// 后方车辆不影响
	behind := newAt(env, 5, 90, 64, entity.DirectionRight)
	assert.False(t, follower.StopForLeader(env, []Snapshot{behind.Snapshot()}))
}

func TestFollowingDistanceAllDirections(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allGreen()})
	cases := []struct {
		dir          entity.Direction
		x, y, px, py float64
	}{
		{entity.DirectionRight, 100, 64, 110, 64},
		{entity.DirectionLeft, 100, 96, 90, 96},
		{entity.DirectionDown, 64, 100, 64, 110},
		{entity.DirectionUp, 96, 100, 96, 90},
	}
	for _, c := range cases {
		t.Run(c.dir.String(), func(t *testing.T) {
			v := newAt(env, 1, c.x, c.y, c.dir)
			assert.True(t, v.StopForLeader(env, []Snapshot{{ID: 2, X: c.px, Y: c.py}}))
		})
	}
}

func TestFollowingDistanceInsideIntersection(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allRed()})
	follower := newAt(env, 1, 12*32, 64, entity.DirectionRight)
	leader := newAt(env, 2, 12*32+20, 64, entity.DirectionRight)
	require.True(t, follower.IsInIntersection(env.Network))
	peers := []Snapshot{follower.Snapshot(), leader.Snapshot()}
	assert.False(t, follower.StopForSignal(env))
	assert.True(t, follower.ShouldStop(env, peers))
}

func TestIsOffBounds(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allGreen()})
	cases := []struct {
		x, y float64
		off  bool
	}{
		{0, 0, false},
		{-32, 64, false},
		{-32.5, 64, true},
		{1600, 64, false},
		{1601.5, 64, true},
		{64, -33, true},
		{64, 1200, false},
		{64, 1200.5, true},
	}
	for _, c := range cases {
		v := newAt(env, 1, c.x, c.y, entity.DirectionRight)
		assert.Equal(t, c.off, v.IsOffBounds(env), "(%v,%v)", c.x, c.y)
	}
}

func TestTravelledCells(t *testing.T) {
	env := newEnv(t, &fakeSignals{group: allGreen()})
	v := New(1, entity.Cell{X: 0, Y: 2}, entity.DirectionRight, 32, 32, entity.VehicleClassStandard)
	for range 5 {
		v.Move(env, nil)
	}
	assert.Equal(t, entity.Cell{X: 5, Y: 2}, v.Cell())
	assert.Equal(t, 5, v.TravelledCells())
	assert.Equal(t, entity.DirectionRight, v.Direction())
}
