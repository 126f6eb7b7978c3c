package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
)

func TestDefaultIsValid(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/30, rc.DT, 1e-12)
	assert.Equal(t, int32(9000), rc.C.Step.Total)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"grid size":         func(c *config.Config) { c.Grid.Size = 0 },
		"grid spacing":      func(c *config.Config) { c.Grid.Spacing = -1 },
		"road width":        func(c *config.Config) { c.Grid.RoadWidth = 0 },
		"wide road":         func(c *config.Config) { c.Grid.RoadWidth = c.Grid.Spacing },
		"cell size":         func(c *config.Config) { c.Grid.CellSize = 0 },
		"bounds":            func(c *config.Config) { c.Bounds.Height = 0 },
		"tick rate":         func(c *config.Config) { c.Control.TickRate = 0 },
		"negative total":    func(c *config.Config) { c.Control.Step.Total = -5 },
		"green":             func(c *config.Config) { c.Signal.GreenTicks = 0 },
		"clearance":         func(c *config.Config) { c.Signal.ClearanceTicks = -30 },
		"speed":             func(c *config.Config) { c.Vehicle.Speed = 0 },
		"safe distance":     func(c *config.Config) { c.Vehicle.SafeDistance = 0 },
		"no classes":        func(c *config.Config) { c.Vehicle.ClassWeights = nil },
		"zero classes":      func(c *config.Config) { c.Vehicle.ClassWeights = []float64{0, 0} },
		"probability":       func(c *config.Config) { c.Spawn.Probability = 1.5 },
		"cap":               func(c *config.Config) { c.Spawn.Cap = 0 },
		"checkpoint":        func(c *config.Config) { c.Metrics.Checkpoints = []float64{60, 0} },
		"output incomplete": func(c *config.Config) { c.Output.URI = "mongodb://localhost:27017" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := config.Default()
			mutate(&c)
			err := c.Validate()
			assert.ErrorIs(t, err, config.ErrInvalidConfig)

			_, err = config.NewRuntimeConfig(c)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := config.Parse([]byte(`
signal:
  green_ticks: 90
  clearance_ticks: 15
spawn:
  seed: 7
`))
	require.NoError(t, err)
	assert.Equal(t, int32(90), c.Signal.GreenTicks)
	assert.Equal(t, int32(15), c.Signal.ClearanceTicks)
	assert.Equal(t, uint64(7), c.Spawn.Seed)
	// 未出现的字段保持默认值
	assert.Equal(t, 40, c.Grid.Size)
	assert.Equal(t, 120, c.Spawn.Cap)
}

func TestParseStrict(t *testing.T) {
	_, err := config.Parse([]byte("grid:\n  colour: red\n"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("grid:\n  size: -1\n"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
