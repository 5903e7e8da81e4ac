package probe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/prism/internal/capability"
	"github.com/stupside/prism/internal/host/sim"
	"github.com/stupside/prism/internal/probe"
)

func newEnv(t *testing.T, h *sim.Host) *probe.Env {
	t.Helper()
	return probe.NewEnv(context.Background(), h)
}

func TestReadCanvas(t *testing.T) {
	ctx := context.Background()

	t.Run("two runs give identical records", func(t *testing.T) {
		h := sim.New()
		env := newEnv(t, h)

		first, err := probe.ReadCanvas(ctx, env)
		require.NoError(t, err)
		second, err := probe.ReadCanvas(ctx, env)
		require.NoError(t, err)

		assert.Equal(t, *first, *second)
		assert.True(t, first.Winding)
		assert.NotEqual(t, first.TextHash, first.GeometryHash, "scenes must hash independently")
	})

	t.Run("identical across hosts with the same rendering", func(t *testing.T) {
		a, err := probe.ReadCanvas(ctx, newEnv(t, sim.New()))
		require.NoError(t, err)
		b, err := probe.ReadCanvas(ctx, newEnv(t, sim.New()))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("noisy host yields no result", func(t *testing.T) {
		h := sim.New()
		h.Noise = true

		c, err := probe.ReadCanvas(ctx, newEnv(t, h))
		assert.Nil(t, c)
		assert.ErrorIs(t, err, probe.ErrNonDeterministic)
	})

	t.Run("winding false when even-odd is ignored", func(t *testing.T) {
		h := sim.New()
		h.IgnoreWinding = true

		c, err := probe.ReadCanvas(ctx, newEnv(t, h))
		require.NoError(t, err)
		assert.False(t, c.Winding)
	})

	t.Run("missing surface", func(t *testing.T) {
		h := sim.New().Without(sim.Surface2D)

		c, err := probe.ReadCanvas(ctx, newEnv(t, h))
		assert.Nil(t, c)
		assert.ErrorIs(t, err, capability.ErrUnsupported)
	})

	t.Run("surface released", func(t *testing.T) {
		h := sim.New()
		_, err := probe.ReadCanvas(ctx, newEnv(t, h))
		require.NoError(t, err)
		assert.Equal(t, int64(1), h.Allocated(sim.Surface2D))
		assert.Zero(t, h.Live())
	})
}
