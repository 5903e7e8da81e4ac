package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/prism/internal/capability"
	"github.com/stupside/prism/internal/host/sim"
)

func TestWithout(t *testing.T) {
	ctx := context.Background()
	h := sim.New().Without(sim.GLContext, sim.Screen)

	_, err := h.NewGLContext(ctx)
	assert.ErrorIs(t, err, capability.ErrUnsupported)
	_, err = h.Screen(ctx)
	assert.ErrorIs(t, err, capability.ErrUnsupported)

	s, err := h.NewSurface2D(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx))
	assert.Zero(t, h.Allocated(sim.GLContext))
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	h := sim.New()

	s, err := h.NewSurface2D(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.Live())
	assert.EqualValues(t, 1, h.Allocated(sim.Surface2D))

	require.NoError(t, s.Release(ctx))
	assert.Zero(t, h.Live())
	assert.Error(t, s.Release(ctx), "second release is reported")
}

func TestWinding(t *testing.T) {
	ctx := context.Background()

	for _, ignore := range []bool{false, true} {
		h := sim.New()
		h.IgnoreWinding = ignore

		s, err := h.NewSurface2D(ctx)
		require.NoError(t, err)
		s.Rect(0, 0, 10, 10)
		s.Rect(2, 2, 6, 6)

		in, err := s.IsPointInPath(ctx, 5, 5, capability.EvenOdd)
		require.NoError(t, err)
		assert.Equal(t, ignore, in)

		in, err = s.IsPointInPath(ctx, 1, 1, capability.EvenOdd)
		require.NoError(t, err)
		assert.True(t, in)
		require.NoError(t, s.Release(ctx))
	}
}

func TestEncodeNoise(t *testing.T) {
	ctx := context.Background()

	encode := func(h *sim.Host) string {
		s, err := h.NewSurface2D(ctx)
		require.NoError(t, err)
		defer s.Release(ctx)
		s.FillRect(0, 0, 5, 5)
		url, err := s.Encode(ctx)
		require.NoError(t, err)
		return url
	}

	quiet := sim.New()
	assert.Equal(t, encode(quiet), encode(quiet))

	noisy := sim.New()
	noisy.Noise = true
	assert.NotEqual(t, encode(noisy), encode(noisy))
}
