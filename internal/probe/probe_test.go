package probe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stupside/prism/internal/host/sim"
	"github.com/stupside/prism/internal/probe"
)

func TestNewEnv(t *testing.T) {
	ctx := context.Background()

	env := probe.NewEnv(ctx, sim.New())
	assert.Contains(t, env.UserAgent, "applewebkit")
	assert.NotContains(t, env.UserAgent, "AppleWebKit")

	env = probe.NewEnv(ctx, sim.New().Without(sim.Navigator))
	assert.Empty(t, env.UserAgent)
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	env := probe.NewEnv(ctx, sim.New())

	t.Run("passes results through", func(t *testing.T) {
		v := 42
		out := probe.Collect(ctx, "ok", env, func(context.Context, *probe.Env) (*int, error) {
			return &v, nil
		})
		assert.Equal(t, &v, out)
	})

	t.Run("errors become nil", func(t *testing.T) {
		out := probe.Collect(ctx, "err", env, func(context.Context, *probe.Env) (*int, error) {
			v := 1
			return &v, errors.New("boom")
		})
		assert.Nil(t, out)
	})

	t.Run("panics become nil", func(t *testing.T) {
		out := probe.Collect(ctx, "panic", env, func(context.Context, *probe.Env) (*int, error) {
			var m map[string]int
			m["x"] = 1
			return nil, nil
		})
		assert.Nil(t, out)
	})
}
