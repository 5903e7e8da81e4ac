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

// panickyHost wraps the simulated host with hooks that panic in chosen calls.
type panickyHost struct {
	*sim.Host
	precision   bool
	extensions  bool
	permissions map[string]bool
}

func (h *panickyHost) NewGLContext(ctx context.Context) (capability.GLContext, error) {
	gl, err := h.Host.NewGLContext(ctx)
	if err != nil {
		return nil, err
	}
	return &panickyGL{GLContext: gl, host: h}, nil
}

func (h *panickyHost) Permissions(ctx context.Context) (capability.PermissionService, error) {
	svc, err := h.Host.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	return &panickyPermissions{PermissionService: svc, fail: h.permissions}, nil
}

type panickyGL struct {
	capability.GLContext
	host *panickyHost
}

func (g *panickyGL) ShaderPrecision(ctx context.Context, shader, precision capability.GLenum) (capability.PrecisionFormat, error) {
	if g.host.precision {
		panic("precision format lost")
	}
	return g.GLContext.ShaderPrecision(ctx, shader, precision)
}

func (g *panickyGL) SupportedExtensions(ctx context.Context) ([]string, error) {
	if g.host.extensions {
		panic("extension list lost")
	}
	return g.GLContext.SupportedExtensions(ctx)
}

type panickyPermissions struct {
	capability.PermissionService
	fail map[string]bool
}

func (p *panickyPermissions) Query(ctx context.Context, name string) (capability.PermissionState, error) {
	if p.fail[name] {
		panic("query crashed: " + name)
	}
	return p.PermissionService.Query(ctx, name)
}

func TestReadWebGL_PanickingSubReadings(t *testing.T) {
	ctx := context.Background()

	t.Run("shader precision", func(t *testing.T) {
		h := &panickyHost{Host: sim.New(), precision: true}

		gl := probe.Collect(ctx, "webgl", probe.NewEnv(ctx, h), probe.ReadWebGL)
		require.NotNil(t, gl)
		assert.Nil(t, gl.ShaderPrecision)
		assert.NotNil(t, gl.Renderer)
		assert.NotNil(t, gl.Parameters)
		assert.NotNil(t, gl.ImageHash)
		assert.NotEmpty(t, gl.SupportedExtensions)
		assert.Zero(t, h.Live(), "contexts are released after the panic")
	})

	t.Run("extension list", func(t *testing.T) {
		h := &panickyHost{Host: sim.New(), extensions: true}

		gl := probe.Collect(ctx, "webgl", probe.NewEnv(ctx, h), probe.ReadWebGL)
		require.NotNil(t, gl)
		assert.Nil(t, gl.SupportedExtensions)
		assert.NotNil(t, gl.ShaderPrecision)
		assert.NotNil(t, gl.Parameters)
	})
}

func TestReadPermissions_PanickingQuery(t *testing.T) {
	ctx := context.Background()
	h := &panickyHost{Host: sim.New(), permissions: map[string]bool{"midi": true}}

	p := probe.Collect(ctx, "permissions", probe.NewEnv(ctx, h), probe.ReadPermissions)
	require.NotNil(t, p)

	for _, name := range probe.PermissionNames() {
		if name == "midi" {
			assert.Equal(t, capability.PermissionUnavailable, p.State(name))
			continue
		}
		assert.Equal(t, capability.PermissionPrompt, p.State(name), name)
	}
}

func TestReadWindow_PanickingPermissionQuery(t *testing.T) {
	ctx := context.Background()
	h := &panickyHost{Host: sim.New(), permissions: map[string]bool{"midi": true}}

	w := probe.Collect(ctx, "window", probe.NewEnv(ctx, h), probe.ReadWindow)
	require.NotNil(t, w)
	require.NotNil(t, w.Navigator.Permissions)
	assert.Equal(t, capability.PermissionUnavailable, w.Navigator.Permissions.MIDI)
	assert.Equal(t, capability.PermissionPrompt, w.Navigator.Permissions.State("camera"))
}

// releaseWatch records the context state each released surface saw.
type releaseWatch struct {
	*sim.Host
	errs []error
}

func (h *releaseWatch) NewSurface2D(ctx context.Context) (capability.Surface2D, error) {
	s, err := h.Host.NewSurface2D(ctx)
	if err != nil {
		return nil, err
	}
	return &watchedSurface{Surface2D: s, host: h}, nil
}

type watchedSurface struct {
	capability.Surface2D
	host *releaseWatch
}

func (s *watchedSurface) Release(ctx context.Context) error {
	s.host.errs = append(s.host.errs, ctx.Err())
	return s.Surface2D.Release(ctx)
}

func TestRelease_OutlivesRunContext(t *testing.T) {
	h := &releaseWatch{Host: sim.New()}
	env := probe.NewEnv(context.Background(), h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe.Collect(ctx, "canvas", env, probe.ReadCanvas)

	require.NotEmpty(t, h.errs)
	for _, err := range h.errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, h.Live())
}
