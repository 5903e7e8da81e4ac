package fingerprint_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/fingerprint"
	"github.com/stupside/prism/internal/host/sim"
	"github.com/stupside/prism/internal/probe"
)

func TestBuild_AllPresent(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := sim.New()
	fp := fingerprint.NewBuilder(app.AllProbes(5)).Build(context.Background(), h)

	assert.Equal(t, []string{"window", "audio", "canvas", "webgl", "fonts"}, fp.Present())
	assert.Zero(t, h.Live(), "every host object is released")
}

func TestBuild_AllFailing(t *testing.T) {
	h := sim.New().Without(
		sim.Surface2D, sim.GLContext, sim.OfflineAudio, sim.MediaElement,
		sim.TextElement, sim.Window, sim.Screen, sim.Navigator,
		sim.Permissions, sim.MediaDevices,
	)

	fp := fingerprint.NewBuilder(app.AllProbes(5)).Build(context.Background(), h)
	require.NotNil(t, fp)
	assert.Empty(t, fp.Present())

	data, err := json.Marshal(fp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"window":null,"audio":null,"canvas":null,"webgl":null,"fonts":null}`, string(data))

	id, err := fp.ID()
	require.NoError(t, err)
	assert.Len(t, id, 64)
}

func TestBuild_CanvasAndWebGLOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := sim.New().Without(sim.OfflineAudio, sim.MediaElement, sim.Permissions)
	// a render that would never complete must not be reached
	h.NeverComplete = true

	done := make(chan *fingerprint.Fingerprint, 1)
	go func() {
		done <- fingerprint.NewBuilder(app.AllProbes(1)).Build(context.Background(), h)
	}()

	var fp *fingerprint.Fingerprint
	select {
	case fp = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("build blocked on a missing capability")
	}

	assert.NotNil(t, fp.Canvas)
	assert.NotNil(t, fp.WebGL)
	assert.Nil(t, fp.Audio)
	require.NotNil(t, fp.Window)
	assert.Nil(t, fp.Window.Navigator.Permissions)
}

func TestBuild_SlotsMatchProbes(t *testing.T) {
	ctx := context.Background()

	// every combination of the five failure switches
	for mask := range 1 << 5 {
		h := sim.New()
		if mask&1 != 0 {
			h.Without(sim.Surface2D)
		}
		if mask&2 != 0 {
			h.Without(sim.GLContext)
		}
		if mask&4 != 0 {
			h.Without(sim.OfflineAudio, sim.MediaElement)
		}
		if mask&8 != 0 {
			h.Without(sim.TextElement)
		}
		if mask&16 != 0 {
			h.Without(sim.Screen)
		}

		fp := fingerprint.NewBuilder(app.AllProbes(3)).Build(ctx, h)
		require.NotNil(t, fp)

		env := probe.NewEnv(ctx, h)
		assertSlot(t, mask&1 != 0, fp.Canvas, probe.Collect(ctx, "canvas", env, probe.ReadCanvas))
		assertSlot(t, mask&2 != 0, fp.WebGL, probe.Collect(ctx, "webgl", env, probe.ReadWebGL))
		assertSlot(t, mask&4 != 0, fp.Audio, probe.Collect(ctx, "audio", env, probe.ReadAudio))
		assertSlot(t, mask&8 != 0, fp.Fonts, probe.Collect(ctx, "fonts", env, probe.ReadFonts))
		assertSlot(t, mask&16 != 0, fp.Window, probe.Collect(ctx, "window", env, probe.ReadWindow))
	}
}

func assertSlot[T any](t *testing.T, failed bool, got, direct *T) {
	t.Helper()
	if failed {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	if diff := cmp.Diff(direct, got); diff != "" {
		t.Errorf("slot differs from direct probe output (-direct +slot):\n%s", diff)
	}
}

func TestBuild_DisabledProbes(t *testing.T) {
	cfg := app.ProbesConfig{Concurrency: 2, Canvas: true}

	fp := fingerprint.NewBuilder(cfg).Build(context.Background(), sim.New())
	assert.Equal(t, []string{"canvas"}, fp.Present())
}

func TestBuild_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := sim.New()
	h.NeverComplete = true
	h.Without(sim.MediaElement)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fp := fingerprint.NewBuilder(app.AllProbes(5)).Build(ctx, h)
	assert.Nil(t, fp.Audio, "a stalled render becomes an empty slot")
	assert.NotNil(t, fp.Canvas)
}

func TestBuild_Repeatable(t *testing.T) {
	ctx := context.Background()
	b := fingerprint.NewBuilder(app.AllProbes(5))

	h := sim.New()
	a := b.Build(ctx, h)
	c := b.Build(ctx, h)

	idA, err := a.ID()
	require.NoError(t, err)
	idC, err := c.ID()
	require.NoError(t, err)
	assert.Equal(t, idA, idC)
}
