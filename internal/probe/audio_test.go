package probe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stupside/prism/internal/capability"
	"github.com/stupside/prism/internal/host/sim"
	"github.com/stupside/prism/internal/probe"
)

func TestRenderHash(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	t.Run("completion after render start", func(t *testing.T) {
		h := sim.New()
		sum, err := probe.RenderHash(ctx, h)
		require.NoError(t, err)
		assert.Greater(t, sum, float32(0))
		assert.Zero(t, h.Live())
	})

	t.Run("completion before render start resolves", func(t *testing.T) {
		late, err := probe.RenderHash(ctx, sim.New())
		require.NoError(t, err)

		h := sim.New()
		h.CompleteBeforeStart = true
		early, err := probe.RenderHash(ctx, h)
		require.NoError(t, err)

		assert.Equal(t, late, early)
	})

	t.Run("repeatable", func(t *testing.T) {
		a, err := probe.RenderHash(ctx, sim.New())
		require.NoError(t, err)
		b, err := probe.RenderHash(ctx, sim.New())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("stalled render ends with the context", func(t *testing.T) {
		h := sim.New()
		h.NeverComplete = true

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := probe.RenderHash(ctx, h)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, h.Live())
	})

	t.Run("unreadable channel", func(t *testing.T) {
		h := sim.New()
		h.BrokenChannel = true

		_, err := probe.RenderHash(ctx, h)
		assert.Error(t, err)
	})
}

func TestReadAudio(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	t.Run("hash and formats", func(t *testing.T) {
		a, err := probe.ReadAudio(ctx, newEnv(t, sim.New()))
		require.NoError(t, err)
		require.NotNil(t, a.Hash)
		require.NotNil(t, a.Formats)
		assert.True(t, a.Formats.AAC)
		assert.True(t, a.Formats.WebMOpus)
		assert.False(t, a.Formats.MP4, `"maybe" is not "probably"`)
	})

	t.Run("formats only", func(t *testing.T) {
		h := sim.New().Without(sim.OfflineAudio)

		a, err := probe.ReadAudio(ctx, newEnv(t, h))
		require.NoError(t, err)
		assert.Nil(t, a.Hash)
		assert.NotNil(t, a.Formats)
	})

	t.Run("hash only", func(t *testing.T) {
		h := sim.New().Without(sim.MediaElement)

		a, err := probe.ReadAudio(ctx, newEnv(t, h))
		require.NoError(t, err)
		assert.NotNil(t, a.Hash)
		assert.Nil(t, a.Formats)
	})

	t.Run("neither", func(t *testing.T) {
		h := sim.New().Without(sim.OfflineAudio, sim.MediaElement)

		a, err := probe.ReadAudio(ctx, newEnv(t, h))
		assert.Nil(t, a)
		assert.Error(t, err)
	})
}

func TestReadAudioFormats(t *testing.T) {
	h := sim.New()
	h.CanPlay = map[string]string{`audio/ogg; codecs="opus"`: "probably"}

	f, err := probe.ReadAudioFormats(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, probe.AudioFormats{OggOpus: true}, f)
}

func TestAudioOptions(t *testing.T) {
	assert.Equal(t, capability.OfflineAudioOptions{Channels: 1, Length: 5000, SampleRate: 44000}, probe.AudioOptions)
}
