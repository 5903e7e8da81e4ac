package fingerprint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/fingerprint"
	"github.com/stupside/prism/internal/host/sim"
)

func TestCompare(t *testing.T) {
	ctx := context.Background()
	b := fingerprint.NewBuilder(app.AllProbes(5))

	t.Run("no runs", func(t *testing.T) {
		r, err := fingerprint.Compare(nil)
		require.NoError(t, err)
		assert.True(t, r.Stable())
	})

	t.Run("stable host", func(t *testing.T) {
		h := sim.New()
		r, err := fingerprint.Compare([]*fingerprint.Fingerprint{b.Build(ctx, h), b.Build(ctx, h), b.Build(ctx, h)})
		require.NoError(t, err)
		assert.True(t, r.Stable())
		assert.Equal(t, 3, r.Runs)
		assert.Empty(t, r.Missing)
	})

	t.Run("a changed slot is reported", func(t *testing.T) {
		h := sim.New()
		first := b.Build(ctx, h)
		h.InstalledFonts = map[string]bool{"Verdana": true}
		second := b.Build(ctx, h)

		r, err := fingerprint.Compare([]*fingerprint.Fingerprint{first, second})
		require.NoError(t, err)
		assert.False(t, r.Stable())
		assert.Equal(t, []string{"fonts"}, r.Unstable)
	})

	t.Run("noise empties canvas", func(t *testing.T) {
		h := sim.New()
		h.Noise = true
		r, err := fingerprint.Compare([]*fingerprint.Fingerprint{b.Build(ctx, h), b.Build(ctx, h)})
		require.NoError(t, err)
		assert.Contains(t, r.Missing, "canvas")
		// webgl image hash moves with the noise
		assert.Equal(t, []string{"webgl"}, r.Unstable)
	})
}

func TestDigests(t *testing.T) {
	fp := &fingerprint.Fingerprint{}
	d, err := fp.Digests()
	require.NoError(t, err)
	assert.Len(t, d, 5)
	for name, digest := range d {
		assert.Equal(t, d["window"], digest, name)
	}
}
