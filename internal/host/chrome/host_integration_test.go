package chrome_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/fingerprint"
	"github.com/stupside/prism/internal/host/chrome"
)

// chromePath finds a local Chrome binary, honouring PRISM_CHROME first.
func chromePath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in short mode")
	}
	if p := os.Getenv("PRISM_CHROME"); p != "" {
		return p
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no chrome binary found")
	return ""
}

func openHost(t *testing.T, emu app.EmulationConfig) *chrome.Host {
	t.Helper()
	cfg := app.BrowserConfig{
		Timeout:      60 * time.Second,
		Headless:     true,
		NoSandbox:    true,
		ChromePath:   chromePath(t),
		WindowWidth:  1280,
		WindowHeight: 800,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	h, err := chrome.Open(ctx, cfg, emu)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func build(t *testing.T, h *chrome.Host) *fingerprint.Fingerprint {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return fingerprint.NewBuilder(app.AllProbes(3)).Build(ctx, h)
}

func TestHost_BuildTwice(t *testing.T) {
	h := openHost(t, app.EmulationConfig{Persona: app.PersonaNone})

	first := build(t, h)
	second := build(t, h)

	for _, fp := range []*fingerprint.Fingerprint{first, second} {
		require.NotNil(t, fp.Canvas)
		require.NotNil(t, fp.WebGL)
		require.NotNil(t, fp.Audio)
		require.NotNil(t, fp.Fonts)
		assert.NotZero(t, fp.Canvas.GeometryHash)
		assert.NotZero(t, fp.Canvas.TextHash)
	}

	if diff := cmp.Diff(*first.Canvas, *second.Canvas); diff != "" {
		t.Errorf("canvas differs between builds (-first +second):\n%s", diff)
	}
}

func TestHost_NoiseDropsCanvas(t *testing.T) {
	h := openHost(t, app.EmulationConfig{Persona: app.PersonaNone, Noise: true})

	fp := build(t, h)
	assert.Nil(t, fp.Canvas, "noisy encodings never agree")
	assert.NotNil(t, fp.WebGL, "other slots are unaffected")
}
