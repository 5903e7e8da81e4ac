package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stupside/prism/internal/capability"
)

func TestCallExpr(t *testing.T) {
	expr, err := callExpr("glParam", 3, capability.Renderer)
	require.NoError(t, err)
	assert.Equal(t, "window.__prism.glParam(3,7937)", expr)

	expr, err = callExpr("textStyle", 1, "font-family", `"Arial",monospace`)
	require.NoError(t, err)
	assert.Equal(t, `window.__prism.textStyle(1,"font-family","\"Arial\",monospace")`, expr)

	expr, err = callExpr("surface2d")
	require.NoError(t, err)
	assert.Equal(t, "window.__prism.surface2d()", expr)

	_, err = callExpr("bad", func() {})
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	err := classify("gl", errors.New(`exception "Uncaught" (0:0): Error: prism unsupported: webgl2`))
	assert.ErrorIs(t, err, capability.ErrUnsupported)

	err = classify("glLines", errors.New("prism shader: syntax error"))
	assert.NotErrorIs(t, err, capability.ErrUnsupported)
	assert.ErrorContains(t, err, "glLines")
}

func TestCompletions(t *testing.T) {
	defer goleak.VerifyNone(t)

	buf := &renderedBuffer{data: [][]float32{{0.5, -0.25}}}

	t.Run("registered first", func(t *testing.T) {
		c := newCompletions()
		got := make(chan capability.RenderedBuffer, 1)
		c.register(1, func(b capability.RenderedBuffer) { got <- b })
		c.deliver(1, buf)
		assert.Same(t, buf, (<-got).(*renderedBuffer))
	})

	t.Run("delivered first", func(t *testing.T) {
		c := newCompletions()
		c.deliver(2, buf)
		got := make(chan capability.RenderedBuffer, 1)
		c.register(2, func(b capability.RenderedBuffer) { got <- b })
		assert.Same(t, buf, (<-got).(*renderedBuffer))
	})

	t.Run("other ids stay pending", func(t *testing.T) {
		c := newCompletions()
		fired := make(chan struct{}, 1)
		c.register(3, func(capability.RenderedBuffer) { fired <- struct{}{} })
		c.deliver(4, buf)
		select {
		case <-fired:
			t.Fatal("callback fired for another graph")
		case <-time.After(20 * time.Millisecond):
		}
		c.forget(3)
		c.forget(4)
		assert.Empty(t, c.waiters)
		assert.Empty(t, c.early)
	})

	t.Run("late delivery after release is dropped", func(t *testing.T) {
		c := newCompletions()
		fired := make(chan struct{}, 1)
		c.register(5, func(capability.RenderedBuffer) { fired <- struct{}{} })
		c.forget(5)
		c.deliver(5, buf)
		select {
		case <-fired:
			t.Fatal("callback fired after release")
		case <-time.After(20 * time.Millisecond):
		}
		assert.Empty(t, c.waiters)
		assert.Empty(t, c.early)
		assert.Empty(t, c.forgotten)
	})
}

func TestRenderedBuffer(t *testing.T) {
	b := &renderedBuffer{data: [][]float32{{1, 2}}}
	data, err := b.ChannelData(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, data)

	_, err = b.ChannelData(1)
	assert.Error(t, err)

	_, err = (&renderedBuffer{err: "detached buffer"}).ChannelData(0)
	assert.EqualError(t, err, "detached buffer")
}

func TestReading(t *testing.T) {
	ua, err := reading[string]{OK: true, Value: "Mozilla"}.get("userAgent")
	require.NoError(t, err)
	assert.Equal(t, "Mozilla", ua)

	_, err = reading[string]{Err: "SecurityError"}.get("userAgent")
	assert.ErrorContains(t, err, "SecurityError")

	_, err = reading[[]string]{}.get("gamepads")
	assert.ErrorIs(t, err, capability.ErrUnsupported)

	n := &navigatorSnapshot{}
	_, err = n.Connection()
	assert.ErrorIs(t, err, capability.ErrUnsupported)
}

func TestPageServer(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := newPageServer()
	require.NoError(t, err)

	u := s.URL()
	assert.Equal(t, "127.0.0.1", u.Hostname())

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}

	resp, err := client.Get(u.String())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<body>")

	resp, err = client.Get(u.JoinPath("favicon.ico").String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func TestNewPersona(t *testing.T) {
	for seed := range uint64(50) {
		p := NewPersona(rand.New(rand.NewPCG(seed, seed)))

		assert.Contains(t, p.UserAgent, "Chrome/"+p.FullVersionList[1][1])
		assert.Equal(t, p.Brands[1][1], p.FullVersionList[1][1][:3])
		assert.NotEmpty(t, p.Languages)
		assert.True(t, strings.HasPrefix(p.AcceptLanguage, p.Languages[0]))
		assert.Positive(t, p.DeviceScaleFactor)

		switch p.NavigatorPlatform {
		case "MacIntel":
			assert.Contains(t, p.UserAgent, "Macintosh")
			assert.Contains(t, p.WebGLRenderer, "Apple")
		case "Win32":
			assert.Contains(t, p.UserAgent, "Windows")
			assert.Contains(t, p.WebGLRenderer, "Direct3D11")
		default:
			assert.Contains(t, p.UserAgent, "Linux")
		}
	}
}

func TestPageScript(t *testing.T) {
	plain := pageScript(nil, false, 0)
	assert.Equal(t, prismJS, plain)

	p := &Persona{WebGLVendor: `Google Inc. (Apple)`, WebGLRenderer: `ANGLE (Apple, "M1")`}
	js := pageScript(p, true, 42)
	assert.Contains(t, js, `var renderer = "ANGLE (Apple, \"M1\")";`)
	assert.Contains(t, js, "(42 >>> 0)")
	assert.NotContains(t, js, "{{")
	assert.True(t, strings.HasSuffix(js, prismJS), "registry loads last")
}

func TestWriteRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	live := 0
	rec := debugRecord{
		Seq:         3,
		Label:       "built",
		At:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Present:     []string{"canvas", "fonts"},
		LiveObjects: &live,
	}

	prefix, err := writeRecord(dir, rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "03-built"), prefix)

	b, err := os.ReadFile(prefix + ".json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "built", got["label"])
	assert.Equal(t, []any{"canvas", "fonts"}, got["present"])
	assert.Equal(t, float64(0), got["liveObjects"], "a drained registry is still recorded")
	assert.NotContains(t, got, "userAgent")
}
