// Package chrome implements the capability host on a headless Chrome tab.
//
// Every capability object lives in a page-side registry installed before the
// probe page loads; the Go side holds integer handles and drives the registry
// through Runtime.evaluate. Audio completion is delivered back through a
// runtime binding.
package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/capability"
)

const (
	registry     = "window.__prism"
	audioBinding = "__prismAudioDone"
)

// Host is a browser tab exposing capability.Root. It is safe for concurrent
// use by several probes.
type Host struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	server      *pageServer
	persona     *Persona
	audio       *completions
	snapshotDir string
	snapshots   atomic.Int64
}

var _ capability.Root = (*Host)(nil)

// Open starts Chrome, applies the emulation settings and loads the probe
// page. The browser lives until Close, independently of ctx cancellation
// after Open returns.
func Open(ctx context.Context, cfg app.BrowserConfig, emu app.EmulationConfig) (*Host, error) {
	var persona *Persona
	if emu.Persona == app.PersonaRandom {
		persona = NewPersona(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		slog.DebugContext(ctx, "persona generated",
			"ua", persona.UserAgent,
			"platform", persona.Platform,
			"timezone", persona.TimezoneID,
			"screen", fmt.Sprintf("%dx%d@%g", persona.ScreenWidth, persona.ScreenHeight, persona.DeviceScaleFactor),
			"webgl", persona.WebGLRenderer,
			"hwConcurrency", persona.HardwareConcurrency,
		)
	}

	server, err := newPageServer()
	if err != nil {
		return nil, fmt.Errorf("starting page server: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOpts(cfg, persona)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	h := &Host{
		ctx:         taskCtx,
		cancel:      taskCancel,
		allocCancel: allocCancel,
		server:      server,
		persona:     persona,
		audio:       newCompletions(),
		snapshotDir: filepath.Join(".debug", fmt.Sprintf("prism-%d", time.Now().UnixMilli())),
	}

	chromedp.ListenTarget(taskCtx, h.listen)

	actions := []chromedp.Action{
		runtime.Enable(),
		runtime.AddBinding(audioBinding),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorDeny),
		injectPage(pageScript(persona, emu.Noise, rand.Uint32())),
	}
	if persona != nil {
		actions = append(actions, emulatePersona(persona))
	}
	actions = append(actions,
		chromedp.Navigate(server.URL().String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	// The navigation runs on the task context itself: a child context
	// would tear the target down when it is cancelled.
	navDone := make(chan error, 1)
	go func() {
		navDone <- chromedp.Run(taskCtx, actions...)
	}()

	select {
	case err = <-navDone:
	case <-time.After(cfg.Timeout):
		err = fmt.Errorf("loading probe page timed out after %s", cfg.Timeout)
	case <-ctx.Done():
		err = context.Cause(ctx)
	}
	if err != nil {
		h.Close()
		return nil, err
	}

	h.Snapshot("ready", nil)

	if protocol, product, _, _, _, err := browser.GetVersion().Do(cdp.WithExecutor(ctx, chromedp.FromContext(taskCtx).Browser)); err == nil {
		slog.InfoContext(ctx, "browser ready", "product", product, "protocol", protocol, "url", server.URL().String())
	} else {
		slog.DebugContext(ctx, "reading browser version", "error", err)
	}

	return h, nil
}

// Persona returns the applied persona, or nil when the browser runs as itself.
func (h *Host) Persona() *Persona { return h.persona }

// Close tears down the browser, the allocator and the page server.
func (h *Host) Close() {
	h.cancel()
	h.allocCancel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.server.Close(ctx); err != nil {
		slog.Debug("closing page server", "error", err)
	}
}

func (h *Host) listen(ev any) {
	e, ok := ev.(*runtime.EventBindingCalled)
	if !ok || e.Name != audioBinding {
		return
	}
	var msg audioMessage
	if err := json.Unmarshal([]byte(e.Payload), &msg); err != nil {
		slog.Debug("decoding audio completion", "error", err)
		return
	}
	h.audio.deliver(msg.ID, &renderedBuffer{data: msg.Data, err: msg.Error})
}

// call evaluates registry.fn(args...) and decodes the settled result into out.
func (h *Host) call(ctx context.Context, out any, fn string, args ...any) error {
	expr, err := callExpr(fn, args...)
	if err != nil {
		return err
	}
	return h.eval(ctx, fn, expr, out)
}

// eval runs expr on the tab with the caller's context, so cancelling ctx
// abandons the evaluation without touching the target.
func (h *Host) eval(ctx context.Context, fn, expr string, out any) error {
	c := chromedp.FromContext(h.ctx)
	if c == nil || c.Target == nil {
		return fmt.Errorf("%s: browser tab gone: %w", fn, capability.ErrUnsupported)
	}

	await := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true).WithSilent(true)
	}
	if err := chromedp.Evaluate(expr, out, await).Do(cdp.WithExecutor(ctx, c.Target)); err != nil {
		return classify(fn, err)
	}
	return nil
}

// callExpr renders a registry call with JSON-encoded arguments.
func callExpr(fn string, args ...any) (string, error) {
	enc := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encoding argument %d of %s: %w", i, fn, err)
		}
		enc[i] = string(b)
	}
	return registry + "." + fn + "(" + strings.Join(enc, ",") + ")", nil
}

// classify maps page-side "unsupported" exceptions onto ErrUnsupported.
func classify(fn string, err error) error {
	if strings.Contains(err.Error(), "prism unsupported") {
		return fmt.Errorf("%s: %w: %w", fn, capability.ErrUnsupported, err)
	}
	return fmt.Errorf("%s: %w", fn, err)
}

// handle is a page-side registry entry.
type handle struct {
	host *Host
	id   int
}

func (o handle) Release(ctx context.Context) error {
	var ok bool
	return o.host.call(ctx, &ok, "release", o.id)
}
