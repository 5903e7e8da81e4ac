package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stupside/prism/internal/capability"
)

type audioMessage struct {
	ID    int         `json:"id"`
	Data  [][]float32 `json:"data"`
	Error string      `json:"error"`
}

type renderedBuffer struct {
	data [][]float32
	err  string
}

func (b *renderedBuffer) ChannelData(channel int) ([]float32, error) {
	if b.err != "" {
		return nil, errors.New(b.err)
	}
	if channel < 0 || channel >= len(b.data) {
		return nil, fmt.Errorf("channel %d out of range (%d channels)", channel, len(b.data))
	}
	return b.data[channel], nil
}

// completions pairs render-complete notifications with their callbacks. A
// notification may arrive before its callback is registered; it is held
// until then. A notification for a released graph is dropped. Callbacks run
// on their own goroutine.
type completions struct {
	mu        sync.Mutex
	waiters   map[int]func(capability.RenderedBuffer)
	early     map[int]capability.RenderedBuffer
	forgotten map[int]struct{}
}

func newCompletions() *completions {
	return &completions{
		waiters:   make(map[int]func(capability.RenderedBuffer)),
		early:     make(map[int]capability.RenderedBuffer),
		forgotten: make(map[int]struct{}),
	}
}

func (c *completions) register(id int, fn func(capability.RenderedBuffer)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf, ok := c.early[id]; ok {
		delete(c.early, id)
		go fn(buf)
		return
	}
	c.waiters[id] = fn
}

func (c *completions) deliver(id int, buf capability.RenderedBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fn, ok := c.waiters[id]; ok {
		delete(c.waiters, id)
		go fn(buf)
		return
	}
	if _, ok := c.forgotten[id]; ok {
		delete(c.forgotten, id)
		return
	}
	c.early[id] = buf
}

func (c *completions) forget(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.early[id]; ok {
		delete(c.early, id)
		return
	}
	delete(c.waiters, id)
	c.forgotten[id] = struct{}{}
}

type offlineAudio struct {
	handle
}

func (h *Host) NewOfflineAudio(ctx context.Context, opts capability.OfflineAudioOptions) (capability.OfflineAudio, error) {
	var id int
	if err := h.call(ctx, &id, "audio", opts); err != nil {
		return nil, err
	}
	return &offlineAudio{handle{host: h, id: id}}, nil
}

func (a *offlineAudio) CreateOscillator(ctx context.Context, opts capability.OscillatorOptions) (capability.AudioNode, error) {
	var n int
	err := a.host.call(ctx, &n, "audioOsc", a.id, opts)
	return capability.AudioNode(n), err
}

func (a *offlineAudio) CreateCompressor(ctx context.Context, opts capability.CompressorOptions) (capability.AudioNode, error) {
	var n int
	err := a.host.call(ctx, &n, "audioComp", a.id, opts)
	return capability.AudioNode(n), err
}

func (a *offlineAudio) Connect(ctx context.Context, from, to capability.AudioNode) error {
	var ok bool
	return a.host.call(ctx, &ok, "audioConnect", a.id, from, to)
}

func (a *offlineAudio) Start(ctx context.Context, node capability.AudioNode) error {
	var ok bool
	return a.host.call(ctx, &ok, "audioStart", a.id, node)
}

func (a *offlineAudio) OnComplete(fn func(capability.RenderedBuffer)) {
	a.host.audio.register(a.id, fn)
}

func (a *offlineAudio) StartRendering(ctx context.Context) error {
	var ok bool
	return a.host.call(ctx, &ok, "audioRender", a.id)
}

func (a *offlineAudio) Release(ctx context.Context) error {
	a.host.audio.forget(a.id)
	return a.handle.Release(ctx)
}

type mediaElement struct {
	handle
}

func (h *Host) NewMediaElement(ctx context.Context, tag string) (capability.MediaElement, error) {
	var id int
	if err := h.call(ctx, &id, "media", tag); err != nil {
		return nil, err
	}
	return &mediaElement{handle{host: h, id: id}}, nil
}

func (m *mediaElement) CanPlayType(ctx context.Context, mime string) (string, error) {
	var s string
	err := m.host.call(ctx, &s, "canPlay", m.id, mime)
	return s, err
}
