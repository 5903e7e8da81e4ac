package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/stupside/prism/internal/capability"
)

type audioNode struct {
	kind       string
	oscillator capability.OscillatorOptions
	compressor capability.CompressorOptions
	started    bool
}

// offlineAudio renders a triangle oscillator through a static gain that
// stands in for the compressor.
type offlineAudio struct {
	*released

	host *Host
	opts capability.OfflineAudioOptions

	mu       sync.Mutex
	nodes    []*audioNode
	edges    map[capability.AudioNode]capability.AudioNode
	complete func(capability.RenderedBuffer)
	rendered bool
}

func (h *Host) NewOfflineAudio(_ context.Context, opts capability.OfflineAudioOptions) (capability.OfflineAudio, error) {
	if opts.Channels <= 0 || opts.Length <= 0 || opts.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid offline audio options %+v", opts)
	}
	if err := h.acquire(OfflineAudio); err != nil {
		return nil, err
	}
	return &offlineAudio{
		released: &released{host: h},
		host:     h,
		opts:     opts,
		// node 0 is the destination
		nodes: []*audioNode{{kind: "destination"}},
		edges: make(map[capability.AudioNode]capability.AudioNode),
	}, nil
}

func (a *offlineAudio) add(n *audioNode) capability.AudioNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes = append(a.nodes, n)
	return capability.AudioNode(len(a.nodes) - 1)
}

func (a *offlineAudio) node(id capability.AudioNode) (*audioNode, error) {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil, fmt.Errorf("unknown audio node %d", id)
	}
	return a.nodes[id], nil
}

func (a *offlineAudio) CreateOscillator(_ context.Context, opts capability.OscillatorOptions) (capability.AudioNode, error) {
	return a.add(&audioNode{kind: "oscillator", oscillator: opts}), nil
}

func (a *offlineAudio) CreateCompressor(_ context.Context, opts capability.CompressorOptions) (capability.AudioNode, error) {
	return a.add(&audioNode{kind: "compressor", compressor: opts}), nil
}

func (a *offlineAudio) Connect(_ context.Context, from, to capability.AudioNode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.node(from); err != nil {
		return err
	}
	if _, err := a.node(to); err != nil {
		return err
	}
	a.edges[from] = to
	return nil
}

func (a *offlineAudio) Start(_ context.Context, id capability.AudioNode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.node(id)
	if err != nil {
		return err
	}
	if n.kind != "oscillator" {
		return fmt.Errorf("node %d is not a source", id)
	}
	n.started = true
	return nil
}

func (a *offlineAudio) OnComplete(fn func(capability.RenderedBuffer)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.complete = fn
}

// StartRendering resolves immediately. Completion is delivered from another
// goroutine, either before this call returns or after it, depending on
// Host.CompleteBeforeStart.
func (a *offlineAudio) StartRendering(context.Context) error {
	a.mu.Lock()
	if a.rendered {
		a.mu.Unlock()
		return errors.New("rendering already started")
	}
	a.rendered = true
	buf := a.render()
	fn := a.complete
	a.mu.Unlock()

	if fn == nil || a.host.NeverComplete {
		return nil
	}
	if a.host.CompleteBeforeStart {
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn(buf)
		}()
		<-done
		return nil
	}
	go fn(buf)
	return nil
}

// render walks the graph from each started oscillator to the destination.
func (a *offlineAudio) render() *renderedBuffer {
	samples := make([]float32, a.opts.Length)
	for id, n := range a.nodes {
		if n.kind != "oscillator" || !n.started {
			continue
		}
		gain, ok := a.pathGain(capability.AudioNode(id))
		if !ok {
			continue
		}
		for i := range samples {
			t := float64(i) * n.oscillator.Frequency / a.opts.SampleRate
			samples[i] += float32(gain * triangle(t))
		}
	}
	return &renderedBuffer{channels: a.opts.Channels, samples: samples, broken: a.host.BrokenChannel}
}

func (a *offlineAudio) pathGain(from capability.AudioNode) (float64, bool) {
	gain := 1.0
	for hops := 0; hops <= len(a.nodes); hops++ {
		if from == capability.Destination {
			return gain, true
		}
		if c := a.nodes[from]; c.kind == "compressor" {
			gain *= math.Pow(10, c.compressor.Threshold/(20*c.compressor.Ratio))
		}
		next, ok := a.edges[from]
		if !ok {
			return 0, false
		}
		from = next
	}
	return 0, false
}

func triangle(t float64) float64 {
	frac := t - math.Floor(t)
	return 4*math.Abs(frac-0.5) - 1
}

type renderedBuffer struct {
	channels int
	samples  []float32
	broken   bool
}

func (b *renderedBuffer) ChannelData(channel int) ([]float32, error) {
	if b.broken {
		return nil, errors.New("channel data detached")
	}
	if channel < 0 || channel >= b.channels {
		return nil, fmt.Errorf("channel %d out of range", channel)
	}
	return b.samples, nil
}

type mediaElement struct {
	*released

	host *Host
}

func (h *Host) NewMediaElement(_ context.Context, tag string) (capability.MediaElement, error) {
	if tag != "audio" && tag != "video" {
		return nil, fmt.Errorf("unknown media tag %q", tag)
	}
	if err := h.acquire(MediaElement); err != nil {
		return nil, err
	}
	return &mediaElement{released: &released{host: h}, host: h}, nil
}

func (m *mediaElement) CanPlayType(_ context.Context, mime string) (string, error) {
	return m.host.CanPlay[mime], nil
}
