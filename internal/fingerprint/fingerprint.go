// Package fingerprint runs the probes against a host and assembles their
// records into one aggregate.
package fingerprint

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stupside/prism/internal/app"
	"github.com/stupside/prism/internal/canon"
	"github.com/stupside/prism/internal/capability"
	"github.com/stupside/prism/internal/probe"
)

// Fingerprint is the aggregate record. Every slot is optional; a nil slot
// means its probe produced nothing or was disabled.
type Fingerprint struct {
	Window *probe.Window `json:"window"`
	Audio  *probe.Audio  `json:"audio"`
	Canvas *probe.Canvas `json:"canvas"`
	WebGL  *probe.WebGL  `json:"webgl"`
	Fonts  *probe.Fonts  `json:"fonts"`
}

// Builder runs the enabled probes.
type Builder struct {
	probes app.ProbesConfig
}

// NewBuilder creates a Builder from the probe settings.
func NewBuilder(cfg app.ProbesConfig) *Builder {
	return &Builder{probes: cfg}
}

// Build calls every enabled probe once, concurrently up to the configured
// limit, and waits for all of them. It cannot fail: probe failures leave
// their slot nil. Cancelling ctx turns probes still waiting on the host into
// empty slots.
func (b *Builder) Build(ctx context.Context, root capability.Root) *Fingerprint {
	env := probe.NewEnv(ctx, root)

	var fp Fingerprint
	var g errgroup.Group
	g.SetLimit(max(b.probes.Concurrency, 1))

	// each closure owns exactly one slot
	if b.probes.Window {
		g.Go(func() error { fp.Window = probe.Collect(ctx, "window", env, probe.ReadWindow); return nil })
	}
	if b.probes.Audio {
		g.Go(func() error { fp.Audio = probe.Collect(ctx, "audio", env, probe.ReadAudio); return nil })
	}
	if b.probes.Canvas {
		g.Go(func() error { fp.Canvas = probe.Collect(ctx, "canvas", env, probe.ReadCanvas); return nil })
	}
	if b.probes.WebGL {
		g.Go(func() error { fp.WebGL = probe.Collect(ctx, "webgl", env, probe.ReadWebGL); return nil })
	}
	if b.probes.Fonts {
		g.Go(func() error { fp.Fonts = probe.Collect(ctx, "fonts", env, probe.ReadFonts); return nil })
	}
	_ = g.Wait()

	slog.DebugContext(ctx, "fingerprint assembled", "present", fp.Present())
	return &fp
}

// Slot is one named aggregate slot.
type Slot struct {
	Name    string
	Present bool
	value   any
}

// Slots lists the aggregate slots in a fixed order.
func (f *Fingerprint) Slots() []Slot {
	return []Slot{
		{"window", f.Window != nil, f.Window},
		{"audio", f.Audio != nil, f.Audio},
		{"canvas", f.Canvas != nil, f.Canvas},
		{"webgl", f.WebGL != nil, f.WebGL},
		{"fonts", f.Fonts != nil, f.Fonts},
	}
}

// Present returns the names of the filled slots.
func (f *Fingerprint) Present() []string {
	var out []string
	for _, s := range f.Slots() {
		if s.Present {
			out = append(out, s.Name)
		}
	}
	return out
}

// ID is the hex SHA-256 of the aggregate's JSON encoding. It identifies the
// readings, not a secret.
func (f *Fingerprint) ID() (string, error) {
	return canon.Digest(f)
}

// Digests maps each slot name to the digest of its record. Empty slots
// digest as JSON null.
func (f *Fingerprint) Digests() (map[string]string, error) {
	out := make(map[string]string, 5)
	for _, s := range f.Slots() {
		d, err := canon.Digest(s.value)
		if err != nil {
			return nil, fmt.Errorf("digesting %s: %w", s.Name, err)
		}
		out[s.Name] = d
	}
	return out, nil
}
