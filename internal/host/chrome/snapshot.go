package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// debugRecord describes the probe page at one point of a run.
type debugRecord struct {
	Seq         int64     `json:"seq"`
	Label       string    `json:"label"`
	At          time.Time `json:"at"`
	Present     []string  `json:"present,omitempty"`
	LiveObjects *int      `json:"liveObjects,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Renderer    string    `json:"renderer,omitempty"`
}

// Snapshot records which fingerprint slots were filled at label, along with
// the page's outstanding registry objects and a screenshot. It only writes
// when debug logging is on.
func (h *Host) Snapshot(label string, present []string) {
	ctx := h.ctx
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	rec := debugRecord{
		Seq:     h.snapshots.Add(1),
		Label:   label,
		At:      time.Now(),
		Present: present,
	}
	if h.persona != nil {
		rec.UserAgent = h.persona.UserAgent
		rec.Renderer = h.persona.WebGLRenderer
	}

	evalCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var live int
	if err := h.call(evalCtx, &live, "live"); err != nil {
		slog.DebugContext(ctx, "snapshot: counting registry objects", "label", label, "error", err)
	} else {
		rec.LiveObjects = &live
	}

	prefix, err := writeRecord(h.snapshotDir, rec)
	if err != nil {
		slog.DebugContext(ctx, "snapshot: writing record", "label", label, "error", err)
		return
	}

	var png []byte
	if c := chromedp.FromContext(ctx); c == nil || c.Target == nil {
		slog.DebugContext(ctx, "snapshot: no tab to capture", "label", label)
	} else if err := chromedp.CaptureScreenshot(&png).Do(cdp.WithExecutor(evalCtx, c.Target)); err != nil {
		slog.DebugContext(ctx, "snapshot: screenshot failed", "label", label, "error", err)
	} else if err := os.WriteFile(prefix+".png", png, 0o644); err != nil {
		slog.DebugContext(ctx, "snapshot: write png failed", "error", err)
	}

	slog.DebugContext(ctx, "snapshot: saved", "label", label, "path", prefix, "present", present)
}

// writeRecord stores rec as <dir>/<seq>-<label>.json and returns the path
// prefix for companion files.
func writeRecord(dir string, rec debugRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	prefix := filepath.Join(dir, fmt.Sprintf("%02d-%s", rec.Seq, rec.Label))
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	if err := os.WriteFile(prefix+".json", b, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return prefix, nil
}
