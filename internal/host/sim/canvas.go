package sim

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/stupside/prism/internal/capability"
)

type rect struct{ x, y, w, h float64 }

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

// surface records drawing calls; its raster is a digest of the call log.
type surface struct {
	*released

	host   *Host
	width  int
	height int
	ops    []string
	path   []rect
}

func (h *Host) NewSurface2D(context.Context) (capability.Surface2D, error) {
	if err := h.acquire(Surface2D); err != nil {
		return nil, err
	}
	return &surface{released: &released{host: h}, host: h, width: 300, height: 150}, nil
}

func (s *surface) record(format string, args ...any) {
	s.ops = append(s.ops, fmt.Sprintf(format, args...))
}

func (s *surface) Resize(_ context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	s.width, s.height = width, height
	s.ops = s.ops[:0]
	s.path = s.path[:0]
	return nil
}

func (s *surface) Encode(context.Context) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n%s", s.width, s.height, strings.Join(s.ops, "\n"))
	if s.host.Noise {
		fmt.Fprintf(h, "\nnoise:%d", s.host.noise.Add(1))
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func (s *surface) IsPointInPath(_ context.Context, x, y float64, rule capability.WindingRule) (bool, error) {
	n := 0
	for _, r := range s.path {
		if r.contains(x, y) {
			n++
		}
	}
	if rule == capability.EvenOdd && !s.host.IgnoreWinding {
		return n%2 == 1, nil
	}
	return n > 0, nil
}

func (s *surface) Rect(x, y, w, h float64) {
	s.path = append(s.path, rect{x, y, w, h})
	s.record("rect %g %g %g %g", x, y, w, h)
}

func (s *surface) FillRect(x, y, w, h float64) { s.record("fillRect %g %g %g %g", x, y, w, h) }

func (s *surface) BeginPath() {
	s.path = s.path[:0]
	s.record("beginPath")
}

func (s *surface) ClosePath() { s.record("closePath") }

func (s *surface) Arc(x, y, radius, start, end float64) {
	s.record("arc %g %g %g %g %g", x, y, radius, start, end)
}

func (s *surface) Fill(rule capability.WindingRule) { s.record("fill %s", rule) }

func (s *surface) FillText(text string, x, y float64) { s.record("fillText %q %g %g", text, x, y) }

func (s *surface) SetFillStyle(style string) { s.record("fillStyle %s", style) }

func (s *surface) SetFont(font string) { s.record("font %s", font) }

func (s *surface) SetTextBaseline(baseline string) { s.record("textBaseline %s", baseline) }

func (s *surface) SetCompositeOperation(op string) { s.record("composite %s", op) }
