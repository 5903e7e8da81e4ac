package chrome

import (
	"context"
	"strings"

	"github.com/stupside/prism/internal/capability"
)

// surface buffers drawing calls and ships them with the next query, so a
// whole scene costs one round trip.
type surface struct {
	handle
	ops [][]any
}

func (h *Host) NewSurface2D(ctx context.Context) (capability.Surface2D, error) {
	var id int
	if err := h.call(ctx, &id, "surface2d"); err != nil {
		return nil, err
	}
	return &surface{handle: handle{host: h, id: id}}, nil
}

// query flushes pending ops and evaluates fn(id, args...) in one expression.
func (s *surface) query(ctx context.Context, out any, fn string, args ...any) error {
	call, err := callExpr(fn, append([]any{s.id}, args...)...)
	if err != nil {
		return err
	}
	if len(s.ops) > 0 {
		flush, err := callExpr("s2dBatch", s.id, s.ops)
		if err != nil {
			return err
		}
		call = strings.Join([]string{flush, call}, ",")
		s.ops = nil
	}
	return s.host.eval(ctx, fn, "("+call+")", out)
}

func (s *surface) op(name string, args ...any) {
	s.ops = append(s.ops, append([]any{name}, args...))
}

func (s *surface) Resize(ctx context.Context, width, height int) error {
	var ok bool
	return s.query(ctx, &ok, "s2dResize", width, height)
}

func (s *surface) Encode(ctx context.Context) (string, error) {
	var url string
	err := s.query(ctx, &url, "s2dEncode")
	return url, err
}

func (s *surface) IsPointInPath(ctx context.Context, x, y float64, rule capability.WindingRule) (bool, error) {
	var in bool
	err := s.query(ctx, &in, "s2dPointInPath", x, y, rule)
	return in, err
}

func (s *surface) Rect(x, y, w, h float64)     { s.op("rect", x, y, w, h) }
func (s *surface) FillRect(x, y, w, h float64) { s.op("fillRect", x, y, w, h) }
func (s *surface) BeginPath()                  { s.op("beginPath") }
func (s *surface) ClosePath()                  { s.op("closePath") }

func (s *surface) Arc(x, y, radius, start, end float64) {
	s.op("arc", x, y, radius, start, end)
}

func (s *surface) Fill(rule capability.WindingRule)   { s.op("fill", rule) }
func (s *surface) FillText(text string, x, y float64) { s.op("fillText", text, x, y) }
func (s *surface) SetFillStyle(style string)          { s.op("fillStyle", style) }
func (s *surface) SetFont(font string)                { s.op("font", font) }
func (s *surface) SetTextBaseline(baseline string)    { s.op("textBaseline", baseline) }
func (s *surface) SetCompositeOperation(op string)    { s.op("composite", op) }
