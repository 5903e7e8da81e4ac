package probe

import (
	"context"
	"fmt"
	"math"

	"github.com/stupside/prism/internal/canon"
	"github.com/stupside/prism/internal/capability"
)

// Canvas is the 2D rasterization record.
type Canvas struct {
	// Winding reports whether path containment honours the even-odd rule.
	Winding      bool   `json:"winding"`
	GeometryHash uint64 `json:"geometryHash"`
	TextHash     uint64 `json:"textHash"`
}

// CanvasText is drawn twice per run; it mixes Latin glyphs with an emoji.
const CanvasText = "Cwm fjordbank gly \U0001F60D"

// ReadCanvas renders the text and geometry scenes on a private surface.
// The text scene is encoded twice and rejected when the encodings differ.
func ReadCanvas(ctx context.Context, env *Env) (*Canvas, error) {
	s, err := env.Root.NewSurface2D(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating surface: %w", err)
	}
	defer release(ctx, "surface2d", s)

	winding, err := evenOddWinding(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("testing winding: %w", err)
	}

	if err := drawTextScene(ctx, s); err != nil {
		return nil, fmt.Errorf("drawing text scene: %w", err)
	}
	text, err := s.Encode(ctx)
	if err != nil {
		return nil, fmt.Errorf("encoding text scene: %w", err)
	}
	again, err := s.Encode(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-encoding text scene: %w", err)
	}
	if text != again {
		return nil, fmt.Errorf("text scene: %w", ErrNonDeterministic)
	}

	if err := drawGeometryScene(ctx, s); err != nil {
		return nil, fmt.Errorf("drawing geometry scene: %w", err)
	}
	geometry, err := s.Encode(ctx)
	if err != nil {
		return nil, fmt.Errorf("encoding geometry scene: %w", err)
	}

	return &Canvas{
		Winding:      winding,
		GeometryHash: canon.Hash64(geometry),
		TextHash:     canon.Hash64(text),
	}, nil
}

// evenOddWinding nests two rectangles and probes the inner one. Under the
// even-odd rule the centre lies in a hole.
func evenOddWinding(ctx context.Context, s capability.Surface2D) (bool, error) {
	s.Rect(0, 0, 10, 10)
	s.Rect(2, 2, 6, 6)
	inside, err := s.IsPointInPath(ctx, 5, 5, capability.EvenOdd)
	if err != nil {
		return false, err
	}
	// true means the host honors even-odd, the inverse of the raw containment test
	return !inside, nil
}

func drawTextScene(ctx context.Context, s capability.Surface2D) error {
	if err := s.Resize(ctx, 240, 60); err != nil {
		return err
	}
	s.SetTextBaseline("alphabetic")
	// a valid colour; the three-digit "#60" some implementations use leaves the rect black
	s.SetFillStyle("#f60")
	s.FillRect(100, 1, 62, 20)

	s.SetFillStyle("#069")
	s.SetFont(`11pt "Times New Roman"`)
	s.FillText(CanvasText, 2, 15)

	s.SetFillStyle("rgba(102, 204, 0, 0.2)")
	s.SetFont("18pt Arial")
	s.FillText(CanvasText, 4, 45)
	return nil
}

func drawGeometryScene(ctx context.Context, s capability.Surface2D) error {
	if err := s.Resize(ctx, 122, 110); err != nil {
		return err
	}
	s.SetCompositeOperation("multiply")

	circles := []struct {
		color string
		x, y  float64
	}{
		{"#f2f", 40, 40},
		{"#2ff", 80, 40},
		{"#ff2", 60, 80},
	}
	for _, c := range circles {
		s.SetFillStyle(c.color)
		s.BeginPath()
		s.Arc(c.x, c.y, 40, 0, 2*math.Pi)
		s.ClosePath()
		s.Fill(capability.NonZero)
	}

	s.SetFillStyle("#f9c")
	s.BeginPath()
	s.Arc(60, 60, 60, 0, 2*math.Pi)
	s.Arc(60, 60, 20, 0, 2*math.Pi)
	s.Fill(capability.EvenOdd)
	return nil
}
