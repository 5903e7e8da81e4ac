package capability

import "context"

// WindingRule selects how path containment is decided for self-overlapping paths.
type WindingRule string

const (
	NonZero WindingRule = "nonzero"
	EvenOdd WindingRule = "evenodd"
)

// Surface2D is a 2D drawing surface.
//
// Drawing calls are recorded and applied in order; failures surface from the
// next call that returns an error (IsPointInPath, Resize, Encode).
type Surface2D interface {
	Releaser

	// Resize sets the surface size, which also clears it.
	Resize(ctx context.Context, width, height int) error
	// Encode serializes the current raster to a data URL.
	Encode(ctx context.Context) (string, error)
	// IsPointInPath tests (x, y) against the current path.
	IsPointInPath(ctx context.Context, x, y float64, rule WindingRule) (bool, error)

	Rect(x, y, w, h float64)
	FillRect(x, y, w, h float64)
	BeginPath()
	ClosePath()
	Arc(x, y, radius, startAngle, endAngle float64)
	Fill(rule WindingRule)
	FillText(text string, x, y float64)
	SetFillStyle(style string)
	SetFont(font string)
	SetTextBaseline(baseline string)
	SetCompositeOperation(op string)
}
