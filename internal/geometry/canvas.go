package geometry

import "github.com/matsen/bjjflow/internal/graph"

// Canvas sizing limits.
const (
	MinCanvasWidth   = 400.0
	BaseCanvasHeight = 1400.0
	CanvasPadding    = 140.0
	MaxCanvasWidth   = 6000.0
	MaxCanvasHeight  = 6000.0

	// NodeInset is the minimum distance of a node from the top/left canvas edge.
	NodeInset = 6.0
	// NodeMargin is the gap kept between a node and the right/bottom canvas edge.
	NodeMargin = 10.0
)

// Zoom limits.
const (
	ZoomMin = 0.4
	ZoomMax = 2.5
)

// Viewport is the visible board area in screen pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Canvas is the scrollable chart surface. It grows with its content up to
// MaxCanvasWidth x MaxCanvasHeight.
type Canvas struct {
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Viewport Viewport `json:"viewport"`
}

// Clamp limits v to [lo, hi]. When lo > hi the result is lo.
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// Reset zeroes the canvas size, keeping the viewport.
func (c *Canvas) Reset() {
	c.Width = 0
	c.Height = 0
}

// Ensure recomputes the canvas size so that every node plus padding fits and
// the canvas is at least extraX by extraY.
func (c *Canvas) Ensure(nodes []graph.Node, extraX, extraY float64) {
	minWidth := max(MinCanvasWidth, c.Viewport.Width)
	minHeight := max(BaseCanvasHeight, c.Viewport.Height)

	var contentWidth, contentHeight float64
	for _, n := range nodes {
		contentWidth = max(contentWidth, n.X+NodeWidth+CanvasPadding)
		contentHeight = max(contentHeight, n.Y+NodeHeight+CanvasPadding)
	}

	c.Width = Clamp(max(minWidth, contentWidth, extraX), minWidth, MaxCanvasWidth)
	c.Height = Clamp(max(minHeight, contentHeight, extraY), minHeight, MaxCanvasHeight)
}

// ClampNode limits a node's top-left corner to the usable canvas area.
func (c Canvas) ClampNode(x, y float64) (float64, float64) {
	return Clamp(x, NodeInset, c.Width-(NodeWidth+NodeMargin)),
		Clamp(y, NodeInset, c.Height-(NodeHeight+NodeMargin))
}

// ScreenToCanvas converts a pointer position relative to the board's top-left
// corner into chart coordinates, given the board's scroll offset and zoom.
func ScreenToCanvas(p Point, zoom float64, scroll Point) Point {
	if zoom <= 0 {
		zoom = 1
	}
	return Point{
		X: (p.X + scroll.X) / zoom,
		Y: (p.Y + scroll.Y) / zoom,
	}
}

// ClampZoom limits z to [ZoomMin, ZoomMax].
func ClampZoom(z float64) float64 {
	return Clamp(z, ZoomMin, ZoomMax)
}
