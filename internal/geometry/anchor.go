// Package geometry holds the fixed node box geometry, anchor resolution and
// the chart canvas coordinate space.
package geometry

import "github.com/matsen/bjjflow/internal/graph"

// Fixed node box size in chart coordinates.
const (
	NodeWidth  = 210.0
	NodeHeight = 88.0
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchors are the boundary points of the unit node box, starting at top-middle
// and stepping clockwise.
var Anchors = [graph.AnchorCount]Point{
	{X: 0.5, Y: 0.0},
	{X: 0.75, Y: 0.15},
	{X: 1.0, Y: 0.5},
	{X: 0.75, Y: 0.85},
	{X: 0.5, Y: 1.0},
	{X: 0.25, Y: 0.85},
	{X: 0.0, Y: 0.5},
	{X: 0.25, Y: 0.15},
}

// AnchorPoint returns the absolute coordinates of anchor index on node.
// An out-of-range index resolves to fallback; an out-of-range fallback
// resolves to anchor 0.
func AnchorPoint(node graph.Node, index, fallback int) Point {
	idx := index
	if !graph.ValidAnchor(idx) {
		idx = fallback
	}
	if !graph.ValidAnchor(idx) {
		idx = 0
	}
	a := Anchors[idx]
	return Point{
		X: node.X + NodeWidth*a.X,
		Y: node.Y + NodeHeight*a.Y,
	}
}

// EdgeEndpoints resolves both ends of e on its source and target nodes.
func EdgeEndpoints(e graph.Edge, from, to graph.Node) (Point, Point) {
	return AnchorPoint(from, e.FromAnchor, graph.DefaultFromAnchor),
		AnchorPoint(to, e.ToAnchor, graph.DefaultToAnchor)
}

// Center returns the center of the node box.
func Center(node graph.Node) Point {
	return Point{X: node.X + NodeWidth/2, Y: node.Y + NodeHeight/2}
}
