package editor

import (
	"slices"

	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/graph"
)

// Pointer is a pointer position relative to the board's top-left corner,
// together with the board's scroll offset at that moment.
type Pointer struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// canvasPoint converts the pointer into chart coordinates at zoom.
func (p Pointer) canvasPoint(zoom float64) geometry.Point {
	return geometry.ScreenToCanvas(
		geometry.Point{X: p.X, Y: p.Y},
		zoom,
		geometry.Point{X: p.ScrollX, Y: p.ScrollY},
	)
}

// dragState is the in-progress drag of one node or a selected group.
type dragState struct {
	nodeID  string
	start   geometry.Point
	ids     []string
	origins map[string]geometry.Point
}

func (e *Editor) clearSelection() {
	e.selected = nil
	e.selectedEdge = ""
}

// selectNode selects id, clearing the edge selection. Without additive the
// node selection is replaced; with it, id is toggled. An empty id clears.
func (e *Editor) selectNode(id string, additive bool) {
	e.selectedEdge = ""
	if !additive {
		e.selected = nil
	}
	if id == "" {
		return
	}
	if i := slices.Index(e.selected, id); additive && i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
		return
	}
	if !slices.Contains(e.selected, id) {
		e.selected = append(e.selected, id)
	}
}

func (e *Editor) selectEdge(id string) {
	e.selected = nil
	e.selectedEdge = id
}

func (e *Editor) isSelected(id string) bool {
	return slices.Contains(e.selected, id)
}

// selectedSingleNode returns the selected node when exactly one is selected.
func (e *Editor) selectedSingleNode() *graph.Node {
	if len(e.selected) != 1 {
		return nil
	}
	return e.store.Node(e.selected[0])
}

// deleteSelected removes the selected nodes and every edge touching them.
func (e *Editor) deleteSelected() int {
	if len(e.selected) == 0 {
		return 0
	}
	ids := make(map[string]bool, len(e.selected))
	for _, id := range e.selected {
		ids[id] = true
	}
	n := e.store.DeleteNodes(ids)
	if e.selectedEdge != "" && e.store.Edge(e.selectedEdge) == nil {
		e.selectedEdge = ""
	}
	e.selected = nil
	return n
}

// beginDrag starts dragging nodeID, or the whole selection when nodeID is part
// of a multi-node selection.
func (e *Editor) beginDrag(nodeID string, p Pointer) {
	if e.store.Node(nodeID) == nil {
		return
	}
	ids := []string{nodeID}
	if len(e.selected) > 1 && e.isSelected(nodeID) {
		ids = append([]string{}, e.selected...)
	}
	origins := make(map[string]geometry.Point, len(ids))
	for _, id := range ids {
		if n := e.store.Node(id); n != nil {
			origins[id] = geometry.Point{X: n.X, Y: n.Y}
		}
	}
	e.drag = &dragState{
		nodeID:  nodeID,
		start:   p.canvasPoint(e.zoom),
		ids:     ids,
		origins: origins,
	}
}

// moveDrag applies the pointer travel since beginDrag to every dragged node's
// original position, growing the canvas first and then clamping.
func (e *Editor) moveDrag(p Pointer) {
	if e.drag == nil {
		return
	}
	cur := p.canvasPoint(e.zoom)
	dx, dy := cur.X-e.drag.start.X, cur.Y-e.drag.start.Y

	var requiredX, requiredY float64
	for _, id := range e.drag.ids {
		o, ok := e.drag.origins[id]
		if !ok {
			continue
		}
		requiredX = max(requiredX, o.X+dx+geometry.NodeWidth+geometry.CanvasPadding)
		requiredY = max(requiredY, o.Y+dy+geometry.NodeHeight+geometry.CanvasPadding)
	}
	e.canvas.Ensure(e.store.Nodes(), requiredX, requiredY)

	for _, id := range e.drag.ids {
		o, ok := e.drag.origins[id]
		n := e.store.Node(id)
		if !ok || n == nil {
			continue
		}
		n.X, n.Y = e.canvas.ClampNode(o.X+dx, o.Y+dy)
	}
}

func (e *Editor) endDrag() {
	e.drag = nil
}
