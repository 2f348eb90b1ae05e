// Package layout arranges a chart left to right by graph depth.
package layout

import (
	"sort"

	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/graph"
)

// Grid spacing for automatic layout.
const (
	OriginX      = 40.0
	OriginY      = 30.0
	ColumnWidth  = 240.0
	RowHeight    = 125.0
	reserveWidth = 80.0
)

// Result describes a computed layout.
type Result struct {
	// Depth maps node id to its longest-path depth from a root.
	Depth map[string]int
	// Columns lists node ids per column, left to right, in chart order.
	Columns [][]string
	// BackEdges are the edge ids ignored to break cycles.
	BackEdges []string
}

// ColumnOf returns the column index of a node, or -1.
func (r Result) ColumnOf(id string) int {
	for col, ids := range r.Columns {
		for _, nid := range ids {
			if nid == id {
				return col
			}
		}
	}
	return -1
}

// adjacency is the usable edge set of a chart: edges whose endpoints both
// exist and differ.
type adjacency struct {
	order    []string
	outgoing map[string][]outEdge
	inDegree map[string]int
}

type outEdge struct {
	edgeID string
	to     string
}

func buildAdjacency(nodes []graph.Node, edges []graph.Edge) adjacency {
	adj := adjacency{
		outgoing: make(map[string][]outEdge, len(nodes)),
		inDegree: make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := adj.inDegree[n.ID]; dup {
			continue
		}
		adj.order = append(adj.order, n.ID)
		adj.inDegree[n.ID] = 0
	}
	for _, e := range edges {
		_, fromOK := adj.inDegree[e.From]
		_, toOK := adj.inDegree[e.To]
		if !fromOK || !toOK || e.From == e.To {
			continue
		}
		adj.outgoing[e.From] = append(adj.outgoing[e.From], outEdge{edgeID: e.ID, to: e.To})
		adj.inDegree[e.To]++
	}
	return adj
}

// roots returns the in-degree-0 nodes in chart order, or the first node when
// every node has an incoming edge.
func (a adjacency) roots() []string {
	var roots []string
	for _, id := range a.order {
		if a.inDegree[id] == 0 {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 && len(a.order) > 0 {
		roots = []string{a.order[0]}
	}
	return roots
}

type backEdge struct {
	from, to string
	edgeID   string
}

// findBackEdges runs a depth-first search from the roots, then from any node
// not yet reached, and returns the edges that close a cycle.
func (a adjacency) findBackEdges() []backEdge {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(a.order))
	var back []backEdge

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = visiting
		for _, out := range a.outgoing[id] {
			switch state[out.to] {
			case visiting:
				back = append(back, backEdge{from: id, to: out.to, edgeID: out.edgeID})
			case unvisited:
				dfs(out.to)
			}
		}
		state[id] = done
	}

	for _, id := range a.roots() {
		if state[id] == unvisited {
			dfs(id)
		}
	}
	for _, id := range a.order {
		if state[id] == unvisited {
			dfs(id)
		}
	}
	return back
}

// Depths computes the longest-path depth of every node over the chart with
// back edges removed. Roots are depth 0. The computation walks the remaining
// DAG in topological order and always terminates, including on cyclic charts.
func Depths(nodes []graph.Node, edges []graph.Edge) (map[string]int, []string) {
	adj := buildAdjacency(nodes, edges)
	back := adj.findBackEdges()

	isBack := make(map[string]map[string]int)
	for _, b := range back {
		if isBack[b.from] == nil {
			isBack[b.from] = make(map[string]int)
		}
		isBack[b.from][b.to]++
	}

	dagOut := make(map[string][]string, len(adj.order))
	inDegree := make(map[string]int, len(adj.order))
	for _, id := range adj.order {
		inDegree[id] = 0
	}
	for _, id := range adj.order {
		for _, out := range adj.outgoing[id] {
			if isBack[id][out.to] > 0 {
				continue
			}
			dagOut[id] = append(dagOut[id], out.to)
			inDegree[out.to]++
		}
	}

	depth := make(map[string]int, len(adj.order))
	queue := make([]string, 0, len(adj.order))
	for _, id := range adj.order {
		depth[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range dagOut[current] {
			if next := depth[current] + 1; next > depth[child] {
				depth[child] = next
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	backIDs := make([]string, 0, len(back))
	for _, b := range back {
		backIDs = append(backIDs, b.edgeID)
	}
	return depth, backIDs
}

// Compute groups nodes into columns by depth without moving them.
func Compute(nodes []graph.Node, edges []graph.Edge) Result {
	depth, back := Depths(nodes, edges)

	levels := make(map[int][]string)
	for _, n := range nodes {
		d := depth[n.ID]
		levels[d] = append(levels[d], n.ID)
	}
	depths := make([]int, 0, len(levels))
	for d := range levels {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	columns := make([][]string, 0, len(depths))
	for _, d := range depths {
		columns = append(columns, levels[d])
	}
	return Result{Depth: depth, Columns: columns, BackEdges: back}
}

// Apply repositions every node in place on a depth grid. The canvas is grown
// to fit the widest column count and the tallest column before positions are
// assigned and clamped. Edges are not modified.
func Apply(nodes []graph.Node, edges []graph.Edge, canvas *geometry.Canvas) Result {
	if len(nodes) == 0 {
		return Result{Depth: map[string]int{}}
	}
	res := Compute(nodes, edges)

	maxRows := 1
	for _, col := range res.Columns {
		maxRows = max(maxRows, len(col))
	}
	canvas.Ensure(nodes,
		reserveWidth+float64(len(res.Columns))*ColumnWidth+geometry.NodeWidth+geometry.CanvasPadding,
		reserveWidth+float64(maxRows)*RowHeight+geometry.NodeHeight+geometry.CanvasPadding,
	)

	// A node id repeated in the chart occupies one slot per occurrence.
	type slot struct{ col, row int }
	slots := make(map[string][]slot)
	for col, ids := range res.Columns {
		for row, id := range ids {
			slots[id] = append(slots[id], slot{col: col, row: row})
		}
	}
	for i := range nodes {
		id := nodes[i].ID
		s := slots[id][0]
		slots[id] = slots[id][1:]
		nodes[i].X, nodes[i].Y = canvas.ClampNode(
			OriginX+float64(s.col)*ColumnWidth,
			OriginY+float64(s.row)*RowHeight,
		)
	}
	return res
}
