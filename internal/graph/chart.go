package graph

// Chart is one flow graph: the nodes, edges and references of a single
// (position, flow type) pair.
type Chart struct {
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
	References []Reference `json:"references"`
}

// EmptyChart returns a chart with non-nil, empty collections.
func EmptyChart() Chart {
	return Chart{
		Nodes:      []Node{},
		Edges:      []Edge{},
		References: []Reference{},
	}
}

// Clone returns a copy of the chart that shares no backing arrays with c.
// Registry snapshots and the active working set are always exchanged through
// Clone so that mutating one never aliases the other.
func (c Chart) Clone() Chart {
	clone := Chart{
		Nodes:      make([]Node, len(c.Nodes)),
		Edges:      make([]Edge, len(c.Edges)),
		References: make([]Reference, len(c.References)),
	}
	copy(clone.Nodes, c.Nodes)
	copy(clone.Edges, c.Edges)
	copy(clone.References, c.References)
	return clone
}

// IsEmpty reports whether the chart has no nodes.
func (c Chart) IsEmpty() bool {
	return len(c.Nodes) == 0
}

// NodeIndex returns the index of the first node with the given id, or -1.
func (c Chart) NodeIndex(id string) int {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the index of the first edge with the given id, or -1.
func (c Chart) EdgeIndex(id string) int {
	for i := range c.Edges {
		if c.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// NodeSet returns the set of node ids present in the chart.
func (c Chart) NodeSet() map[string]bool {
	ids := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// DanglingEdges returns the edges whose endpoints are not both present.
// Dangling edges are tolerated and skipped during traversal and rendering.
func (c Chart) DanglingEdges() []Edge {
	ids := c.NodeSet()
	var dangling []Edge
	for _, e := range c.Edges {
		if !ids[e.From] || !ids[e.To] {
			dangling = append(dangling, e)
		}
	}
	return dangling
}
