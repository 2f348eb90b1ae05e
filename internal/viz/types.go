// Package viz renders a flow chart as a standalone Cytoscape.js HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a chart node positioned at its box center.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // position, attack, reaction or finish
	Label string `json:"label"`
	Notes string `json:"notes,omitempty"`

	// Center of the node box in chart coordinates
	X float64 `json:"-"`
	Y float64 `json:"-"`

	// Number of edges touching the node (for tooltips)
	ConnectionCount int `json:"connectionCount"`
}

// Edge is a directed transition with endpoints expressed relative to the
// node centers.
type Edge struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	Curved         bool   `json:"curved"`
	SourceEndpoint string `json:"sourceEndpoint"`
	TargetEndpoint string `json:"targetEndpoint"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
