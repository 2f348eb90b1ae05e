package viz

import (
	"fmt"
	"strconv"

	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/graph"
)

// BuildGraph converts a chart into GraphData. Edges whose endpoints are not
// both present are skipped.
func BuildGraph(title string, c graph.Chart) *GraphData {
	byID := make(map[string]graph.Node, len(c.Nodes))
	for _, n := range c.Nodes {
		byID[n.ID] = n
	}

	edges, connectionCounts := buildEdges(c.Edges, byID)

	nodes := make([]Node, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		nodes = append(nodes, newNode(n, connectionCounts[n.ID]))
	}

	return &GraphData{
		Title: title,
		Nodes: nodes,
		Edges: edges,
	}
}

// buildEdges resolves edge anchors and counts connections per node.
func buildEdges(chartEdges []graph.Edge, byID map[string]graph.Node) ([]Edge, map[string]int) {
	connectionCounts := make(map[string]int)
	edges := make([]Edge, 0, len(chartEdges))

	for _, e := range chartEdges {
		from, okFrom := byID[e.From]
		to, okTo := byID[e.To]
		if !okFrom || !okTo {
			continue
		}
		connectionCounts[e.From]++
		connectionCounts[e.To]++

		start, end := geometry.EdgeEndpoints(e, from, to)
		edges = append(edges, Edge{
			ID:             e.ID,
			Source:         e.From,
			Target:         e.To,
			Curved:         e.Curved,
			SourceEndpoint: endpoint(start, geometry.Center(from)),
			TargetEndpoint: endpoint(end, geometry.Center(to)),
		})
	}

	return edges, connectionCounts
}

// newNode creates a visualization node from a chart node.
func newNode(n graph.Node, connectionCount int) Node {
	center := geometry.Center(n)
	return Node{
		ID:              n.ID,
		Type:            string(n.Type),
		Label:           n.Label,
		Notes:           n.Notes,
		X:               center.X,
		Y:               center.Y,
		ConnectionCount: connectionCount,
	}
}

// endpoint formats p as a Cytoscape endpoint offset from center, in pixels.
func endpoint(p, center geometry.Point) string {
	return fmt.Sprintf("%spx %spx", formatFloat(p.X-center.X), formatFloat(p.Y-center.Y))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
