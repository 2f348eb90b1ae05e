package transcript

import (
	"fmt"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/graph"
)

// MaxNodes bounds a generated chart, start node included.
const MaxNodes = 9

// Fixed ids of the generated start and fallback nodes.
const (
	StartID    = "start"
	FallbackID = "fallback"
)

// Build returns a linear chart: a start node followed by up to MaxNodes-1
// matched concepts in order, or a single fallback node when nothing matched.
// The chart has no references and is left for the caller to lay out.
func Build(matches []Match, p chart.Position, f chart.FlowType) graph.Chart {
	startLabel, startNote := string(p)+" Control", "Start with control and pressure."
	fallbackLabel := "Primary Attack Route"
	if f == chart.Escapes {
		startLabel, startNote = string(p)+" Survival", "Start with defense, frames, and timing."
		fallbackLabel = "Primary Escape Route"
	}

	c := graph.EmptyChart()
	c.Nodes = append(c.Nodes, graph.Node{
		ID:    StartID,
		Label: startLabel,
		Type:  graph.TypePosition,
		Notes: startNote,
		X:     50,
		Y:     170,
	})

	prev := StartID
	for i, m := range matches {
		if i >= MaxNodes-1 {
			break
		}
		id := graph.NewID("mt")
		c.Nodes = append(c.Nodes, graph.Node{ID: id, Label: m.Label, Type: m.Type, Notes: m.Note(), X: 300, Y: 170})
		c.Edges = append(c.Edges, graph.NewEdge("", prev, id))
		prev = id
	}

	if len(c.Nodes) == 1 {
		c.Nodes = append(c.Nodes, graph.Node{
			ID:    FallbackID,
			Label: fallbackLabel,
			Type:  graph.TypeAttack,
			Notes: "No clear transcript keywords found; added a default continuation.",
			X:     320,
			Y:     170,
		})
		c.Edges = append(c.Edges, graph.NewEdge("", StartID, FallbackID))
	}
	return c
}

// Generate extracts concepts from text and builds the chart for them.
func Generate(text string, p chart.Position, f chart.FlowType) graph.Chart {
	return Build(Extract(text, p, f), p, f)
}

// Summary is the status line reported after a chart is rebuilt.
func Summary(p chart.Position, f chart.FlowType, nodes int, source string) string {
	if source == "" {
		return fmt.Sprintf("Built %s %s with %d nodes.", p, f, nodes)
	}
	return fmt.Sprintf("Built %s %s with %d nodes from %s.", p, f, nodes, source)
}
