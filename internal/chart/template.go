package chart

import (
	"github.com/matsen/bjjflow/internal/graph"
)

// TemplateFunc provides the starting chart for a (position, flow type) pair.
type TemplateFunc func(Position, FlowType) graph.Chart

// TemplateFor returns the built-in template for Mount attacks and escapes, and
// a single-node starter chart for every other pair.
func TemplateFor(p Position, f FlowType) graph.Chart {
	switch {
	case p == Mount && f == Attacks:
		return mountAttacks()
	case p == Mount && f == Escapes:
		return mountEscapes()
	default:
		return Starter(p, f)
	}
}

// Starter returns a chart with one position node named after the pair.
func Starter(p Position, f FlowType) graph.Chart {
	c := graph.EmptyChart()
	c.Nodes = append(c.Nodes, graph.Node{
		ID:    graph.NewID("node"),
		Label: string(p) + " " + string(f),
		Type:  graph.TypePosition,
		Notes: "Start node.",
		X:     50,
		Y:     170,
	})
	return c
}

type templateNode struct {
	id, label string
	typ       graph.NodeType
	notes     string
	x, y      float64
}

func buildTemplate(nodes []templateNode, edges [][3]string) graph.Chart {
	c := graph.EmptyChart()
	for _, n := range nodes {
		c.Nodes = append(c.Nodes, graph.Node{ID: n.id, Label: n.label, Type: n.typ, Notes: n.notes, X: n.x, Y: n.y})
	}
	for _, e := range edges {
		c.Edges = append(c.Edges, graph.NewEdge(e[0], e[1], e[2]))
	}
	return c
}

func mountAttacks() graph.Chart {
	return buildTemplate([]templateNode{
		{"n1", "Low Mount Control", graph.TypePosition, "Start heavy with chest pressure and knees pinched.", 40, 190},
		{"n2", "Cross Collar Feed", graph.TypeAttack, "Slide deep first grip and hide elbow.", 340, 80},
		{"n3", "High Mount Climb", graph.TypeAttack, "Walk knees high when they defend neck.", 340, 190},
		{"n4", "Opponent Frames", graph.TypeReaction, "Elbows come inside to create distance.", 340, 300},
		{"n5", "Armbar", graph.TypeFinish, "Trap near arm and turn angle.", 650, 140},
		{"n6", "Mounted Triangle", graph.TypeFinish, "Switch if armbar defense stacks.", 650, 250},
	}, [][3]string{
		{"e1", "n1", "n2"},
		{"e2", "n1", "n3"},
		{"e3", "n1", "n4"},
		{"e4", "n2", "n5"},
		{"e5", "n3", "n5"},
		{"e6", "n4", "n6"},
	})
}

func mountEscapes() graph.Chart {
	return buildTemplate([]templateNode{
		{"m1", "Bottom Mount Survival", graph.TypePosition, "Frame and protect neck while controlling distance.", 40, 190},
		{"m2", "Opponent Posts Hands", graph.TypeReaction, "Weight shifts forward and hands open.", 340, 90},
		{"m3", "Opponent Sits Heavy", graph.TypeReaction, "Hips low and head centered.", 340, 250},
		{"m4", "Trap and Bridge", graph.TypeAttack, "Trap arm + foot, bridge over shoulder.", 650, 90},
		{"m5", "Elbow Knee Escape", graph.TypeAttack, "Shrimp and recover half guard.", 650, 250},
		{"m6", "Recover Guard", graph.TypeFinish, "Close guard or establish knee shield.", 940, 170},
	}, [][3]string{
		{"me1", "m1", "m2"},
		{"me2", "m1", "m3"},
		{"me3", "m2", "m4"},
		{"me4", "m3", "m5"},
		{"me5", "m4", "m6"},
		{"me6", "m5", "m6"},
	})
}
