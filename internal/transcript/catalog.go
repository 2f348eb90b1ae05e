// Package transcript turns instructional video transcripts into charts by
// matching a fixed catalog of technique keywords.
package transcript

import (
	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/graph"
)

// Concept is a catalog entry: the node to create when any keyword occurs.
type Concept struct {
	Label    string
	Type     graph.NodeType
	Keywords []string
}

func concept(label string, typ graph.NodeType, keywords ...string) Concept {
	return Concept{Label: label, Type: typ, Keywords: keywords}
}

var genericAttacks = []Concept{
	concept("Opponent Frames", graph.TypeReaction, "frame", "frames"),
	concept("Pressure and Isolate", graph.TypeAttack, "isolate", "control", "pressure"),
	concept("Armbar", graph.TypeFinish, "armbar", "juji"),
	concept("Triangle", graph.TypeFinish, "triangle"),
	concept("Kimura", graph.TypeFinish, "kimura"),
	concept("Guillotine", graph.TypeFinish, "guillotine"),
	concept("Back Take", graph.TypeAttack, "back take", "take the back"),
	concept("Choke Finish", graph.TypeFinish, "choke", "strangle"),
	concept("Sweep", graph.TypeFinish, "sweep"),
}

var genericEscapes = []Concept{
	concept("Opponent Posts", graph.TypeReaction, "post", "posting"),
	concept("Opponent Drives Pressure", graph.TypeReaction, "drives", "pressure", "heavy"),
	concept("Frame and Shrimp", graph.TypeAttack, "frame", "shrimp", "hip escape"),
	concept("Bridge and Turn", graph.TypeAttack, "bridge", "upa", "trap and roll"),
	concept("Reguard", graph.TypeFinish, "recover guard", "reguard", "guard recovery"),
	concept("Come Up to Single", graph.TypeAttack, "single leg", "wrestle up"),
	concept("Stand Up Escape", graph.TypeFinish, "stand up", "technical stand up"),
}

var positionSpecific = map[chart.Key][]Concept{
	{Position: chart.Mount, FlowType: chart.Attacks}: {
		concept("High Mount Climb", graph.TypeAttack, "high mount", "s mount", "s-mount"),
		concept("Cross Collar Feed", graph.TypeAttack, "cross collar", "cross choke", "collar choke"),
		concept("Americana", graph.TypeFinish, "americana", "paintbrush"),
		concept("Mounted Triangle", graph.TypeFinish, "mounted triangle"),
	},
	{Position: chart.Mount, FlowType: chart.Escapes}: {
		concept("Elbow Knee Escape", graph.TypeAttack, "elbow knee", "knee elbow"),
		concept("Kipping Escape", graph.TypeAttack, "kipping"),
		concept("Recover Half Guard", graph.TypeFinish, "half guard", "knee shield"),
	},
	{Position: chart.SideControl, FlowType: chart.Attacks}: {
		concept("Near-Side Kimura", graph.TypeFinish, "kimura"),
		concept("Paper Cutter Choke", graph.TypeFinish, "paper cutter"),
		concept("Mount Transition", graph.TypeAttack, "transition to mount", "go to mount"),
	},
	{Position: chart.SideControl, FlowType: chart.Escapes}: {
		concept("Underhook to Dogfight", graph.TypeAttack, "underhook", "dogfight"),
		concept("Ghost Escape", graph.TypeAttack, "ghost escape"),
	},
	{Position: chart.ClosedGuard, FlowType: chart.Attacks}: {
		concept("Pendulum Sweep", graph.TypeFinish, "pendulum sweep"),
		concept("Flower Sweep", graph.TypeFinish, "flower sweep"),
	},
	{Position: chart.ClosedGuard, FlowType: chart.Escapes}: {
		concept("Posture and Stand", graph.TypeAttack, "posture", "stand", "open guard"),
	},
	{Position: chart.HalfGuard, FlowType: chart.Attacks}: {
		concept("Knee Shield to Underhook", graph.TypeAttack, "knee shield", "underhook"),
		concept("Old School Sweep", graph.TypeFinish, "old school"),
	},
	{Position: chart.HalfGuard, FlowType: chart.Escapes}: {
		concept("Crossface Flatten", graph.TypeAttack, "crossface", "flatten"),
		concept("Knee Slice Pass", graph.TypeFinish, "knee slice"),
	},
	{Position: chart.OpenGuard, FlowType: chart.Attacks}: {
		concept("De La Riva Entry", graph.TypeAttack, "de la riva"),
		concept("X-Guard Sweep", graph.TypeFinish, "x guard", "x-guard"),
	},
	{Position: chart.OpenGuard, FlowType: chart.Escapes}: {
		concept("Pummel Legs and Clear Hooks", graph.TypeAttack, "pummel", "clear hooks"),
	},
	{Position: chart.BackControl, FlowType: chart.Attacks}: {
		concept("Bow and Arrow Setup", graph.TypeAttack, "bow and arrow"),
		concept("Rear Naked Choke", graph.TypeFinish, "rear naked", "rnc"),
	},
	{Position: chart.BackControl, FlowType: chart.Escapes}: {
		concept("Two-on-One Hand Fight", graph.TypeAttack, "hand fight", "two on one"),
		concept("Turn Into Guard", graph.TypeFinish, "turn in", "guard"),
	},
	{Position: chart.Standing, FlowType: chart.Attacks}: {
		concept("Single Leg Entry", graph.TypeAttack, "single leg"),
		concept("Double Leg Finish", graph.TypeFinish, "double leg"),
	},
	{Position: chart.Standing, FlowType: chart.Escapes}: {
		concept("Sprawl", graph.TypeAttack, "sprawl"),
		concept("Front Headlock Control", graph.TypeFinish, "front headlock"),
	},
}

// Catalog returns the concepts searched for a chart: the generic entries for
// the flow type followed by the position-specific ones.
func Catalog(p chart.Position, f chart.FlowType) []Concept {
	baseline := genericAttacks
	if f == chart.Escapes {
		baseline = genericEscapes
	}
	specific := positionSpecific[chart.Key{Position: p, FlowType: f}]

	out := make([]Concept, 0, len(baseline)+len(specific))
	out = append(out, baseline...)
	return append(out, specific...)
}
