package main

import (
	"strconv"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(nodeCmd)

	nodeAddCmd.Flags().StringP("label", "l", "", "Node label (default: New Node)")
	nodeAddCmd.Flags().StringP("type", "t", "", "Node type: position, attack, reaction, finish")
	nodeAddCmd.Flags().StringP("notes", "n", "", "Notes")
	nodeAddCmd.Flags().Float64("x", 0, "X coordinate")
	nodeAddCmd.Flags().Float64("y", 0, "Y coordinate")
	nodeAddCmd.Flags().String("after", "", "Place the node right of this node, with its type")
	nodeCmd.AddCommand(nodeAddCmd)

	nodeCmd.AddCommand(nodeConnectCmd)
	nodeCmd.AddCommand(nodeDeleteCmd)

	nodeEditCmd.Flags().StringP("label", "l", "", "New label")
	nodeEditCmd.Flags().StringP("type", "t", "", "New type")
	nodeEditCmd.Flags().StringP("notes", "n", "", "New notes")
	nodeCmd.AddCommand(nodeEditCmd)

	nodeCmd.AddCommand(nodeMoveCmd)
}

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage nodes of the active chart",
	Long:  `Commands for adding, connecting, editing and moving nodes.`,
}

// mustParseNodeType validates a --type flag value, exits on error.
func mustParseNodeType(s string) graph.NodeType {
	t, ok := graph.ParseNodeType(s)
	if !ok {
		exitWithError(ExitDataError, "invalid node type %q (valid: %v)", s, graph.ValidNodeTypes)
	}
	return t
}

var nodeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a node",
	Long: `Add a node to the active chart.

With --after the node is placed to the right of the given node and takes its
type unless --type is set.

Examples:
  bjf node add --label "Americana" --type attack --x 320 --y 80
  bjf node add --label "Tap" --after n3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var spec graph.NodeSpec
		spec.Label, _ = cmd.Flags().GetString("label")
		spec.Notes, _ = cmd.Flags().GetString("notes")
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			spec.Type = mustParseNodeType(t)
		}
		if cmd.Flags().Changed("x") {
			x, _ := cmd.Flags().GetFloat64("x")
			spec.X = &x
		}
		if cmd.Flags().Changed("y") {
			y, _ := cmd.Flags().GetFloat64("y")
			spec.Y = &y
		}

		s := mustOpenSession()
		after, _ := cmd.Flags().GetString("after")
		var res editor.Result
		if after != "" {
			mustFindNode(s, after)
			res = s.mustApply(editor.SelectNode{ID: after}, editor.AddNode{NodeSpec: spec, Near: true})
		} else {
			res = s.mustApply(editor.AddNode{NodeSpec: spec})
		}
		if res.ID == "" {
			exitWithError(ExitDataError, "node not added (user mode)")
		}

		printStatus(StatusResponse{Status: "created", Chart: s.chartName(), ID: res.ID}, "Created node "+res.ID)
		return nil
	},
}

var nodeConnectCmd = &cobra.Command{
	Use:   "connect <from> <to>",
	Short: "Add a transition between two nodes",
	Long: `Add a transition between two nodes. Nothing is added if either node is
missing, the nodes are the same, or the transition already exists.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		res := s.mustApply(editor.Connect{From: args[0], To: args[1]})
		if res.ID == "" {
			printStatus(StatusResponse{Status: "unchanged", Chart: s.chartName()}, "No transition added")
			return nil
		}
		printStatus(StatusResponse{Status: "created", Chart: s.chartName(), ID: res.ID}, "Created transition "+res.ID)
		return nil
	},
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete nodes and their transitions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		before := len(s.editor.View().Chart.Nodes)
		cmds := []editor.Command{editor.ClearSelection{}}
		for _, id := range args {
			cmds = append(cmds, editor.SelectNode{ID: id, Additive: true})
		}
		s.mustApply(append(cmds, editor.DeleteSelected{})...)
		deleted := before - len(s.editor.View().Chart.Nodes)

		if humanOutput {
			outputHuman("Deleted %d node(s)\n", deleted)
			return nil
		}
		return outputJSON(map[string]any{"status": "deleted", "chart": s.chartName(), "count": deleted})
	},
}

var nodeEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a node's label, type or notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch graph.NodePatch
		if cmd.Flags().Changed("label") {
			label, _ := cmd.Flags().GetString("label")
			patch.Label = &label
		}
		if cmd.Flags().Changed("type") {
			t, _ := cmd.Flags().GetString("type")
			typ := mustParseNodeType(t)
			patch.Type = &typ
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}
		if patch == (graph.NodePatch{}) {
			exitWithError(ExitError, "nothing to change: pass --label, --type or --notes")
		}

		s := mustOpenSession()
		mustFindNode(s, args[0])
		s.mustApply(editor.UpdateNode{ID: args[0], NodePatch: patch})
		printStatus(StatusResponse{Status: "updated", Chart: s.chartName(), ID: args[0]}, "Updated node "+args[0])
		return nil
	},
}

var nodeMoveCmd = &cobra.Command{
	Use:   "move <id> <x> <y>",
	Short: "Move a node, keeping it inside the canvas",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			exitWithError(ExitDataError, "coordinates must be numbers")
		}

		s := mustOpenSession()
		n := mustFindNode(s, args[0])
		zoom := s.editor.View().Zoom

		// Replay a single-node drag so that canvas growth and clamping apply.
		s.mustApply(
			editor.ClearSelection{},
			editor.BeginDrag{NodeID: n.ID, Pointer: editor.Pointer{X: n.X * zoom, Y: n.Y * zoom}},
			editor.MoveDrag{Pointer: editor.Pointer{X: x * zoom, Y: y * zoom}},
			editor.EndDrag{},
		)

		moved := mustFindNode(s, n.ID)
		if humanOutput {
			outputHuman("Moved %s to (%g, %g)\n", moved.ID, moved.X, moved.Y)
			return nil
		}
		return outputJSON(moved)
	},
}

// mustFindNode returns a node of the active chart, exits if it is missing.
func mustFindNode(s *session, id string) graph.Node {
	for _, n := range s.editor.View().Chart.Nodes {
		if n.ID == id {
			return n
		}
	}
	exitWithError(ExitDataError, "node %q not found in %s", id, s.chartName())
	return graph.Node{}
}
