package main

import (
	"strconv"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(edgeCmd)
	edgeCmd.AddCommand(edgeDeleteCmd)
	edgeCmd.AddCommand(edgeCurveCmd)
	edgeCmd.AddCommand(edgeAnchorCmd)
}

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Manage transitions of the active chart",
}

var edgeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		mustFindEdge(s, args[0])
		s.mustApply(editor.DeleteEdge{ID: args[0]})
		printStatus(StatusResponse{Status: "deleted", Chart: s.chartName(), ID: args[0]}, "Deleted transition "+args[0])
		return nil
	},
}

var edgeCurveCmd = &cobra.Command{
	Use:   "curve <id>",
	Short: "Toggle a transition between straight and curved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		mustFindEdge(s, args[0])
		s.mustApply(editor.ToggleCurve{ID: args[0]})

		e := mustFindEdge(s, args[0])
		if humanOutput {
			shape := "straight"
			if e.Curved {
				shape = "curved"
			}
			outputHuman("Transition %s is now %s\n", e.ID, shape)
			return nil
		}
		return outputJSON(e)
	},
}

var edgeAnchorCmd = &cobra.Command{
	Use:   "anchor <id> <from|to> <index>",
	Short: "Attach one end of a transition to another anchor",
	Long: `Attach one end of a transition to another anchor point of its node.

Anchors are numbered clockwise from the top middle of the node box:
  0 top          1 upper right   2 right (default source)
  3 lower right  4 bottom        5 lower left
  6 left (default target)        7 upper left`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		end := graph.End(args[1])
		if end != graph.EndFrom && end != graph.EndTo {
			exitWithError(ExitDataError, "end must be %q or %q", graph.EndFrom, graph.EndTo)
		}
		index, err := strconv.Atoi(args[2])
		if err != nil || !graph.ValidAnchor(index) {
			exitWithError(ExitDataError, "anchor index must be 0-%d", graph.AnchorCount-1)
		}

		s := mustOpenSession()
		mustFindEdge(s, args[0])
		s.mustApply(editor.SetAnchor{ID: args[0], End: end, Index: index})

		e := mustFindEdge(s, args[0])
		if humanOutput {
			outputHuman("Transition %s anchors %d -> %d\n", e.ID, e.FromAnchor, e.ToAnchor)
			return nil
		}
		return outputJSON(e)
	},
}

// mustFindEdge returns a transition of the active chart, exits if it is missing.
func mustFindEdge(s *session, id string) graph.Edge {
	for _, e := range s.editor.View().Chart.Edges {
		if e.ID == id {
			return e
		}
	}
	exitWithError(ExitDataError, "transition %q not found in %s", id, s.chartName())
	return graph.Edge{}
}
