package main

import (
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	pathCmd.Flags().Uint64("seed", 0, "Seed for a reproducible walk (default: random)")
	rootCmd.AddCommand(pathCmd)
}

// PathResponse is the response for the path command.
type PathResponse struct {
	Chart string   `json:"chart"`
	Path  []string `json:"path"`
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Walk a random sequence through the active chart",
	Long: `Walk the active chart from its first root node, following a random
outgoing transition at each step until a dead end or a repeated node.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()

		var rng *rand.Rand
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			rng = rand.New(rand.NewPCG(seed, seed))
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}

		labels := s.editor.RandomPath(rng)
		if labels == nil {
			labels = []string{}
		}

		if humanOutput {
			if len(labels) == 0 {
				outputHuman("No nodes in %s\n", s.chartName())
				return nil
			}
			outputHuman("%s\n", strings.Join(labels, " -> "))
			return nil
		}
		return outputJSON(PathResponse{Chart: s.chartName(), Path: labels})
	},
}
