package main

import (
	"github.com/matsen/bjjflow/internal/editor"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(layoutCmd)
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Arrange the active chart left to right by depth",
	Long: `Arrange the active chart in columns by longest path from its root nodes.
Transitions that close a cycle are ignored when computing depth.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		s.mustApply(editor.AutoLayout{})

		v := s.editor.View()
		if humanOutput {
			printViewHuman(v)
			return nil
		}
		return outputJSON(v.Chart.Nodes)
	},
}
