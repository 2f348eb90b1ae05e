package main

import (
	"fmt"
	"os"

	"github.com/matsen/bjjflow/internal/viz"
	"github.com/spf13/cobra"
)

var vizOutput string
var vizLayout string
var vizTheme string
var vizOffline bool

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "preset", "Layout: preset (chart coordinates), breadthfirst, or grid")
	vizCmd.Flags().StringVar(&vizTheme, "theme", "", "Theme: dark or light (default: the workspace theme)")
	vizCmd.Flags().BoolVar(&vizOffline, "offline", false, "Bundle Cytoscape.js inline for offline use")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate an interactive chart visualization",
	Long: `Generate an interactive HTML visualization of the active chart.

Nodes are coloured by type (position, attack, reaction, finish) and placed at
their chart coordinates. Transitions leave and enter at their anchors; curved
transitions are drawn as bezier curves. Clicking a node highlights where it
leads.

Examples:
  bjf viz --output mount-attacks.html
  bjf viz --layout breadthfirst --theme light > chart.html
  bjf viz --offline --output chart.html`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	s := mustOpenSession()
	v := s.editor.View()

	graph := viz.BuildGraph(fmt.Sprintf("%s %s", v.Position, v.FlowType), v.Chart)

	theme := vizTheme
	if theme == "" {
		theme = string(v.Theme)
	}
	// Generate HTML (validates options internally)
	opts := viz.HTMLOptions{
		Layout:  vizLayout,
		Theme:   theme,
		Offline: vizOffline,
	}
	html, err := viz.GenerateHTML(graph, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if !humanOutput {
		return outputJSON(map[string]string{"output": vizOutput})
	}
	fmt.Printf("Visualization written to %s\n", vizOutput)
	return nil
}
