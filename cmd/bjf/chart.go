package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/workspace"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.AddCommand(chartShowCmd)
	chartCmd.AddCommand(chartSwitchCmd)
	chartCmd.AddCommand(chartListCmd)

	chartExportCmd.Flags().StringP("output", "o", "", "Output file (default: <position>-<flowtype>.json, '-' for stdout)")
	chartCmd.AddCommand(chartExportCmd)

	chartCmd.AddCommand(chartImportCmd)
	chartCmd.AddCommand(chartTemplateCmd)
	chartCmd.AddCommand(chartClearCmd)
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show, switch and exchange charts",
	Long:  `Commands for the active chart and the charts of the workspace.`,
}

var chartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		v := s.editor.View()
		if humanOutput {
			printViewHuman(v)
			return nil
		}
		return outputJSON(v)
	},
}

var chartSwitchCmd = &cobra.Command{
	Use:   "switch <position> <flow-type>",
	Short: "Make another chart active",
	Long: `Make another chart active. An empty chart is filled from its template.

Positions: Mount, Side Control, Closed Guard, Half Guard, Open Guard,
Back Control, Standing. Flow types: Attacks, Escapes. Names are case
insensitive and accept dashes for spaces.

Examples:
  bjf chart switch mount escapes
  bjf chart switch side-control attacks`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := mustParseChart(args[0], args[1])
		s := mustOpenSession()
		s.mustApply(editor.SwitchChart{Position: key.Position, FlowType: key.FlowType})
		printStatus(StatusResponse{Status: "switched", Chart: s.chartName()},
			fmt.Sprintf("Switched to %s %s", key.Position, key.FlowType))
		return nil
	},
}

// mustParseChart resolves user-typed chart names, exits on error.
func mustParseChart(position, flowType string) chart.Key {
	p, err := chart.LookupPosition(position)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	f, err := chart.LookupFlowType(flowType)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return chart.Key{Position: p, FlowType: f}
}

// ChartSummary describes one chart in chart list output.
type ChartSummary struct {
	Chart      string `json:"chart"`
	Active     bool   `json:"active"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	References int    `json:"references"`
}

var chartListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every chart in the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		charts := s.editor.Charts()
		active := s.chartName()

		var summaries []ChartSummary
		for _, p := range chart.Positions {
			for _, f := range chart.FlowTypes {
				key := chart.Key{Position: p, FlowType: f}.String()
				c, ok := charts[key]
				if !ok {
					continue
				}
				summaries = append(summaries, ChartSummary{
					Chart:      key,
					Active:     key == active,
					Nodes:      len(c.Nodes),
					Edges:      len(c.Edges),
					References: len(c.References),
				})
			}
		}

		if !humanOutput {
			return outputJSON(summaries)
		}
		for _, cs := range summaries {
			marker := " "
			if cs.Active {
				marker = "*"
			}
			outputHuman("%s %-24s %3d nodes  %3d transitions  %2d references\n", marker, cs.Chart, cs.Nodes, cs.Edges, cs.References)
		}
		return nil
	},
}

var chartExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active chart as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		data, err := s.editor.SerializeChart()
		if err != nil {
			return fmt.Errorf("serializing chart: %w", err)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = s.editor.ExportFileName()
		}
		return writeDocument(output, data)
	},
}

// writeDocument writes data to path, or to stdout when path is "-".
func writeDocument(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	abs, _ := filepath.Abs(path)
	printStatus(StatusResponse{Status: "exported", Path: abs}, "Exported to "+path)
	return nil
}

var chartImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a chart or workspace JSON document",
	Long: `Import a chart or workspace JSON document ('-' reads stdin).

A chart document ({"nodes": [...], "edges": [...]}) replaces the active chart.
A workspace document ({"charts": {...}}) replaces every chart and the current
selection. Nothing changes if the document is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}

		s := mustOpenSession()
		kind, err := s.editor.Import(data)
		if err != nil {
			if errors.Is(err, workspace.ErrInvalidJSON) || errors.Is(err, workspace.ErrUnsupportedFormat) {
				exitWithError(ExitDataError, "%v", err)
			}
			return err
		}
		s.mustSave()

		printStatus(StatusResponse{Status: "imported " + kind.String(), Chart: s.chartName()},
			fmt.Sprintf("Imported %s into %s", kind, s.chartName()))
		return nil
	},
}

// readDocument reads path, or stdin when path is "-".
func readDocument(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

var chartTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Replace the active chart with its starter template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		s.mustApply(editor.LoadTemplate{})
		printStatus(StatusResponse{Status: "template loaded", Chart: s.chartName()},
			"Loaded template for "+s.chartName())
		return nil
	},
}

var chartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every node, transition and reference from the active chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		s.mustApply(editor.ClearBoard{})
		printStatus(StatusResponse{Status: "cleared", Chart: s.chartName()}, "Cleared "+s.chartName())
		return nil
	},
}
