package main

import (
	"fmt"

	"github.com/matsen/bjjflow/internal/workspace"
	"github.com/spf13/cobra"
)

func init() {
	exportCmd.Flags().StringP("output", "o", workspace.FileName, "Output file ('-' for stdout)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole workspace as JSON",
	Long: `Export every chart together with the current position, chart type,
mode and theme. The document can be loaded with 'bjf chart import' or used
as the bundled workspace file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		data, err := s.editor.SerializeWorkspace()
		if err != nil {
			return fmt.Errorf("serializing workspace: %w", err)
		}
		output, _ := cmd.Flags().GetString("output")
		return writeDocument(output, data)
	},
}
