package main

import (
	"os"
	"path/filepath"

	"github.com/matsen/bjjflow/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	initCmd.Flags().String("bundled", "", "Workspace file to load at startup (see 'bjf config bundled-path')")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a workspace",
	Long: `Create a bjjflow workspace in dir (default: the current directory).

The workspace keeps its configuration, saved charts and search cache under
.bjjflow/. Add .bjjflow/cache/ to .gitignore if the workspace is versioned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		root, err := filepath.Abs(root)
		if err != nil {
			exitWithError(ExitError, "resolving directory: %v", err)
		}
		if config.IsRepository(root) {
			exitWithError(ExitConfigError, "workspace already exists: %s", config.BjjflowPath(root))
		}

		cfg := &config.Config{}
		cfg.BundledPath, _ = cmd.Flags().GetString("bundled")
		if err := config.ValidateBundledPath(cfg.ResolveBundledPath(root)); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}

		if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", config.BjjflowPath(root), err)
		}
		if err := cfg.Save(root); err != nil {
			exitWithError(ExitError, "saving config: %v", err)
		}

		printStatus(StatusResponse{Status: "initialized", Path: root}, "Initialized bjjflow workspace in "+root)
		return nil
	},
}
