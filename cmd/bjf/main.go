// Package main provides the bjf CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/matsen/bjjflow/internal/config"
	"github.com/matsen/bjjflow/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// workspaceDir overrides the directory the workspace is searched from
	workspaceDir string
	// verbose enables info-level status logging on stderr
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bjf",
	Short: "Jiu-jitsu technique flow chart CLI",
	Long: `bjf builds and explores flow charts of grappling techniques.

A workspace holds one chart per position (Mount, Side Control, Closed Guard,
Half Guard, Open Guard, Back Control, Standing) and flow type (Attacks,
Escapes). Each chart is a directed graph of positions, attacks, reactions
and finishes, with video references attached.

Core features:
  - Edit nodes, transitions and anchors; automatic left-to-right layout
  - Import and export chart and workspace JSON documents
  - Video reference titles and transcript-driven chart generation
  - Full-text search across every chart
  - Interactive HTML visualization and a JSON HTTP API

All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&workspaceDir, "dir", "", "Workspace directory (default: search upward from the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log status messages to stderr")
	rootCmd.Version = Version
}

// newLogger returns the stderr logger used for status messages.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getStartingDirectory returns the directory to start searching for a workspace:
// --dir when set, else the current directory.
func getStartingDirectory() (string, int) {
	if workspaceDir != "" {
		return workspaceDir, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the workspace, exits on error.
// Returns the workspace root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err == nil {
		return repoRoot
	}

	// Fall back to the configured default workspace
	if workspaceDir == "" {
		if fallback := config.GetWorkspacePath(); fallback != "" && config.IsRepository(fallback) {
			return fallback
		}
	}

	fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
	os.Exit(ExitConfigError)
	return ""
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite search index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
