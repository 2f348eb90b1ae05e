package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matsen/bjjflow/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.Flags().Bool("global", false, "Read or write the global config (~/.config/bjf/config.yml)")
	rootCmd.AddCommand(configCmd)
}

// ConfigResponse shows the workspace configuration.
type ConfigResponse struct {
	Root           string  `json:"root"`
	BundledPath    string  `json:"bundled_path"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  bjf config                              # Show workspace config
  bjf config bundled-path                 # Get specific value
  bjf config bundled-path charts.json     # Set value
  bjf config --global listen-addr :9000   # Set a global value

Workspace keys (.bjjflow/config.json):
  bundled-path     Workspace file loaded at startup in place of local state
  viewport-width   Minimum canvas width (200-20000, 0 for default)
  viewport-height  Minimum canvas height (200-20000, 0 for default)

Global keys (~/.config/bjf/config.yml):
  workspace-path        Default workspace when none is found upward
  youtube-rate-limit    Video metadata requests per second
  http-timeout-seconds  Timeout for video metadata requests
  listen-addr           Address for 'bjf serve'`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	if global, _ := cmd.Flags().GetBool("global"); global {
		return runGlobalConfig(args)
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("bundled-path:    %s\n", cfg.BundledPath)
			fmt.Printf("viewport-width:  %g\n", cfg.ViewportWidth)
			fmt.Printf("viewport-height: %g\n", cfg.ViewportHeight)
		} else {
			outputJSON(ConfigResponse{
				Root:           repoRoot,
				BundledPath:    cfg.BundledPath,
				ViewportWidth:  cfg.ViewportWidth,
				ViewportHeight: cfg.ViewportHeight,
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		var value string
		switch normalizedKey {
		case "bundled-path":
			value = cfg.BundledPath
		case "viewport-width":
			value = strconv.FormatFloat(cfg.ViewportWidth, 'g', -1, 64)
		case "viewport-height":
			value = strconv.FormatFloat(cfg.ViewportHeight, 'g', -1, 64)
		default:
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		printValue(normalizedKey, value)
		return nil
	}

	// Two args: set value
	value := args[1]

	switch normalizedKey {
	case "bundled-path":
		resolved := value
		if value != "" {
			resolved = (&config.Config{BundledPath: value}).ResolveBundledPath(repoRoot)
		}
		if err := config.ValidateBundledPath(resolved); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.BundledPath = value

	case "viewport-width", "viewport-height":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			exitWithError(ExitError, "invalid number: %s", value)
		}
		if err := config.ValidateViewport(v); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if normalizedKey == "viewport-width" {
			cfg.ViewportWidth = v
		} else {
			cfg.ViewportHeight = v
		}

	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}
	printUpdated(normalizedKey, value)
	return nil
}

func runGlobalConfig(args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if len(args) == 0 {
		values := make(map[string]string, len(config.GlobalKeys))
		for _, k := range config.GlobalKeys {
			values[k], _ = cfg.GetGlobalValue(k)
		}
		if !humanOutput {
			return outputJSON(values)
		}
		for _, k := range config.GlobalKeys {
			fmt.Printf("%-22s %s\n", normalizeKey(k)+":", values[k])
		}
		return nil
	}

	key := strings.ReplaceAll(normalizeKey(args[0]), "-", "_")
	if !slices.Contains(config.GlobalKeys, key) {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if len(args) == 1 {
		value, _ := cfg.GetGlobalValue(key)
		printValue(normalizeKey(key), value)
		return nil
	}

	// Copy so a failed update leaves the cached config untouched.
	updated := *cfg
	if key == "workspace_path" && args[1] != "" {
		expanded := config.ExpandPath(args[1])
		if !config.IsRepository(expanded) {
			exitWithError(ExitConfigError, "not a bjjflow workspace: %s", expanded)
		}
	}
	if err := updated.SetGlobalValue(key, args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := config.SaveGlobalConfig(&updated); err != nil {
		exitWithError(ExitError, "saving global config: %v", err)
	}
	printUpdated(normalizeKey(key), args[1])
	return nil
}

func printValue(key, value string) {
	if humanOutput {
		fmt.Println(value)
		return
	}
	outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
}

func printUpdated(key, value string) {
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
		return
	}
	outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

// normalizeKey converts key formats (bundled-path, bundled_path, Bundled-Path) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
