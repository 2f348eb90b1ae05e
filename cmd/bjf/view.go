package main

import (
	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/workspace"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(themeCmd)
}

var modeCmd = &cobra.Command{
	Use:       "mode [builder|user]",
	Short:     "Show or set the editing mode",
	Long:      `Show or set the editing mode. In user mode the charts are read-only.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(workspace.ModeBuilder), string(workspace.ModeUser)},
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		if len(args) == 1 {
			if args[0] != string(workspace.ModeBuilder) && args[0] != string(workspace.ModeUser) {
				exitWithError(ExitDataError, "invalid mode %q (valid: builder, user)", args[0])
			}
			s.mustApply(editor.SetMode{Mode: workspace.Mode(args[0])})
		}
		mode := string(s.editor.View().Mode)
		if humanOutput {
			outputHuman("Mode: %s\n", mode)
			return nil
		}
		return outputJSON(UpdateResponse{Status: "ok", Key: "mode", Value: mode})
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or set the colour theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(workspace.ThemeDark), string(workspace.ThemeLight)},
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		if len(args) == 1 {
			if args[0] != string(workspace.ThemeDark) && args[0] != string(workspace.ThemeLight) {
				exitWithError(ExitDataError, "invalid theme %q (valid: dark, light)", args[0])
			}
			s.mustApply(editor.SetTheme{Theme: workspace.Theme(args[0])})
		}
		theme := string(s.editor.View().Theme)
		if humanOutput {
			outputHuman("Theme: %s\n", theme)
			return nil
		}
		return outputJSON(UpdateResponse{Status: "ok", Key: "theme", Value: theme})
	},
}
