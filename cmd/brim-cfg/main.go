// Brim-cfg is the settings utility for the brim terminal browser.
//
// It provides an interactive settings TUI, direct get/set/reset commands
// for scripting, instance discovery, and settings sync to running brim
// instances over their local control endpoint.
//
// Usage:
//
//	brim-cfg [command] [flags]
//
// Running without arguments launches the interactive settings TUI.
// See 'brim-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/merrow/brim/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brim-cfg",
	Short: "Brim Browser Settings Utility",
	Long: `A standalone utility for managing brim browser settings.

Provides an interactive settings TUI, scripted get/set/reset access,
instance discovery, and settings sync to running brim instances.

If no command is specified, the interactive settings TUI will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the settings TUI when no subcommand provided
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brim-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
