// Brim-emu is a control-endpoint emulator for the brim terminal browser.
//
// It speaks the same WebSocket control protocol a running brim instance
// exposes, announces itself over mDNS, and accepts settings pushes from
// brim-cfg. Use it to exercise sync flows without a browser running, or
// as a protocol reference when debugging.
//
// Usage:
//
//	brim-emu serve [flags]
//
// See 'brim-emu serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/merrow/brim/internal/server"
	"github.com/merrow/brim/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brim-emu",
	Short: "Brim Control Endpoint Emulator",
	Long: `A standalone emulator for the brim browser control endpoint.

The emulator accepts WebSocket control connections, applies settings
pushes against an in-memory store, and answers state queries, so sync
flows can be tested without a running browser.

Note: For settings management, use the separate 'brim-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host     string
	port     int
	name     string
	profile  string
	announce bool
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control endpoint emulator",
	Long: `Start the emulator and accept control connections from brim-cfg.

By default the emulator announces itself over mDNS so 'brim-cfg scan'
and 'brim-cfg sync' can find it without flags. Use --announce=false on
networks where mDNS traffic is filtered and target it directly with
'brim-cfg sync --host'.

The emulator keeps its settings state in memory only; every start
begins from schema defaults.`,
	Example: `  # Start on the default port with mDNS announcement
  brim-emu serve

  # Start on a custom port with debug logging
  brim-emu serve --port 9470 --log-level debug

  # Start quietly for direct connections only
  brim-emu serve --announce=false --host 127.0.0.1

  # Emulate a named instance with its own profile
  brim-emu serve --name kitchen-pi --profile media`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8470, "Control endpoint port (0 = pick a free port)")
	serveCmd.Flags().StringVar(&name, "name", "", "Instance name for mDNS announcement (default: hostname)")
	serveCmd.Flags().StringVar(&profile, "profile", "default", "Profile name reported to clients")
	serveCmd.Flags().BoolVar(&announce, "announce", true, "Announce the emulator over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}

	config := &server.Config{
		Host:     host,
		Port:     port,
		Name:     name,
		Profile:  profile,
		Announce: announce,
		LogLevel: logLevel,
	}

	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}

	return srv.Run()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brim-emu %s (commit: %s)\n", version.Version, version.Commit)
	},
}
