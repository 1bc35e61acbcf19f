package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/merrow/brim/internal/catalog"
	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/discovery"
	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
	"github.com/merrow/brim/internal/settings/tui"
	"github.com/merrow/brim/internal/ui"
)

// Configuration command flags
var (
	configPath   string
	dbPath       string
	logLevel     string
	outputFormat string
	scanTimeout  int
	syncHost     string
	syncPort     int
	setRaw       bool
	resetAll     bool
)

func init() {
	// Store selection and logging flags (persistent on root)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file path (default: per-user config directory)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite settings database (overrides --config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides BRIM_LOG_LEVEL")

	// Add subcommands directly to root
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(syncCmd)
}

// initLogging initializes logging from the --log-level flag, falling back
// to the BRIM_LOG_LEVEL environment variable (silent by default).
func initLogging() {
	var err error
	if logLevel != "" {
		err = logging.Initialize(logLevel)
	} else {
		err = logging.InitializeFromEnv()
	}
	// Ignore error, GetLogger will create fallback logger
	_ = err
}

// settingsStore is the surface the CLI needs from either backend: the
// Store interface plus the reset operations both implementations carry.
type settingsStore interface {
	prefs.Store
	Reset(key string) error
	ResetAll() error
}

// openStore opens the settings store selected by the global flags and
// returns it together with a display path for output.
func openStore() (settingsStore, string, error) {
	if dbPath != "" {
		store, err := prefs.OpenSQLiteStore(dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open settings database: %w", err)
		}
		return store, dbPath, nil
	}

	store, err := prefs.OpenFileStore(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open settings file: %w", err)
	}
	return store, store.Path(), nil
}

// tuiCmd launches the interactive settings TUI
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive settings TUI",
	Long: `Launch the interactive settings interface.

The TUI provides the full settings surface:
- General settings (homepage, search engine, tab bar)
- Privacy settings (cookie policy, pop-up blocking, private tabs)
- Passcode management and private data clearing
- Diagnostics and support pages

This is the recommended way to manage settings for most users.`,
	Example: `  # Launch the settings TUI
  brim-cfg tui
  # Or simply (tui is default):
  brim-cfg

  # Manage a SQLite profile store
  brim-cfg tui --db ~/.config/brim/profiles.db`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	initLogging()

	store, path, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return tui.Run(store, path)
}

// scanCmd discovers running instances on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for running brim instances on the network",
	Long: `Scan for running brim instances using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from brim control endpoints and
displays all discovered instances with their addresses, versions, and
profiles.`,
	Example: `  # Scan for 5 seconds (default)
  brim-cfg scan

  # Quick 2-second scan
  brim-cfg scan --timeout 2

  # Longer scan for busy networks
  brim-cfg scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	ui.PrintPleaseWait("Scanning for brim instances", fmt.Sprintf("up to %d seconds", scanTimeout))

	instances, err := discovery.ScanForInstances(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Println("No instances found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure a brim instance is running with its control endpoint enabled")
		fmt.Println("  - Check that mDNS traffic is allowed on your network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use 'sync --host <ip>' to target an instance directly if discovery fails")
		return nil
	}

	fmt.Printf("Found %d instance(s):\n\n", len(instances))

	for i, inst := range instances {
		fmt.Printf("%d. %s\n", i+1, inst.Name)
		fmt.Printf("   Address:  %s\n", inst.Addr())
		fmt.Printf("   Version:  %s\n", inst.Version)
		fmt.Printf("   Profile:  %s\n", inst.Profile)
		fmt.Println()
	}

	fmt.Println("Use 'brim-cfg sync' to push your settings to an instance")
	fmt.Println("Use 'brim-cfg' for the interactive settings TUI")

	return nil
}

// showCmd displays the current settings
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Long: `Display every setting with its kind and effective value.

Values come from the selected settings store, with schema defaults filled
in for keys that were never written. Enumeration keys additionally show
the variant token and label.`,
	Example: `  # Show settings from the default store
  brim-cfg show

  # Compact key=value output
  brim-cfg show --format compact

  # JSON output for scripting
  brim-cfg show --format json

  # Show a SQLite profile store
  brim-cfg show --db ~/.config/brim/profiles.db`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	store, path, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch outputFormat {
	case "compact":
		for _, def := range prefs.Definitions {
			fmt.Printf("%s=%s\n", def.Key, scalarValue(store, def))
		}
	case "json":
		data, err := json.MarshalIndent(store.Snapshot(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		fallthrough
	default:
		ui.PrintCommandHeader("Brim Settings", "brim-cfg show", map[string]string{
			"Source": path,
		})
		for _, def := range prefs.Definitions {
			fmt.Printf("  %-26s %-7s %s\n", def.Key, def.Kind, describeValue(store, def))
		}
		fmt.Println()
		fmt.Println(ui.RenderHorizontalDivider(ui.GetTerminalWidth()-2, "─"))
		fmt.Printf("  %d settings\n", len(prefs.Definitions))
	}

	return nil
}

// scalarValue renders a value in its plain scripting form: true/false for
// booleans, the raw integer for enumerations, the bare string otherwise.
func scalarValue(store prefs.Store, def prefs.Definition) string {
	switch def.Kind {
	case prefs.KindBool:
		return strconv.FormatBool(store.Bool(def.Key))
	case prefs.KindEnum:
		return strconv.Itoa(store.Int(def.Key))
	case prefs.KindString:
		return store.String(def.Key)
	default:
		return ""
	}
}

// describeValue renders a value for the detailed listing, with the variant
// token and label for enumeration keys.
func describeValue(store prefs.Store, def prefs.Definition) string {
	switch def.Kind {
	case prefs.KindBool:
		return strconv.FormatBool(store.Bool(def.Key))
	case prefs.KindEnum:
		raw := store.Int(def.Key)
		if opt, ok := catalog.FindByRaw(def.Variants(), raw); ok {
			return fmt.Sprintf("%s (%s)", opt.String(), opt.Label())
		}
		return fmt.Sprintf("%d (no matching variant)", raw)
	case prefs.KindString:
		value := store.String(def.Key)
		if value == "" {
			return `""`
		}
		return value
	default:
		return ""
	}
}

// getCmd prints a single setting value
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting value",
	Long: `Print the effective value of a single setting.

Boolean keys print true/false, string keys print the bare value, and
enumeration keys print the variant token (e.g. "never"). An enumeration
value no variant matches prints as its raw integer.`,
	Example: `  # Read the homepage
  brim-cfg get homepageURL

  # Read an enumeration key
  brim-cfg get tabBarVisibility`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	key := args[0]
	def, ok := prefs.DefinitionFor(key)
	if !ok {
		return fmt.Errorf("unknown setting %q (see 'brim-cfg show' for the full list)", key)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch def.Kind {
	case prefs.KindBool:
		fmt.Println(strconv.FormatBool(store.Bool(key)))
	case prefs.KindEnum:
		raw := store.Int(key)
		if opt, ok := catalog.FindByRaw(def.Variants(), raw); ok {
			fmt.Println(opt.String())
		} else {
			fmt.Println(raw)
		}
	case prefs.KindString:
		fmt.Println(store.String(key))
	}

	return nil
}

// setCmd writes a single setting value
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one setting value",
	Long: `Write a single setting and persist it immediately.

Boolean keys accept true/false, string keys store the value verbatim,
and enumeration keys accept either a variant token (e.g. "never") or a
raw integer. Raw integers no variant matches are rejected unless --raw
is set; the browser treats such values as "no selection" rather than an
error, so storing one is allowed but has to be explicit.`,
	Example: `  # Toggle pop-up blocking
  brim-cfg set blockPopups false

  # Pick a tab bar mode by token
  brim-cfg set tabBarVisibility never

  # Pick by raw value
  brim-cfg set tabBarVisibility 2

  # Store an out-of-range raw value deliberately
  brim-cfg set tabBarVisibility 7 --raw`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&setRaw, "raw", false, "Allow enum raw values no variant matches")
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	key, value := args[0], args[1]
	def, ok := prefs.DefinitionFor(key)
	if !ok {
		return fmt.Errorf("unknown setting %q (see 'brim-cfg show' for the full list)", key)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch def.Kind {
	case prefs.KindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		old := store.Bool(key)
		if err := store.SetBool(key, b); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		logging.LogPrefChange(key, old, b)
		fmt.Printf("%s = %t\n", key, b)

	case prefs.KindEnum:
		raw, err := parseEnumValue(def, value)
		if err != nil {
			return err
		}
		old := store.Int(key)
		if err := store.SetInt(key, raw); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		logging.LogPrefChange(key, old, raw)
		if opt, ok := catalog.FindByRaw(def.Variants(), raw); ok {
			fmt.Printf("%s = %s (%s)\n", key, opt.String(), opt.Label())
		} else {
			fmt.Printf("%s = %d (no matching variant)\n", key, raw)
		}

	case prefs.KindString:
		old := store.String(key)
		if err := store.SetString(key, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		logging.LogPrefChange(key, old, value)
		fmt.Printf("%s = %s\n", key, value)
	}

	return nil
}

// parseEnumValue resolves an enum argument: a variant token, a raw value
// some variant matches, or (only with --raw) any integer at all.
func parseEnumValue(def *prefs.Definition, value string) (int, error) {
	options := def.Variants()

	if opt, ok := catalog.FindByToken(options, value); ok {
		return opt.Raw(), nil
	}

	raw, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s expects a variant token or integer, got %q (tokens: %s)",
			def.Key, value, tokenList(options))
	}

	if _, ok := catalog.FindByRaw(options, raw); !ok && !setRaw {
		return 0, fmt.Errorf("%d matches no %s variant (tokens: %s); pass --raw to store it anyway",
			raw, def.Key, tokenList(options))
	}

	return raw, nil
}

// tokenList joins the valid variant tokens for error messages.
func tokenList(options []catalog.Option) string {
	tokens := make([]string, len(options))
	for i, opt := range options {
		tokens[i] = opt.String()
	}
	return strings.Join(tokens, ", ")
}

// resetCmd restores settings to their declared defaults
var resetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore settings to their defaults",
	Long: `Restore one setting, or every setting, to its declared default.

Resetting everything asks for typed confirmation because it also removes
a configured passcode together with its salt.`,
	Example: `  # Reset one setting
  brim-cfg reset tabBarVisibility

  # Reset everything (asks for confirmation)
  brim-cfg reset --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Reset every setting to its default")
}

func runReset(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	if resetAll == (len(args) == 1) {
		return fmt.Errorf("specify either a key or --all")
	}

	store, path, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if resetAll {
		if !ui.ResetAllConfirmation() {
			return nil // User cancelled
		}
		if err := store.ResetAll(); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		ui.PrintSuccess("All settings reset", map[string]string{
			"Store":    path,
			"Settings": strconv.Itoa(len(prefs.Definitions)),
		})
		return nil
	}

	key := args[0]
	def, ok := prefs.DefinitionFor(key)
	if !ok {
		return fmt.Errorf("unknown setting %q (see 'brim-cfg show' for the full list)", key)
	}
	if err := store.Reset(key); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}

	fmt.Printf("%s reset to %s\n", key, describeValue(store, *def))
	return nil
}

// syncCmd pushes the local settings snapshot to a running instance
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push settings to a running brim instance",
	Long: `Push the current settings snapshot to a running brim instance over
its local control endpoint.

Without --host the instance is located via mDNS discovery, which must
find exactly one instance; use --host (and optionally --port) to select
the target explicitly. After pushing, the instance state is read back
and compared against what was sent.`,
	Example: `  # Sync to the only instance on the network
  brim-cfg sync

  # Sync to an explicit instance
  brim-cfg sync --host 192.168.1.30 --port 8470

  # Sync a SQLite profile store
  brim-cfg sync --db ~/.config/brim/profiles.db`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncHost, "host", "", "Instance address (skips discovery)")
	syncCmd.Flags().IntVar(&syncPort, "port", discovery.DefaultPort, "Instance control endpoint port")
}

func runSync(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()

	store, path, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runner := ui.NewTaskRunner(ui.TaskConfig{
		Title:      "Settings Sync",
		Command:    "brim-cfg sync",
		Params:     map[string]string{"Store": path},
		TotalSteps: 4,
		StepNames: []string{
			"Locate instance",
			"Connect",
			"Push settings",
			"Verify",
		},
	})

	var rejected map[string]string

	_, err = runner.RunWithResult(cmd.Context(), func(onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, "", ui.StepRunning, "")
		host, port, label, err := resolveInstance()
		if err != nil {
			onStep(1, "", ui.StepFailed, "")
			return nil, err
		}
		onStep(1, "", ui.StepComplete, label)

		onStep(2, "", ui.StepRunning, "")
		client := control.NewClient(host, port)
		defer client.Close()
		if err := client.Connect(); err != nil {
			onStep(2, "", ui.StepFailed, "")
			runner.SetTroubleshooting(control.GetTroubleshootingTips(err))
			return nil, err
		}
		greeting := ""
		if hello := client.Hello(); hello != nil {
			greeting = strings.TrimSpace(hello.Name + " " + hello.Version)
		}
		onStep(2, "", ui.StepComplete, greeting)

		onStep(3, "", ui.StepRunning, "")
		snapshot := store.Snapshot()
		ack, err := client.Push(snapshot)
		if err != nil {
			onStep(3, "", ui.StepFailed, "")
			runner.SetTroubleshooting(control.GetTroubleshootingTips(err))
			return nil, err
		}
		rejected = ack.Rejected
		onStep(3, "", ui.StepComplete, fmt.Sprintf("%d settings", ack.Applied))

		// Verify only what the instance accepted
		onStep(4, "", ui.StepRunning, "")
		expected := snapshot
		if len(ack.Rejected) > 0 {
			expected = make(map[string]any, len(snapshot))
			for k, v := range snapshot {
				if _, skip := ack.Rejected[k]; !skip {
					expected[k] = v
				}
			}
		}
		if err := client.VerifyState(expected); err != nil {
			onStep(4, "", ui.StepFailed, "")
			return nil, err
		}
		onStep(4, "", ui.StepComplete, "")

		details := map[string]string{
			"Instance": label,
			"Applied":  strconv.Itoa(ack.Applied),
		}
		if len(ack.Rejected) > 0 {
			details["Rejected"] = strconv.Itoa(len(ack.Rejected))
		}
		return details, nil
	})
	if err != nil {
		return err
	}

	if len(rejected) > 0 {
		reasons := make(map[string]string, len(rejected))
		for key, reason := range rejected {
			reasons[key] = reason
		}
		ui.PrintWarning("Some settings were rejected", reasons)
	}

	return nil
}

// resolveInstance picks the sync target: the --host flag when set,
// otherwise mDNS discovery, which must find exactly one instance.
func resolveInstance() (string, int, string, error) {
	if syncHost != "" {
		return syncHost, syncPort, fmt.Sprintf("%s:%d", syncHost, syncPort), nil
	}

	instances, err := discovery.ScanForInstances(discovery.DefaultScanTimeout)
	if err != nil {
		return "", 0, "", fmt.Errorf("discovery failed: %w", err)
	}

	if len(instances) == 0 {
		return "", 0, "", fmt.Errorf("no instances found, use --host to specify the target manually")
	}

	if len(instances) > 1 {
		names := make([]string, len(instances))
		for i, inst := range instances {
			names[i] = fmt.Sprintf("%s (%s)", inst.Name, inst.Addr())
		}
		return "", 0, "", fmt.Errorf("multiple instances found: %s; use --host to pick one", strings.Join(names, ", "))
	}

	inst := instances[0]
	return inst.IP, inst.Port, fmt.Sprintf("%s (%s)", inst.Name, inst.Addr()), nil
}
