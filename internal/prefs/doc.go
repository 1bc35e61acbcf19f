// Package prefs provides durable storage for brim's user preferences.
//
// Preferences are typed key-value pairs: booleans, integer-backed
// enumerations (see internal/catalog), and strings. Every key in use is
// declared in the schema (schema.go) together with its kind and default
// value. Reads are infallible: a missing or malformed stored value yields
// the declared default. Writes are synchronous and durable: a successful
// Set call means the value has been persisted.
//
// # Backends
//
// Three Store implementations are provided:
//   - FileStore: a YAML file in the OS-appropriate config directory,
//     written atomically (temp file + rename) on every change.
//   - SQLiteStore: a table inside a brim profile database, for
//     installations that keep all profile data in one SQLite file.
//   - MemoryStore: a mutex-guarded map for tests and the emulator.
//
// # File Location
//
// The default settings file follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/brim/settings.yaml or $HOME/.config/brim/settings.yaml
//   - macOS: $HOME/.config/brim/settings.yaml
//   - Windows: %LOCALAPPDATA%\brim\settings.yaml
//
// # Lifecycle
//
// Stores are constructed explicitly and passed to the code that needs
// them. There is no package-level singleton: keeping the store an explicit
// dependency keeps the settings UI testable against a MemoryStore.
package prefs
