// Package catalog defines the closed enumerations behind brim's
// list-of-options settings.
//
// Every enumeration stores a stable raw integer value (assigned in
// declaration order, starting at 0) and carries a human-readable display
// label. The raw value is what the preference store persists; the label is
// what the settings screen renders. All enumerations satisfy the Option
// interface so generic code (the option picker, the CLI formatter) can
// operate on any of them.
//
// # Adding a Variant
//
// New variants must be appended after the existing ones. Raw values are
// persisted in user settings files, so reordering or removing variants
// would silently change the meaning of stored preferences.
//
// # Unknown Raw Values
//
// A raw value read from storage that matches no variant is not an error.
// FromRaw-style constructors report it with a false second return, and
// callers render "no selection" rather than failing.
package catalog
