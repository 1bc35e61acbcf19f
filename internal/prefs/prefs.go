package prefs

import (
	"errors"
	"fmt"
)

// Errors returned by Store setters. Reads never fail; they fall back to
// the schema default instead.
var (
	// ErrUnknownKey indicates a key that is not declared in the schema.
	ErrUnknownKey = errors.New("unknown preference key")

	// ErrKindMismatch indicates a typed setter was called for a key of a
	// different kind (e.g. SetBool on a string preference).
	ErrKindMismatch = errors.New("preference kind mismatch")
)

// Store is the persistence boundary for user preferences.
//
// Getters are infallible: a missing value, an unknown key, or a stored
// value of the wrong type yields the schema default (or the zero value
// for keys outside the schema). Setters persist synchronously and return
// an error only for unknown keys, kind mismatches, or storage failures.
type Store interface {
	// Bool returns the current value of a boolean preference.
	Bool(key string) bool

	// SetBool updates a boolean preference and persists it immediately.
	SetBool(key string, value bool) error

	// Int returns the current value of an integer-backed preference.
	// For enumeration keys this is the raw variant value; it may be a
	// value no variant matches, which callers render as "no selection".
	Int(key string) int

	// SetInt updates an integer-backed preference and persists it
	// immediately. Enumeration range is deliberately not enforced here.
	SetInt(key string, value int) error

	// String returns the current value of a string preference.
	String(key string) string

	// SetString updates a string preference and persists it immediately.
	SetString(key string, value string) error

	// Snapshot returns the effective value of every declared preference,
	// with schema defaults filled in for keys that were never written.
	Snapshot() map[string]any

	// Close releases any resources held by the store.
	Close() error
}

// checkKind validates that key is declared with the wanted kind.
func checkKind(key string, want Kind) error {
	def, ok := DefinitionFor(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if def.Kind != want {
		return fmt.Errorf("%w: %q is %s, not %s", ErrKindMismatch, key, def.Kind, want)
	}
	return nil
}

// snapshotFrom builds a full snapshot by overlaying stored values on the
// schema defaults. Stored values of the wrong type are ignored.
func snapshotFrom(values map[string]any) map[string]any {
	snap := make(map[string]any, len(Definitions))
	for _, def := range Definitions {
		snap[def.Key] = def.Default
		v, ok := values[def.Key]
		if !ok {
			continue
		}
		switch def.Kind {
		case KindBool:
			if b, ok := v.(bool); ok {
				snap[def.Key] = b
			}
		case KindEnum:
			if n, ok := coerceInt(v); ok {
				snap[def.Key] = n
			}
		case KindString:
			if s, ok := v.(string); ok {
				snap[def.Key] = s
			}
		}
	}
	return snap
}

// coerceInt accepts the integer representations produced by the YAML and
// JSON decoders in addition to plain ints.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// ApplySnapshot writes every recognized key of a snapshot into the store.
// Unknown keys and mistyped values are collected per key rather than
// aborting the whole application. Returns the number of keys applied.
func ApplySnapshot(s Store, values map[string]any) (int, map[string]string) {
	applied := 0
	rejected := make(map[string]string)

	for key, v := range values {
		def, ok := DefinitionFor(key)
		if !ok {
			rejected[key] = "unknown key"
			continue
		}

		var err error
		switch def.Kind {
		case KindBool:
			b, ok := v.(bool)
			if !ok {
				rejected[key] = fmt.Sprintf("expected bool, got %T", v)
				continue
			}
			err = s.SetBool(key, b)
		case KindEnum:
			n, ok := coerceInt(v)
			if !ok {
				rejected[key] = fmt.Sprintf("expected integer, got %T", v)
				continue
			}
			err = s.SetInt(key, n)
		case KindString:
			str, ok := v.(string)
			if !ok {
				rejected[key] = fmt.Sprintf("expected string, got %T", v)
				continue
			}
			err = s.SetString(key, str)
		}

		if err != nil {
			rejected[key] = err.Error()
			continue
		}
		applied++
	}

	return applied, rejected
}
