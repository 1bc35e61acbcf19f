package prefs

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/merrow/brim/internal/catalog"
)

// openTestStores builds one store of each backend, rooted in temp
// directories that vanish after the test.
func openTestStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := OpenFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("OpenFileStore() error = %v", err)
	}

	sqliteStore, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreReadsFallBackToDefaults(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if got := s.Bool(KeyBlockPopups); got != true {
				t.Errorf("Bool(blockPopups) = %v, want default true", got)
			}
			if got := s.Int(KeyTabBarVisibility); got != 0 {
				t.Errorf("Int(tabBarVisibility) = %d, want default 0", got)
			}
			if got := s.String(KeySearchEngine); got != "duckduckgo" {
				t.Errorf("String(searchEngine) = %q, want default %q", got, "duckduckgo")
			}
			if got := s.Bool("noSuchKey"); got != false {
				t.Errorf("Bool(noSuchKey) = %v, want false", got)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SetBool(KeyBlockPopups, false); err != nil {
				t.Fatalf("SetBool() error = %v", err)
			}
			if got := s.Bool(KeyBlockPopups); got != false {
				t.Errorf("Bool() after SetBool(false) = %v, want false", got)
			}

			if err := s.SetInt(KeyTabBarVisibility, catalog.TabBarNever.Raw()); err != nil {
				t.Fatalf("SetInt() error = %v", err)
			}
			if got := s.Int(KeyTabBarVisibility); got != 2 {
				t.Errorf("Int() after SetInt(2) = %d, want 2", got)
			}

			if err := s.SetString(KeyHomepageURL, "https://example.net"); err != nil {
				t.Fatalf("SetString() error = %v", err)
			}
			if got := s.String(KeyHomepageURL); got != "https://example.net" {
				t.Errorf("String() = %q, want %q", got, "https://example.net")
			}
		})
	}
}

func TestStoreRejectsUnknownKeys(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SetBool("noSuchKey", true)
			if !errors.Is(err, ErrUnknownKey) {
				t.Errorf("SetBool(noSuchKey) error = %v, want ErrUnknownKey", err)
			}
		})
	}
}

func TestStoreRejectsKindMismatch(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SetBool(KeyHomepageURL, true); !errors.Is(err, ErrKindMismatch) {
				t.Errorf("SetBool(homepageURL) error = %v, want ErrKindMismatch", err)
			}
			if err := s.SetInt(KeyBlockPopups, 1); !errors.Is(err, ErrKindMismatch) {
				t.Errorf("SetInt(blockPopups) error = %v, want ErrKindMismatch", err)
			}
			if err := s.SetString(KeyTabBarVisibility, "never"); !errors.Is(err, ErrKindMismatch) {
				t.Errorf("SetString(tabBarVisibility) error = %v, want ErrKindMismatch", err)
			}
		})
	}
}

func TestStorePreservesUnknownEnumRaw(t *testing.T) {
	// A raw outside the declared variants is storable; rendering treats
	// it as "no selection" rather than an error.
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SetInt(KeyCookieAcceptPolicy, 42); err != nil {
				t.Fatalf("SetInt(42) error = %v", err)
			}
			if got := s.Int(KeyCookieAcceptPolicy); got != 42 {
				t.Errorf("Int() = %d, want 42", got)
			}
			if _, ok := catalog.CookiePolicyFromRaw(s.Int(KeyCookieAcceptPolicy)); ok {
				t.Error("CookiePolicyFromRaw(42) = ok, want unknown")
			}
		})
	}
}

func TestStoreSnapshot(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SetBool(KeySaveLogins, false); err != nil {
				t.Fatalf("SetBool() error = %v", err)
			}

			snap := s.Snapshot()
			if len(snap) != len(Definitions) {
				t.Errorf("Snapshot() has %d keys, want %d", len(snap), len(Definitions))
			}
			if got := snap[KeySaveLogins]; got != false {
				t.Errorf("snapshot saveLogins = %v, want false", got)
			}
			if got := snap[KeyBlockPopups]; got != true {
				t.Errorf("snapshot blockPopups = %v, want default true", got)
			}
		})
	}
}

func TestApplySnapshot(t *testing.T) {
	s := NewMemoryStore()

	applied, rejected := ApplySnapshot(s, map[string]any{
		KeyBlockPopups:        false,
		KeyTabBarVisibility:   float64(2), // JSON decoding yields float64
		KeyHomepageURL:        "brim:blank",
		"noSuchKey":           true,
		KeyCookieAcceptPolicy: "never", // wrong type for an enum key
	})

	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if len(rejected) != 2 {
		t.Errorf("rejected = %v, want 2 entries", rejected)
	}
	if _, ok := rejected["noSuchKey"]; !ok {
		t.Error("rejected missing entry for noSuchKey")
	}
	if got := s.Int(KeyTabBarVisibility); got != 2 {
		t.Errorf("Int(tabBarVisibility) = %d, want 2", got)
	}
	if got := s.String(KeyHomepageURL); got != "brim:blank" {
		t.Errorf("String(homepageURL) = %q, want %q", got, "brim:blank")
	}
}

func BenchmarkMemoryStoreSnapshot(b *testing.B) {
	s := NewMemoryStore()
	for i := 0; i < b.N; i++ {
		s.Snapshot()
	}
}
