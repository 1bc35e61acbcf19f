package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName      = "brim"
	settingsFile = "settings.yaml"

	// settingsVersion is the on-disk format version. Bump only with a
	// migration path for existing files.
	settingsVersion = 1
)

// GetConfigDir returns the OS-appropriate configuration directory for brim.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/brim or $HOME/.config/brim
//   - macOS: $HOME/.config/brim (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\brim
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetSettingsPath returns the full path to the default settings file.
func GetSettingsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, settingsFile), nil
}

// settingsDocument is the on-disk YAML shape.
type settingsDocument struct {
	Version int            `yaml:"version"`
	Values  map[string]any `yaml:"values,omitempty"`
}

// FileStore persists preferences to a YAML file. Values are held in
// memory and the whole file is rewritten atomically on every set, so a
// successful setter call means the change is on disk.
type FileStore struct {
	path string

	mu  sync.Mutex
	doc settingsDocument
}

// OpenFileStore loads (or initializes) the settings file at path.
// An empty path selects the default location under GetSettingsPath().
// A missing file is not an error: the store starts from schema defaults
// and creates the file on the first write.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		path, err = GetSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve settings path: %w", err)
		}
	}

	s := &FileStore{
		path: path,
		doc: settingsDocument{
			Version: settingsVersion,
			Values:  make(map[string]any),
		},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var doc settingsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if doc.Version != settingsVersion {
		return nil, fmt.Errorf("unsupported settings version: %d (expected %d)", doc.Version, settingsVersion)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]any)
	}

	s.doc = doc
	return s, nil
}

// Path returns the file the store reads from and writes to.
func (s *FileStore) Path() string {
	return s.path
}

// Bool returns the stored boolean for key, or the schema default.
func (s *FileStore) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.doc.Values[key].(bool); ok {
		return b
	}
	return DefaultBool(key)
}

// SetBool updates a boolean preference and rewrites the file.
func (s *FileStore) SetBool(key string, value bool) error {
	if err := checkKind(key, KindBool); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Values[key] = value
	return s.save()
}

// Int returns the stored integer for key, or the schema default.
func (s *FileStore) Int(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := coerceInt(s.doc.Values[key]); ok {
		return n
	}
	return DefaultInt(key)
}

// SetInt updates an integer-backed preference and rewrites the file.
func (s *FileStore) SetInt(key string, value int) error {
	if err := checkKind(key, KindEnum); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Values[key] = value
	return s.save()
}

// String returns the stored string for key, or the schema default.
func (s *FileStore) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if str, ok := s.doc.Values[key].(string); ok {
		return str
	}
	return DefaultString(key)
}

// SetString updates a string preference and rewrites the file.
func (s *FileStore) SetString(key string, value string) error {
	if err := checkKind(key, KindString); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Values[key] = value
	return s.save()
}

// Snapshot returns every declared preference with defaults filled in.
func (s *FileStore) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotFrom(s.doc.Values)
}

// Reset removes the stored value for key so the schema default applies
// again. Resetting a key that was never written is a no-op.
func (s *FileStore) Reset(key string) error {
	if _, ok := DefinitionFor(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc.Values[key]; !ok {
		return nil
	}
	delete(s.doc.Values, key)
	return s.save()
}

// ResetAll removes every stored value, restoring all schema defaults.
func (s *FileStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Values = make(map[string]any)
	return s.save()
}

// Close implements Store. The file store holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// save writes the document atomically. Callers must hold s.mu.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte(`# Brim Settings File
# Stores user preferences for the brim browser. Edit with 'brim-cfg'
# or directly; values map to the keys shown by 'brim-cfg show'.
#
# Location: ` + s.path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	return nil
}
