package prefs

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO settings (key, kind, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key)
		DO UPDATE SET kind = ?, value = ?, updated_at = ?
	`

	sqliteSelectAllSQL = `
		SELECT key, kind, value FROM settings
	`

	sqliteDeleteSQL = `
		DELETE FROM settings WHERE key = ?
	`

	sqliteDeleteAllSQL = `
		DELETE FROM settings
	`
)

// SQLiteStore persists preferences in a settings table inside a brim
// profile database. All values are cached in memory at open so reads
// stay infallible; writes go through to the database synchronously.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.Mutex
	values map[string]any
}

// OpenSQLiteStore opens (or creates) the profile database at path and
// loads the settings table.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping profile database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		values: make(map[string]any),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate creates the settings table when it does not exist yet.
func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// loadAll reads every row into the in-memory cache. Rows with unknown
// keys or undecodable values are skipped, matching the tolerant read
// semantics of the other backends.
func (s *SQLiteStore) loadAll() error {
	rows, err := s.db.Query(sqliteSelectAllSQL)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, kind, value string
		if err := rows.Scan(&key, &kind, &value); err != nil {
			return fmt.Errorf("failed to scan settings row: %w", err)
		}
		if v, ok := decodeValue(kind, value); ok {
			s.values[key] = v
		}
	}
	return rows.Err()
}

// Bool returns the stored boolean for key, or the schema default.
func (s *SQLiteStore) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.values[key].(bool); ok {
		return b
	}
	return DefaultBool(key)
}

// SetBool updates a boolean preference and persists it.
func (s *SQLiteStore) SetBool(key string, value bool) error {
	if err := checkKind(key, KindBool); err != nil {
		return err
	}
	return s.store(key, KindBool, strconv.FormatBool(value), value)
}

// Int returns the stored integer for key, or the schema default.
func (s *SQLiteStore) Int(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := coerceInt(s.values[key]); ok {
		return n
	}
	return DefaultInt(key)
}

// SetInt updates an integer-backed preference and persists it.
func (s *SQLiteStore) SetInt(key string, value int) error {
	if err := checkKind(key, KindEnum); err != nil {
		return err
	}
	return s.store(key, KindEnum, strconv.Itoa(value), value)
}

// String returns the stored string for key, or the schema default.
func (s *SQLiteStore) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if str, ok := s.values[key].(string); ok {
		return str
	}
	return DefaultString(key)
}

// SetString updates a string preference and persists it.
func (s *SQLiteStore) SetString(key string, value string) error {
	if err := checkKind(key, KindString); err != nil {
		return err
	}
	return s.store(key, KindString, value, value)
}

// Snapshot returns every declared preference with defaults filled in.
func (s *SQLiteStore) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotFrom(s.values)
}

// Reset removes the stored value for key.
func (s *SQLiteStore) Reset(key string) error {
	if _, ok := DefinitionFor(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(sqliteDeleteSQL, key); err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	delete(s.values, key)
	return nil
}

// ResetAll removes every stored value.
func (s *SQLiteStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(sqliteDeleteAllSQL); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	s.values = make(map[string]any)
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// store upserts one row and updates the cache. The cache is updated only
// after the write succeeds, keeping reads consistent with disk.
func (s *SQLiteStore) store(key string, kind Kind, encoded string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	_, err := s.db.Exec(sqliteUpsertSQL,
		key, kind.String(), encoded, now,
		kind.String(), encoded, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store setting %q: %w", key, err)
	}

	s.values[key] = value
	return nil
}

// decodeValue parses a stored TEXT value according to its recorded kind.
func decodeValue(kind, value string) (any, bool) {
	switch kind {
	case KindBool.String():
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, false
		}
		return b, true
	case KindEnum.String():
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindString.String():
		return value, true
	}
	return nil, false
}
