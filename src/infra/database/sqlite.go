package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmoretti/waxshelf/src/collection"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore persists local-profile collections in an embedded database.
// Each profile owns a single JSON document holding its full record sequence,
// matching the full-overwrite save model. UI preferences live in their own
// table since they outlive any single collection.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore creates a new SqliteStore.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			profile TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT
		);

		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// Load retrieves the profile's collection, normalizing whatever shape was
// stored. A profile with no saved row yields an empty collection.
func (s *SqliteStore) Load(ctx context.Context, subject collection.Subject) ([]collection.AlbumRecord, bool, error) {
	if subject.Kind != collection.SubjectLocal {
		return nil, false, fmt.Errorf("sqlite store cannot load %s subjects", subject.Kind)
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE profile = ?`, subject.ProfileID).Scan(&payload)
	if err == sql.ErrNoRows {
		return []collection.AlbumRecord{}, false, nil
	}
	if err != nil {
		return nil, false, &collection.StorageError{Op: "load", Err: err}
	}

	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		slog.Error("Stored collection is not valid JSON, starting empty", "profile", subject.ProfileID, "error", err)
		return []collection.AlbumRecord{}, true, nil
	}
	records, repaired := collection.Normalize(raw)
	return records, repaired, nil
}

// Save overwrites the profile's collection document.
func (s *SqliteStore) Save(ctx context.Context, subject collection.Subject, records []collection.AlbumRecord) error {
	if subject.ReadOnly() {
		return collection.ErrReadOnly
	}
	if subject.Kind != collection.SubjectLocal {
		return fmt.Errorf("sqlite store cannot save %s subjects", subject.Kind)
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return &collection.StorageError{Op: "save", Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (profile, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, subject.ProfileID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &collection.StorageError{Op: "save", Err: err}
	}
	slog.Debug("Collection saved", "profile", subject.ProfileID, "records", len(records))
	return nil
}

// GetPreference returns the stored value for a UI preference key, or the
// empty string when unset.
func (s *SqliteStore) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetPreference stores a UI preference value.
func (s *SqliteStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
