package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS engine_state (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	version_id  TEXT NOT NULL,
	payload     TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

// #endregion schema

// #region record
// Record is the persisted row behind the snapshot.
type Record struct {
	VersionID string
	State     EngineState
	UpdatedAt time.Time
}

// #endregion record

// #region store-struct
// SQLiteStore keeps the snapshot in a single-row table.
type SQLiteStore struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB. The cycle journal uses it when it is
// configured on the same file as the store.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region load
// Load reads the snapshot row.
func (s *SQLiteStore) Load(ctx context.Context) (EngineState, error) {
	rec, err := s.Current(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Default(), nil
	}
	if err != nil {
		return EngineState{}, err
	}
	return rec.State, nil
}

// Current reads the snapshot row with its version metadata.
func (s *SQLiteStore) Current(ctx context.Context) (Record, error) {
	var rec Record
	var payload, updatedStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT version_id, payload, updated_at FROM engine_state WHERE id = 1`,
	).Scan(&rec.VersionID, &payload, &updatedStr)
	if err != nil {
		return Record{}, fmt.Errorf("get engine state: %w", err)
	}
	st, err := Unmarshal([]byte(payload))
	if err != nil {
		return Record{}, err
	}
	rec.State = st
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, nil
}

// #endregion load

// #region save
// Save overwrites the snapshot row under a fresh version id.
func (s *SQLiteStore) Save(ctx context.Context, st EngineState) error {
	data, err := Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO engine_state (id, version_id, payload, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   version_id = excluded.version_id,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		uuid.New().String(), string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	return nil
}

// #endregion save
