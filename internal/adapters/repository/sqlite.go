package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/housecup/internal/domain/model"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultSQLitePath is used when NewSQLiteStore gets an empty path.
const DefaultSQLitePath = "housecup.db"

// SQLiteStore persists the in-memory state to a single SQLite table as JSON
// blobs, one row per entity kind. It writes the full state after every
// successful mutation and loads it back on open.
type SQLiteStore struct {
	*MemoryStore
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

var sqliteBuckets = []string{"meta", "houses", "categories", "players", "events"}

type sqliteMeta struct {
	Revision uint64 `json:"revision"`
}

// NewSQLiteStore opens (or creates) the database at path and loads its state.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	s := &SQLiteStore{MemoryStore: NewMemoryStore(ctx, opts...), db: db, path: path}
	if err := s.load(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.persist = s.write
	return s, nil
}

func (s *SQLiteStore) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap model.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		found = true
		var target any
		switch bucket {
		case "meta":
			var meta sqliteMeta
			if err := json.Unmarshal(payload, &meta); err != nil {
				return fmt.Errorf("decode meta: %w", err)
			}
			snap.Revision = meta.Revision
			continue
		case "houses":
			target = &snap.Houses
		case "categories":
			target = &snap.Categories
		case "players":
			target = &snap.Players
		case "events":
			target = &snap.Events
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	s.state.restore(snap)
	s.mu.Unlock()
	return nil
}

// write stores snap in one transaction. Called with the memory store's write lock held.
func (s *SQLiteStore) write(snap model.Snapshot) (retErr error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "meta":
			data, err = json.Marshal(sqliteMeta{Revision: snap.Revision})
		case "houses":
			data, err = json.Marshal(snap.Houses)
		case "categories":
			data, err = json.Marshal(snap.Categories)
		case "players":
			data, err = json.Marshal(snap.Players)
		case "events":
			data, err = json.Marshal(snap.Events)
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// Close stops the memory store and closes the database.
func (s *SQLiteStore) Close() error {
	return errors.Join(s.MemoryStore.Close(), s.db.Close())
}

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
