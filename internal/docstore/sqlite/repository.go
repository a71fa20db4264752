// Package sqlite is the SQLite-backed identity/document-store adapter:
// local users with bcrypt passwords, resumable sessions, and one JSON
// snapshot blob per user.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fincal/internal/cache"
	"fincal/internal/core"
	"fincal/internal/docstore"

	_ "modernc.org/sqlite"
)

const (
	snapshotCacheSize = 16
	snapshotCacheTTL  = 5 * time.Minute
)

type Repository struct {
	db    *sql.DB
	snaps *cache.LRU[core.Snapshot]
}

var _ docstore.SnapshotStore = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:    db,
		snaps: cache.NewLRU[core.Snapshot](snapshotCacheSize, snapshotCacheTTL),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements docstore.SnapshotStore. A user with no snapshot row
// yields (nil, nil); transport and decode failures are StorageErrors.
func (r *Repository) Load(ctx context.Context, uid string) (*core.Snapshot, error) {
	if snap, ok := r.snaps.Get(uid); ok {
		return &snap, nil
	}

	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE user_id = ?`, uid).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, docstore.NewStorageError("load", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, docstore.NewStorageError("load", fmt.Errorf("decode snapshot: %w", err))
	}

	r.snaps.Set(uid, snap)
	return &snap, nil
}

// Save implements docstore.SnapshotStore with last-write-wins upsert.
func (r *Repository) Save(ctx context.Context, uid string, snap core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return docstore.NewStorageError("save", fmt.Errorf("encode snapshot: %w", err))
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		uid, string(data))
	if err != nil {
		return docstore.NewStorageError("save", err)
	}

	r.snaps.Set(uid, snap)

	slog.DebugContext(ctx, "snapshot saved",
		"user_id", uid,
		"bytes", len(data))

	return nil
}
