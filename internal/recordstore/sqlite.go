package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

const schemaVersion = 1

// Fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS video_records (
		request_id   TEXT PRIMARY KEY,
		document_key TEXT NOT NULL,
		photo_key    TEXT NOT NULL,
		video_key    TEXT NOT NULL,
		backend      TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_video_records_created ON video_records(created_at)`,
}

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite initializes or connects to the records database at path
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &sqliteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *sqliteStore) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("records db schema %d is newer than supported %d", version, schemaVersion)
	}

	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func (s *sqliteStore) Save(ctx context.Context, rec models.VideoRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_records (request_id, document_key, photo_key, video_key, backend, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.DocumentKey, rec.PhotoKey, rec.VideoKey, rec.Backend, rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert video record: %w", err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	query := `SELECT request_id, document_key, photo_key, video_key, backend, created_at
		FROM video_records ORDER BY created_at DESC, request_id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list video records: %w", err)
	}
	defer rows.Close()

	var out []models.VideoRecord
	for rows.Next() {
		var rec models.VideoRecord
		var created string
		if err := rows.Scan(&rec.RequestID, &rec.DocumentKey, &rec.PhotoKey, &rec.VideoKey, &rec.Backend, &created); err != nil {
			return nil, fmt.Errorf("scan video record: %w", err)
		}
		rec.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
