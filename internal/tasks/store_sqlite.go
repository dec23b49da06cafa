package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akozyrev/deskmate/internal/action"
)

// SQLiteStore persists task records in a local file. It is the default
// backend when no database URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(pctx, "PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task_records (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			action     TEXT NOT NULL,
			status     TEXT NOT NULL,
			error      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			started_at TEXT,
			ended_at   TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS task_records_created_idx ON task_records(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(pctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, rec Record) error {
	actionJSON, err := json.Marshal(rec.Action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO task_records (id, name, action, status, error, created_at, updated_at, started_at, ended_at)
		 VALUES (?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			action=excluded.action,
			status=excluded.status,
			error=excluded.error,
			created_at=excluded.created_at,
			updated_at=excluded.updated_at,
			started_at=excluded.started_at,
			ended_at=excluded.ended_at`,
		rec.ID,
		rec.Name,
		string(actionJSON),
		string(rec.Status),
		rec.Error,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
		formatTimePtr(rec.StartedAt),
		formatTimePtr(rec.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert task record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, taskID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, action, status, error, created_at, updated_at, started_at, ended_at
		   FROM task_records WHERE id=?`,
		taskID,
	)
	rec, err := scanSQLiteRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrStoreNotFound
		}
		return Record{}, fmt.Errorf("get task record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, action, status, error, created_at, updated_at, started_at, ended_at
		   FROM task_records ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task records: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteRecord(scan func(dest ...any) error) (Record, error) {
	var (
		rec        Record
		actionJSON string
		status     string
		createdAt  string
		updatedAt  string
		startedAt  sql.NullString
		endedAt    sql.NullString
	)
	if err := scan(
		&rec.ID,
		&rec.Name,
		&actionJSON,
		&status,
		&rec.Error,
		&createdAt,
		&updatedAt,
		&startedAt,
		&endedAt,
	); err != nil {
		return Record{}, err
	}
	var act action.Action
	if err := json.Unmarshal([]byte(actionJSON), &act); err != nil {
		return Record{}, fmt.Errorf("decode action: %w", err)
	}
	rec.Action = act
	rec.Status = Status(status)

	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Record{}, err
	}
	if startedAt.Valid {
		t, err := parseTime(startedAt.String)
		if err != nil {
			return Record{}, err
		}
		rec.StartedAt = &t
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return Record{}, err
		}
		rec.EndedAt = &t
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
