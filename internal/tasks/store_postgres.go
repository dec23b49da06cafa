package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akozyrev/deskmate/internal/action"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initRecordSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initRecordSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task_records (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			action JSONB NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			started_at TIMESTAMPTZ NULL,
			ended_at TIMESTAMPTZ NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_task_records_created ON task_records (created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init task record schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveRecord(ctx context.Context, rec Record) error {
	actionJSON, err := json.Marshal(rec.Action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO task_records (
			id, name, action, status, error, created_at, updated_at, started_at, ended_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9
		)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			action=EXCLUDED.action,
			status=EXCLUDED.status,
			error=EXCLUDED.error,
			created_at=EXCLUDED.created_at,
			updated_at=EXCLUDED.updated_at,
			started_at=EXCLUDED.started_at,
			ended_at=EXCLUDED.ended_at`,
		rec.ID,
		rec.Name,
		actionJSON,
		string(rec.Status),
		rec.Error,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.StartedAt,
		rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, taskID string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, action, status, error, created_at, updated_at, started_at, ended_at
		   FROM task_records WHERE id=$1`,
		taskID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, ErrStoreNotFound
		}
		return Record{}, fmt.Errorf("get task record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, action, status, error, created_at, updated_at, started_at, ended_at
		   FROM task_records ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
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

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec             Record
		actionJSON      []byte
		status          string
		startedNullable *time.Time
		endedNullable   *time.Time
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&actionJSON,
		&status,
		&rec.Error,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&startedNullable,
		&endedNullable,
	); err != nil {
		return Record{}, err
	}
	var act action.Action
	if err := json.Unmarshal(actionJSON, &act); err != nil {
		return Record{}, fmt.Errorf("decode action: %w", err)
	}
	rec.Action = act
	rec.Status = Status(status)
	rec.StartedAt = startedNullable
	rec.EndedAt = endedNullable
	return rec, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
