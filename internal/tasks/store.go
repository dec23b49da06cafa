package tasks

import (
	"context"
	"errors"
)

var ErrStoreNotFound = errors.New("task not found in store")

// Store persists task records across restarts. The registry treats it as
// best-effort: a failing store never blocks or fails task execution.
type Store interface {
	SaveRecord(ctx context.Context, rec Record) error
	GetRecord(ctx context.Context, taskID string) (Record, error)
	ListRecords(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
