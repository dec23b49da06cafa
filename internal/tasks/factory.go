package tasks

import (
	"context"
	"strings"
)

// NewStore picks a persistence backend: postgres when a database URL is
// configured, a local SQLite file when a path is, otherwise none. Returning
// a nil Store is valid; the registry then runs purely in memory.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if url := strings.TrimSpace(databaseURL); url != "" {
		return NewPostgresStore(ctx, url)
	}
	if path := strings.TrimSpace(sqlitePath); path != "" {
		return NewSQLiteStore(ctx, path)
	}
	return nil, nil
}
