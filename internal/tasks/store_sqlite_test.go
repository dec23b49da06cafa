package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/akozyrev/deskmate/internal/action"
)

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	rec := Record{
		ID:        "t-1",
		Name:      "launch chrome",
		Action:    action.Action{Kind: action.KindLaunchApplication, App: "chrome.exe"},
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	ended := now.Add(time.Second)
	rec.Status = StatusCompleted
	rec.UpdatedAt = ended
	rec.EndedAt = &ended
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("SaveRecord(update): %v", err)
	}

	got, err := store.GetRecord(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, StatusCompleted)
	}
	if got.Action.Kind != action.KindLaunchApplication || got.Action.App != "chrome.exe" {
		t.Fatalf("action = %+v, want launch of chrome.exe", got.Action)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(ended) {
		t.Fatalf("ended_at = %v, want %v", got.EndedAt, ended)
	}

	list, err := store.ListRecords(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	if _, err := store.GetRecord(ctx, "missing"); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("err = %v, want ErrStoreNotFound", err)
	}
}
