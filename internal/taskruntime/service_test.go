package taskruntime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akozyrev/deskmate/internal/action"
	"github.com/akozyrev/deskmate/internal/config"
	"github.com/akozyrev/deskmate/internal/executor"
	"github.com/akozyrev/deskmate/internal/tasks"
)

const testCommandFile = `language: en
notification_enable: false
notifications_delay: 0
antiflood: false
aliases:
  - alias: open_chrome
    intent: launch_application
    parameters:
      app: chrome.exe
  - alias: morning
    type: multi
    steps:
      - intent: launch_application
        parameters:
          app: chrome.exe
      - intent: launch_application
        parameters:
          app: notepad.exe
`

func newTestService(t *testing.T, mock *executor.Mock, cfg Config) *Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deskmate.yaml")
	if err := os.WriteFile(path, []byte(testCommandFile), 0o600); err != nil {
		t.Fatalf("write command file: %v", err)
	}
	store, err := config.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(store, mock, nil, nil, cfg)
}

func waitTerminal(t *testing.T, s *Service, taskID string) tasks.Record {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		rec, err := s.GetTask(taskID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if rec.Terminal() {
			return rec
		}
		select {
		case <-deadline:
			t.Fatalf("task %s stuck in %q", taskID, rec.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSubmitCommandResolvesAliasAndExecutes(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	rec, err := s.SubmitCommand(ctx, "open open_chrome")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}
	if rec.Status != tasks.StatusQueued {
		t.Fatalf("status = %q, want %q", rec.Status, tasks.StatusQueued)
	}

	final := waitTerminal(t, s, rec.ID)
	if final.Status != tasks.StatusCompleted {
		t.Fatalf("status = %q (%s), want %q", final.Status, final.Error, tasks.StatusCompleted)
	}

	executed := mock.Executed()
	if len(executed) != 1 {
		t.Fatalf("executed %d actions, want 1", len(executed))
	}
	if executed[0].Kind != action.KindLaunchApplication || executed[0].App != "chrome.exe" {
		t.Fatalf("executed %+v, want launch of chrome.exe", executed[0])
	}
}

func TestSubmitCommandMultiStepAlias(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	rec, err := s.SubmitCommand(ctx, "run morning")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}
	waitTerminal(t, s, rec.ID)

	executed := mock.Executed()
	if len(executed) != 1 {
		t.Fatalf("executed %d actions, want 1 composite", len(executed))
	}
	if executed[0].Kind != action.KindMultiStep || len(executed[0].Steps) != 2 {
		t.Fatalf("executed %+v, want a two-step composite", executed[0])
	}
}

func TestSubmitCommandUnknownFails(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	rec, err := s.SubmitCommand(ctx, "do something inexplicable")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}

	final := waitTerminal(t, s, rec.ID)
	if final.Status != tasks.StatusFailed {
		t.Fatalf("status = %q, want %q", final.Status, tasks.StatusFailed)
	}
	if final.Error == "" {
		t.Fatalf("failed record should carry the hint message")
	}
}

func TestSubmitCommandAntiflood(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{AntifloodInterval: time.Minute})

	if err := s.UpdateSetting("antiflood", "true"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	if _, err := s.SubmitCommand(ctx, "open chrome.exe"); err != nil {
		t.Fatalf("first command: %v", err)
	}
	if _, err := s.SubmitCommand(ctx, "open notepad.exe"); !errors.Is(err, ErrThrottled) {
		t.Fatalf("err = %v, want ErrThrottled", err)
	}
}

func TestAntifloodWindowFollowsNotificationsDelay(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{AntifloodInterval: time.Millisecond})

	if err := s.UpdateSetting("antiflood", "true"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if err := s.UpdateSetting("notifications_delay", "60"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	if _, err := s.SubmitCommand(ctx, "open chrome.exe"); err != nil {
		t.Fatalf("first command: %v", err)
	}
	if _, err := s.SubmitCommand(ctx, "open notepad.exe"); !errors.Is(err, ErrThrottled) {
		t.Fatalf("err = %v, want ErrThrottled with a 60s window", err)
	}

	// Dropping the setting back to zero falls through to the configured
	// millisecond interval, so the next command gets through.
	if err := s.UpdateSetting("notifications_delay", "0"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := s.SubmitCommand(ctx, "open notepad.exe"); err != nil {
		t.Fatalf("command after shrinking the window: %v", err)
	}
}

func TestStopTaskRemovesRecord(t *testing.T) {
	mock := executor.NewMock()
	block := make(chan struct{})
	mock.Block = block
	s := newTestService(t, mock, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	rec, err := s.SubmitCommand(ctx, "open chrome.exe")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}

	// Let the worker pick it up so stop exercises the running path.
	deadline := time.After(2 * time.Second)
	for {
		cur, err := s.GetTask(rec.ID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if cur.Status == tasks.StatusRunning {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("task never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := s.StopTask(rec.ID); err != nil {
		t.Fatalf("StopTask: %v", err)
	}
	if _, err := s.GetTask(rec.ID); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Fatalf("err = %v, record should be removed", err)
	}
	close(block)
}

func TestUpdateSettingSwitchesLanguage(t *testing.T) {
	mock := executor.NewMock()
	s := newTestService(t, mock, Config{})

	if err := s.UpdateSetting("language", "ru"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	s.Start(ctx)

	rec, err := s.SubmitCommand(ctx, "запусти chrome.exe")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}
	final := waitTerminal(t, s, rec.ID)
	if final.Status != tasks.StatusCompleted {
		t.Fatalf("status = %q (%s), want %q", final.Status, final.Error, tasks.StatusCompleted)
	}

	executed := mock.Executed()
	if len(executed) != 1 || executed[0].App != "chrome.exe" {
		t.Fatalf("executed %+v, want launch of chrome.exe", executed)
	}
}
