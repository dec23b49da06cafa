package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSchedulerRunsTasksInSubmissionOrder(t *testing.T) {
	r := NewRegistry()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{}, 3)
	s := NewScheduler(r, 8, func(ctx context.Context, task Task) error {
		mu.Lock()
		order = append(order, task.Name)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	first := newTask("first")
	second := newTask("second")
	third := newTask("third")
	for _, task := range []Task{first, second, third} {
		r.Register(task)
		if err := s.Submit(task); err != nil {
			t.Fatalf("Submit(%s): %v", task.Name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedulerSubmitFailsWhenQueueFull(t *testing.T) {
	r := NewRegistry()
	s := NewScheduler(r, 1, func(ctx context.Context, task Task) error { return nil })

	if err := s.Submit(newTask("fits")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.Submit(newTask("overflow")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
}

func TestSchedulerSkipsTaskCancelledWhileQueued(t *testing.T) {
	r := NewRegistry()
	ran := make(chan string, 2)
	s := NewScheduler(r, 8, func(ctx context.Context, task Task) error {
		ran <- task.Name
		return nil
	})

	doomed := newTask("doomed")
	survivor := newTask("survivor")
	for _, task := range []Task{doomed, survivor} {
		r.Register(task)
		if err := s.Submit(task); err != nil {
			t.Fatalf("Submit(%s): %v", task.Name, err)
		}
	}
	if _, err := r.Cancel(doomed.ID, "not needed"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case name := <-ran:
		if name != "survivor" {
			t.Fatalf("ran %q, cancelled task must be skipped", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the surviving task")
	}
}

func TestSchedulerCancelRunningTask(t *testing.T) {
	r := NewRegistry()
	started := make(chan struct{})
	s := NewScheduler(r, 8, func(ctx context.Context, task Task) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	task := newTask("long-running")
	r.Register(task)
	if err := s.Submit(task); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("task never started")
	}

	if _, err := r.Cancel(task.ID, "stop"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		rec, err := r.Get(task.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Status == StatusCancelled {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("status = %q, want %q", rec.Status, StatusCancelled)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerShutdownLabelsCancelledTask(t *testing.T) {
	r := NewRegistry()
	started := make(chan struct{})
	s := NewScheduler(r, 8, func(ctx context.Context, task Task) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	task := newTask("interrupted")
	r.Register(task)
	if err := s.Submit(task); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("task never started")
	}

	// Stop the whole scheduler, not the one task.
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		rec, err := r.Get(task.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Status == StatusCancelled {
			if rec.Error != "scheduler shutting down" {
				t.Fatalf("error = %q, want shutdown detail, not a user cancel", rec.Error)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("status = %q, want %q", rec.Status, StatusCancelled)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerRecordsFailure(t *testing.T) {
	r := NewRegistry()
	ran := make(chan struct{})
	s := NewScheduler(r, 8, func(ctx context.Context, task Task) error {
		defer close(ran)
		return errors.New("boom")
	})

	task := newTask("failing")
	r.Register(task)
	if err := s.Submit(task); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("task never ran")
	}

	deadline := time.After(2 * time.Second)
	for {
		rec, err := r.Get(task.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Status == StatusFailed {
			if rec.Error != "boom" {
				t.Fatalf("error = %q, want boom", rec.Error)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("status = %q, want %q", rec.Status, StatusFailed)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
