package tasks

import (
	"context"
	"errors"
	"log"
)

// ErrQueueFull is returned when the submission queue has no room. Submission
// never blocks the caller.
var ErrQueueFull = errors.New("task queue is full")

// RunFunc executes one task. The context is cancelled when the task is asked
// to stop or the scheduler shuts down.
type RunFunc func(ctx context.Context, task Task) error

// Scheduler owns the single worker goroutine that drains the task queue in
// submission order. One task runs at a time; everything else waits its turn.
type Scheduler struct {
	registry *Registry
	run      RunFunc
	queue    chan Task

	// onExit, when set, is called once when the worker goroutine stops.
	onExit func()
}

// SetExitHook installs a callback fired when the worker exits. Must be set
// before Start.
func (s *Scheduler) SetExitHook(hook func()) {
	s.onExit = hook
}

func NewScheduler(registry *Registry, capacity int, run RunFunc) *Scheduler {
	if capacity <= 0 {
		capacity = 64
	}
	return &Scheduler{
		registry: registry,
		run:      run,
		queue:    make(chan Task, capacity),
	}
}

// Submit enqueues a task for the worker. It returns immediately; a full
// queue is an error the caller reports back, not a stall.
func (s *Scheduler) Submit(task Task) error {
	select {
	case s.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Depth reports how many tasks are waiting in the queue.
func (s *Scheduler) Depth() int {
	return len(s.queue)
}

// Start launches the worker goroutine. The worker exits only when ctx is
// done; that exit is logged loudly because nothing drains the queue after it.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer func() {
			log.Printf("task worker exited: %v", ctx.Err())
			if s.onExit != nil {
				s.onExit()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-s.queue:
				s.execute(ctx, task)
			}
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, task Task) {
	rec, err := s.registry.Get(task.ID)
	if err != nil || rec.Status != StatusQueued {
		// Cancelled or removed while waiting in the queue.
		return
	}

	if _, err := s.registry.UpdateStatus(task.ID, StatusRunning, ""); err != nil {
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	if signal := s.registry.CancelSignal(task.ID); signal != nil {
		go func() {
			select {
			case <-signal:
				cancel()
			case <-taskCtx.Done():
			}
		}()
	}

	runErr := s.run(taskCtx, task)
	cancelled := taskCtx.Err() != nil && ctx.Err() == nil
	cancel()

	switch {
	case runErr == nil:
		_, _ = s.registry.UpdateStatus(task.ID, StatusCompleted, "")
	case cancelled || errors.Is(runErr, context.Canceled):
		detail := "cancelled by user"
		if ctx.Err() != nil {
			detail = "scheduler shutting down"
		}
		_, _ = s.registry.UpdateStatus(task.ID, StatusCancelled, detail)
	default:
		_, _ = s.registry.UpdateStatus(task.ID, StatusFailed, runErr.Error())
	}
}
