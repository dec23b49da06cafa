// Package taskruntime wires the command pipeline together: text comes in,
// an interpreter and the alias table turn it into an action, and the
// scheduler runs it as a tracked, cancellable task.
package taskruntime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/deskmate/internal/config"
	"github.com/akozyrev/deskmate/internal/executor"
	"github.com/akozyrev/deskmate/internal/intent"
	"github.com/akozyrev/deskmate/internal/interp"
	"github.com/akozyrev/deskmate/internal/observability"
	"github.com/akozyrev/deskmate/internal/tasks"
)

// ErrThrottled is returned when the antiflood limiter rejects a command.
var ErrThrottled = errors.New("too many commands, slow down")

type Config struct {
	QueueCapacity     int
	AntifloodInterval time.Duration
	JanitorInterval   time.Duration
	TaskRetention     time.Duration
}

type Service struct {
	cfgStore *config.Store
	registry *tasks.Registry
	sched    *tasks.Scheduler
	exec     executor.Executor
	store    tasks.Store
	metrics  *observability.Metrics

	antifloodInterval time.Duration
	janitorInterval   time.Duration
	taskRetention     time.Duration

	mu            sync.Mutex
	lastCommandAt time.Time

	interpMu sync.Mutex
	interps  map[string]*interp.Interpreter
}

func New(cfgStore *config.Store, exec executor.Executor, store tasks.Store, metrics *observability.Metrics, cfg Config) *Service {
	if cfg.AntifloodInterval <= 0 {
		cfg.AntifloodInterval = time.Second
	}

	registry := tasks.NewRegistry()
	if store != nil {
		registry.SetStore(store)
	}

	s := &Service{
		cfgStore:          cfgStore,
		registry:          registry,
		exec:              exec,
		store:             store,
		metrics:           metrics,
		antifloodInterval: cfg.AntifloodInterval,
		janitorInterval:   cfg.JanitorInterval,
		taskRetention:     cfg.TaskRetention,
		interps:           make(map[string]*interp.Interpreter),
	}
	s.sched = tasks.NewScheduler(registry, cfg.QueueCapacity, s.runTask)
	if metrics != nil {
		s.sched.SetExitHook(func() { metrics.WorkerExits.Inc() })
	}
	return s
}

// Start launches the worker, the janitor and the metrics supervisor. It
// returns immediately; everything stops when ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.sched.Start(ctx)
	s.registry.StartJanitor(ctx, s.janitorInterval, s.taskRetention)
	go s.supervise(ctx)
}

// SubmitCommand interprets free text and queues the resulting action as a
// task. The returned record is the task's initial queued snapshot.
func (s *Service) SubmitCommand(ctx context.Context, text string) (tasks.Record, error) {
	_ = ctx
	settings := s.cfgStore.Settings()

	if settings.Antiflood && !s.admitCommand(settings) {
		if s.metrics != nil {
			s.metrics.ThrottledTotal.Inc()
		}
		return tasks.Record{}, ErrThrottled
	}

	in := s.interpreter(settings.Language)
	parsed := in.Parse(text)
	if s.metrics != nil {
		s.metrics.CommandsReceived.WithLabelValues(parsed.Intent).Inc()
	}

	act := intent.Resolve(parsed.Intent, parsed.Params, s.cfgStore.Aliases(), in.FallbackHint())
	task := tasks.Task{
		ID:        uuid.NewString(),
		Name:      act.Summary(),
		Action:    act,
		CreatedAt: time.Now().UTC(),
	}

	rec := s.registry.Register(task)
	if err := s.sched.Submit(task); err != nil {
		rec, _ = s.registry.UpdateStatus(task.ID, tasks.StatusFailed, err.Error())
		return rec, err
	}
	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(s.sched.Depth()))
	}
	return rec, nil
}

// CancelTask asks a task to stop but keeps its record around.
func (s *Service) CancelTask(taskID, reason string) (tasks.Record, error) {
	return s.registry.Cancel(taskID, reason)
}

// StopTask cancels a task and removes its record from the registry. A task
// that is mid-execution is cancelled first and removed once the worker lets
// go of it.
func (s *Service) StopTask(taskID string) error {
	rec, err := s.registry.Cancel(taskID, "stopped by user")
	if err != nil {
		return err
	}
	if rec.Status == tasks.StatusStopping {
		// The worker still owns the task; wait briefly for it to wind down.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if cur, err := s.registry.Get(taskID); err != nil || cur.Terminal() {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	err = s.registry.Remove(taskID)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetTask(taskID string) (tasks.Record, error) {
	return s.registry.Get(taskID)
}

func (s *Service) ListTasks() []tasks.Record {
	return s.registry.List()
}

func (s *Service) Subscribe() (<-chan tasks.Event, func()) {
	return s.registry.Subscribe()
}

// Setting reads one settings value by name.
func (s *Service) Setting(name string) (string, error) {
	return s.cfgStore.Setting(name)
}

// UpdateSetting applies and persists one settings value.
func (s *Service) UpdateSetting(name, value string) error {
	return s.cfgStore.UpdateSetting(name, value)
}

func (s *Service) Settings() config.Settings {
	return s.cfgStore.Settings()
}

func (s *Service) ReloadConfig() error {
	return s.cfgStore.Reload()
}

func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *Service) runTask(ctx context.Context, task tasks.Task) error {
	started := time.Now()
	err := s.exec.Execute(ctx, task.Action)
	if s.metrics != nil {
		s.metrics.ObserveExecuteLatency(time.Since(started))
		s.metrics.QueueDepth.Set(float64(s.sched.Depth()))
	}
	return err
}

// admitCommand enforces a minimum interval between accepted commands. The
// window comes from the notifications_delay setting (seconds) so it follows
// runtime settings updates; the configured interval is the fallback when the
// setting is unset.
func (s *Service) admitCommand(settings config.Settings) bool {
	interval := s.antifloodInterval
	if settings.NotificationsDelay > 0 {
		interval = time.Duration(settings.NotificationsDelay) * time.Second
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastCommandAt.IsZero() && now.Sub(s.lastCommandAt) < interval {
		return false
	}
	s.lastCommandAt = now
	return true
}

// interpreter returns the cached interpreter for a language, building it on
// first use. The language can change at runtime via settings.
func (s *Service) interpreter(language string) *interp.Interpreter {
	s.interpMu.Lock()
	defer s.interpMu.Unlock()
	if in, ok := s.interps[language]; ok {
		return in
	}
	in := interp.New(language)
	s.interps[language] = in
	return in
}

// supervise feeds terminal-status counts into metrics from the registry's
// event stream.
func (s *Service) supervise(ctx context.Context) {
	events, cancel := s.registry.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if s.metrics == nil {
				continue
			}
			switch evt.Type {
			case tasks.EventTaskCompleted, tasks.EventTaskFailed, tasks.EventTaskCancelled:
				s.metrics.TasksFinished.WithLabelValues(string(evt.Status)).Inc()
			}
		}
	}
}
