package tasks

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskRunning  = errors.New("task is running")
)

type entry struct {
	record *Record

	// cancel is closed exactly once to ask the worker to abandon the task.
	cancel     chan struct{}
	cancelOnce sync.Once
}

// Registry tracks every submitted task from queueing to a terminal status.
// All methods are safe for concurrent use; callers get snapshots, never the
// live record.
type Registry struct {
	mu sync.RWMutex

	entries map[string]*entry
	store   Store

	subscribers map[int]chan Event
	nextSubID   int
}

func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		subscribers: make(map[int]chan Event),
	}
}

// SetStore installs an optional persistence backend. Saves are best-effort
// and asynchronous; the registry never blocks on the store.
func (r *Registry) SetStore(store Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = store
}

// Subscribe returns a channel of lifecycle events and a cancel function.
// Slow consumers lose events rather than blocking publishers.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 256)
	r.mu.Lock()
	r.nextSubID++
	id := r.nextSubID
	r.subscribers[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(c)
		}
	}
}

// Register records a new task as queued and returns its initial snapshot.
func (r *Registry) Register(task Task) Record {
	now := time.Now().UTC()
	rec := &Record{
		ID:        task.ID,
		Name:      task.Name,
		Action:    task.Action,
		Status:    StatusQueued,
		CreatedAt: task.CreatedAt,
		UpdatedAt: now,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	r.mu.Lock()
	r.entries[task.ID] = &entry{record: rec, cancel: make(chan struct{})}
	r.publishLocked(Event{Type: EventTaskQueued, TaskID: rec.ID, Name: rec.Name, Status: rec.Status, At: now})
	snapshot := rec.Clone()
	r.mu.Unlock()

	r.persist(snapshot)
	return snapshot
}

// UpdateStatus transitions a task. Once a record is terminal, further writes
// are silently dropped and the terminal snapshot returned: the first of a
// racing completion and cancellation wins and the loser becomes a no-op.
func (r *Registry) UpdateStatus(taskID string, status Status, detail string) (Record, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	e, ok := r.entries[taskID]
	if !ok {
		r.mu.Unlock()
		return Record{}, ErrTaskNotFound
	}
	rec := e.record
	if rec.Terminal() {
		snapshot := rec.Clone()
		r.mu.Unlock()
		return snapshot, nil
	}

	rec.Status = status
	rec.Error = ""
	rec.UpdatedAt = now
	switch status {
	case StatusRunning:
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	case StatusFailed, StatusCancelled:
		rec.Error = detail
		rec.EndedAt = &now
	case StatusCompleted:
		rec.EndedAt = &now
	}

	r.publishLocked(Event{
		Type:   eventFor(status),
		TaskID: rec.ID,
		Name:   rec.Name,
		Status: status,
		Detail: detail,
		At:     now,
	})
	snapshot := rec.Clone()
	r.mu.Unlock()

	if snapshot.Terminal() || status == StatusRunning {
		r.persist(snapshot)
	}
	return snapshot, nil
}

// Cancel requests cooperative cancellation. A queued task is cancelled on the
// spot; a running one moves to stopping and its cancel channel is closed so
// the worker can abandon it. Terminal tasks are left untouched.
func (r *Registry) Cancel(taskID, reason string) (Record, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	e, ok := r.entries[taskID]
	if !ok {
		r.mu.Unlock()
		return Record{}, ErrTaskNotFound
	}
	rec := e.record
	if rec.Terminal() {
		snapshot := rec.Clone()
		r.mu.Unlock()
		return snapshot, nil
	}

	e.cancelOnce.Do(func() { close(e.cancel) })

	if rec.Status == StatusQueued {
		rec.Status = StatusCancelled
		rec.Error = reason
		rec.UpdatedAt = now
		rec.EndedAt = &now
		r.publishLocked(Event{Type: EventTaskCancelled, TaskID: rec.ID, Name: rec.Name, Status: rec.Status, Detail: reason, At: now})
	} else {
		rec.Status = StatusStopping
		rec.UpdatedAt = now
		r.publishLocked(Event{Type: EventTaskStopping, TaskID: rec.ID, Name: rec.Name, Status: rec.Status, Detail: reason, At: now})
	}
	snapshot := rec.Clone()
	r.mu.Unlock()

	if snapshot.Terminal() {
		r.persist(snapshot)
	}
	return snapshot, nil
}

// Remove drops a task from the registry entirely. Running tasks must be
// cancelled first; their worker still holds the cancel channel it captured.
func (r *Registry) Remove(taskID string) error {
	now := time.Now().UTC()

	r.mu.Lock()
	e, ok := r.entries[taskID]
	if !ok {
		r.mu.Unlock()
		return ErrTaskNotFound
	}
	if e.record.Status == StatusRunning {
		r.mu.Unlock()
		return ErrTaskRunning
	}
	e.cancelOnce.Do(func() { close(e.cancel) })
	name := e.record.Name
	delete(r.entries, taskID)
	r.publishLocked(Event{Type: EventTaskRemoved, TaskID: taskID, Name: name, At: now})
	r.mu.Unlock()
	return nil
}

// CancelSignal returns the channel closed when the task is asked to stop.
// A nil return means the task is unknown.
func (r *Registry) CancelSignal(taskID string) <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[taskID]; ok {
		return e.cancel
	}
	return nil
}

func (r *Registry) Get(taskID string) (Record, error) {
	r.mu.RLock()
	e, ok := r.entries[taskID]
	var snapshot Record
	if ok {
		snapshot = e.record.Clone()
	}
	store := r.store
	r.mu.RUnlock()
	if ok {
		return snapshot, nil
	}
	if store == nil {
		return Record{}, ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	persisted, err := store.GetRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return Record{}, ErrTaskNotFound
		}
		return Record{}, err
	}
	return persisted, nil
}

// List returns all live records, newest first.
func (r *Registry) List() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.record.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// StartJanitor evicts terminal records older than retention on every tick
// until ctx is done. Persisted copies survive eviction.
func (r *Registry) StartJanitor(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 || retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := r.evictTerminal(now.UTC(), retention); n > 0 {
					log.Printf("task janitor evicted %d finished task(s)", n)
				}
			}
		}
	}()
}

func (r *Registry) evictTerminal(now time.Time, retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		rec := e.record
		if !rec.Terminal() || rec.EndedAt == nil {
			continue
		}
		if now.Sub(*rec.EndedAt) < retention {
			continue
		}
		delete(r.entries, id)
		evicted++
	}
	return evicted
}

func (r *Registry) persist(rec Record) {
	r.mu.RLock()
	store := r.store
	r.mu.RUnlock()
	if store == nil {
		return
	}
	go func(snapshot Record) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = store.SaveRecord(ctx, snapshot)
	}(rec)
}

func (r *Registry) publishLocked(evt Event) {
	for _, ch := range r.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

func eventFor(status Status) EventType {
	switch status {
	case StatusRunning:
		return EventTaskStarted
	case StatusStopping:
		return EventTaskStopping
	case StatusCompleted:
		return EventTaskCompleted
	case StatusFailed:
		return EventTaskFailed
	case StatusCancelled:
		return EventTaskCancelled
	default:
		return EventTaskQueued
	}
}
