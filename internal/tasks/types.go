package tasks

import (
	"time"

	"github.com/akozyrev/deskmate/internal/action"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusStopping  Status = "stopping"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is the unit of work handed to the scheduler. It is plain data: the
// worker interprets the action, the task itself carries no behavior.
type Task struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Action    action.Action `json:"action"`
	CreatedAt time.Time     `json:"created_at"`
}

// Record is the registry's view of a task across its lifecycle.
type Record struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Action    action.Action `json:"action"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}

type EventType string

const (
	EventTaskQueued    EventType = "task_queued"
	EventTaskStarted   EventType = "task_started"
	EventTaskStopping  EventType = "task_stopping"
	EventTaskCompleted EventType = "task_completed"
	EventTaskFailed    EventType = "task_failed"
	EventTaskCancelled EventType = "task_cancelled"
	EventTaskRemoved   EventType = "task_removed"
)

type Event struct {
	Type   EventType `json:"type"`
	TaskID string    `json:"task_id"`
	Name   string    `json:"name,omitempty"`
	Status Status    `json:"status,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

func (r Record) Clone() Record {
	out := r
	if r.Action.Steps != nil {
		out.Action.Steps = make([]action.Action, len(r.Action.Steps))
		copy(out.Action.Steps, r.Action.Steps)
	}
	return out
}

// Terminal reports whether the record reached a final status. Terminal
// records never change status again.
func (r Record) Terminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
