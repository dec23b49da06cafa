package executor

import (
	"context"
	"sync"

	"github.com/akozyrev/deskmate/internal/action"
)

// Mock records every executed action and answers with a scripted result.
// Used in tests and as the execution backend when the host has no desktop.
type Mock struct {
	mu       sync.Mutex
	executed []action.Action

	// Err, when set, is returned for every action.
	Err error
	// Block, when set, is waited on before returning so tests can hold a
	// task in the running state.
	Block <-chan struct{}
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Execute(ctx context.Context, a action.Action) error {
	m.mu.Lock()
	m.executed = append(m.executed, a)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.Err != nil {
		return m.Err
	}
	if a.Kind == action.KindUnknown {
		return unknownError(a.Hint)
	}
	return ctx.Err()
}

// Executed returns a snapshot of everything executed so far.
func (m *Mock) Executed() []action.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]action.Action, len(m.executed))
	copy(out, m.executed)
	return out
}
