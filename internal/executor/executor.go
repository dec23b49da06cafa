// Package executor carries actions out against the host. The scheduler only
// knows this interface; swapping the host implementation for a mock is how
// the pipeline is tested end to end.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/akozyrev/deskmate/internal/action"
)

var (
	// ErrUnsupported marks action kinds the current host cannot perform,
	// typically desktop UI operations on a headless machine.
	ErrUnsupported = errors.New("action not supported on this host")

	// ErrUnknownAction is returned when an unresolved command reaches
	// execution; its message carries the user-facing hint.
	ErrUnknownAction = errors.New("unrecognized command")
)

type Executor interface {
	Execute(ctx context.Context, a action.Action) error
}

func unknownError(hint string) error {
	if hint == "" {
		return ErrUnknownAction
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, hint)
}
