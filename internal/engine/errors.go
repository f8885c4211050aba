package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNoDocker is returned by operations that need the container engine
	// when no connection was established.
	ErrNoDocker = errors.New("container engine unavailable")

	// ErrPodDisabled is returned when a named pod is not enabled in the
	// current target.
	ErrPodDisabled = errors.New("pod not enabled in this target")

	// ErrAmbiguousService is returned when run is pointed at a multi-service
	// pod without naming a service.
	ErrAmbiguousService = errors.New("pod has more than one service")
)

// CommandError reports a failed compose invocation. It carries the full
// command line so the user can rerun it by hand.
type CommandError struct {
	Command []string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed: %s: %v", strings.Join(e.Command, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
