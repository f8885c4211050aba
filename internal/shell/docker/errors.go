package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrRuntimeState wraps every failure to observe the engine. Callers
	// match on this one error; the cause travels along for the message.
	ErrRuntimeState = errors.New("could not get runtime state")

	// Connection errors
	ErrConnectionFailed = errors.New("docker connection failed")
)

// stateError ties a low-level engine failure to the one error callers check.
func stateError(err error) error {
	return fmt.Errorf("%w: %v", ErrRuntimeState, err)
}

// AddressError reports a container whose engine-reported IP address does not
// parse. The offending value is preserved for the message.
type AddressError struct {
	Container string
	Value     string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("container %s reported malformed IP address %q", e.Container, e.Value)
}
