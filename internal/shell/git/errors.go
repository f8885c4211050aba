package git

import "fmt"

// CloneError reports a failed attempt to materialize a remote source.
type CloneError struct {
	Origin string
	Dest   string
	Err    error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("could not clone %s into %s: %v", e.Origin, e.Dest, e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}
