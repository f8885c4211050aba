package store

import "errors"

// ErrNotProject marks a directory that does not hold a cage project.
var ErrNotProject = errors.New("not a cage project")
