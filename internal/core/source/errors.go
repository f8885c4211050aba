package source

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrUnknownSource = errors.New("unknown source")

	// ErrNotGit rejects clone and repo registration for local directories.
	ErrNotGit = errors.New("not a git origin")
)

// AliasCollisionError reports two distinct origins whose derived checkout
// directory names collide. There is no safe automatic rename, so registration
// fails outright.
type AliasCollisionError struct {
	Alias  string
	First  string
	Second string
}

func (e *AliasCollisionError) Error() string {
	return fmt.Sprintf("duplicate source alias %q: %s and %s", e.Alias, e.First, e.Second)
}

// LibSubdirError reports a lib entry whose context points inside a
// repository. Libs are mounted whole; a subdirectory belongs on the build
// context that uses it, not on the lib.
type LibSubdirError struct {
	Key     string
	Context string
}

func (e *LibSubdirError) Error() string {
	return fmt.Sprintf("lib %q: context %s must name a repository root, not a subdirectory", e.Key, e.Context)
}
