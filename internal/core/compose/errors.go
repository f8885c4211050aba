// Package compose contains pure functions and types for cage's view of a
// docker-compose file: the in-memory config model, the YAML codec that
// round-trips it, and the merge engine that layers a target override onto a
// pod base. This is part of the Functional Core - all functions are pure with
// no I/O.
package compose

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// Structure errors
	ErrNotEnvironment = errors.New("environment must be a map or a list of KEY=VALUE strings")
	ErrNotCommand     = errors.New("command must be a string or a list of arguments")
	ErrNotStringList  = errors.New("expected a string or a list of strings")
	ErrNotBuild       = errors.New("build must be a context string or a mapping")
	ErrNotLabels      = errors.New("labels must be a map or a list of KEY=VALUE strings")
)

// ParseError reports a config file that could not be parsed.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ServicesAddedError reports services that appear in a target override but not
// in the pod base file. Overrides may reshape services; they may not invent
// them.
type ServicesAddedError struct {
	Base     string
	Override string
	Services []string
}

func (e *ServicesAddedError) Error() string {
	return fmt.Sprintf("%s adds services not defined in %s: %s",
		e.Override, e.Base, strings.Join(e.Services, ", "))
}

// ValidationError reports a synthesized config that docker-compose would
// refuse to load.
type ValidationError struct {
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated config %s failed validation: %v", e.File, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
