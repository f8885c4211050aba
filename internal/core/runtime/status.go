// Package runtime models what is actually running for a project: container
// status classification, the snapshot of containers grouped by service, and
// the readiness rules built on top of both. Talking to the engine lives in
// the shell; everything here is pure.
package runtime

import (
	"fmt"
	"strings"
)

// =============================================================================
// Status Classification
// =============================================================================

// StatusKind enumerates the container states cage distinguishes.
type StatusKind int

const (
	// StatusOther covers states cage has no special handling for, such as
	// dead or removing. The zero value, so an unclassified status reads
	// as other rather than created.
	StatusOther StatusKind = iota
	StatusCreated
	StatusRestarting
	StatusRunning
	StatusPaused
	// StatusDone is a clean exit: the container stopped with code zero.
	StatusDone
	// StatusExited is an unclean exit; the code travels with the status.
	StatusExited
)

// Status classifies one container's engine state.
type Status struct {
	Kind     StatusKind
	ExitCode int
}

// Classify maps an engine state string and exit code to a Status. It is
// total: every input maps to a value, unknown states to StatusOther.
func Classify(state string, exitCode int) Status {
	switch strings.ToLower(state) {
	case "created":
		return Status{Kind: StatusCreated}
	case "restarting":
		return Status{Kind: StatusRestarting}
	case "running":
		return Status{Kind: StatusRunning}
	case "paused":
		return Status{Kind: StatusPaused}
	case "exited", "stopped":
		if exitCode == 0 {
			return Status{Kind: StatusDone}
		}
		return Status{Kind: StatusExited, ExitCode: exitCode}
	default:
		return Status{Kind: StatusOther}
	}
}

// IsRunning reports whether the container is live and unpaused.
func (s Status) IsRunning() bool {
	return s.Kind == StatusRunning
}

func (s Status) String() string {
	switch s.Kind {
	case StatusCreated:
		return "created"
	case StatusRestarting:
		return "restarting"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusDone:
		return "done"
	case StatusExited:
		return fmt.Sprintf("exited (%d)", s.ExitCode)
	default:
		return "other"
	}
}
