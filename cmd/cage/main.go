// Command cage develops and deploys multi-pod Docker applications. It turns
// pod definitions plus target overrides into docker-compose files, keeps
// library sources mounted into containers, and drives the container engine
// through the generated files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/faradayio/cage-sub000/internal/engine"
	"github.com/faradayio/cage-sub000/internal/shell/docker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitComposeError = 2
	ExitDockerError  = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	a := newApp()
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cage: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode classifies err the way scripts expect: compose failures and an
// unreachable container engine get their own codes, everything else counts
// as a configuration error.
func exitCode(err error) int {
	var cmdErr *engine.CommandError
	switch {
	case errors.As(err, &cmdErr):
		return ExitComposeError
	case errors.Is(err, engine.ErrNoDocker),
		errors.Is(err, docker.ErrConnectionFailed),
		errors.Is(err, docker.ErrRuntimeState):
		return ExitDockerError
	default:
		return ExitConfigError
	}
}
