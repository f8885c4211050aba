package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultComposeBin is the compose binary used when none is configured.
const DefaultComposeBin = "docker-compose"

// Runner invokes the compose binary with inherited standard streams, so
// interactive commands like run and logs behave as if typed by hand. The
// zero value runs DefaultComposeBin against the process streams. Bin may
// carry arguments of its own ("docker compose"); it is split on whitespace.
type Runner struct {
	Bin    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func (r *Runner) bin() string {
	if r.Bin != "" {
		return r.Bin
	}
	return DefaultComposeBin
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes one compose command and waits for it.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	line := append(strings.Fields(r.bin()), args...)

	cmd := exec.CommandContext(ctx, line[0], line[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	r.logger().Debug("running compose command", "command", strings.Join(line, " "))
	if err := cmd.Run(); err != nil {
		return &CommandError{Command: line, Err: err}
	}
	return nil
}
