package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_Success(t *testing.T) {
	r := &Runner{Bin: "sh", Stdout: io.Discard, Stderr: io.Discard, Logger: discardLogger()}

	require.NoError(t, r.Run(context.Background(), "-c", "exit 0"))
}

func TestRunner_FailureCarriesCommandLine(t *testing.T) {
	r := &Runner{Bin: "sh", Stdout: io.Discard, Stderr: io.Discard, Logger: discardLogger()}

	err := r.Run(context.Background(), "-c", "exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, []string{"sh", "-c", "exit 3"}, cmdErr.Command)
	assert.Contains(t, err.Error(), "sh -c exit 3")
}

func TestRunner_MultiWordBin(t *testing.T) {
	r := &Runner{Bin: "sh -c", Stdout: io.Discard, Stderr: io.Discard, Logger: discardLogger()}

	require.NoError(t, r.Run(context.Background(), "exit 0"))
}

func TestRunner_DefaultBin(t *testing.T) {
	var r Runner
	assert.Equal(t, DefaultComposeBin, r.bin())
}
