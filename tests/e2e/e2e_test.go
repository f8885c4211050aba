// Package e2e exercises cage against a real Docker daemon and a real
// compose binary. Every test skips itself when either is missing, so the
// suite is safe to run anywhere:
//
//	go test -v -timeout 10m ./tests/e2e/...
//
// The tests create real containers under throwaway compose project names
// and remove them on cleanup.
package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
	"github.com/faradayio/cage-sub000/internal/shell/docker"
	"github.com/faradayio/cage-sub000/internal/shell/store"
)

// =============================================================================
// Infrastructure Gating
// =============================================================================

// requireDocker connects to the daemon, skipping the test when it is
// unreachable.
func requireDocker(t *testing.T) *docker.Client {
	t.Helper()

	dc, err := docker.NewClient("")
	if err != nil {
		t.Skipf("docker client: %v", err)
	}
	if err := dc.Ping(context.Background()); err != nil {
		dc.Close()
		t.Skipf("docker daemon unreachable: %v", err)
	}
	t.Cleanup(func() { dc.Close() })
	return dc
}

// composeBin returns the compose invocation to use, preferring the
// standalone binary and falling back to the docker CLI plugin.
func composeBin(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("docker-compose"); err == nil {
		return "docker-compose"
	}
	if err := exec.Command("docker", "compose", "version").Run(); err == nil {
		return "docker compose"
	}
	t.Skip("no compose binary on PATH")
	return ""
}

// =============================================================================
// Project Fixture
// =============================================================================

const webPodFile = `
services:
  web:
    image: nginx:1.27-alpine
`

const taskPodFile = `
services:
  task:
    image: busybox:1.36
x-cage:
  one_off: true
`

// writeProjectFixture lays out a minimal cage project with one serving pod
// and one one-off pod.
func writeProjectFixture(t *testing.T, root string) {
	t.Helper()

	files := map[string]string{
		"pods/web.yml":  webPodFile,
		"pods/task.yml": taskPodFile,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newE2EEngine builds an engine over root with a throwaway project name so
// parallel runs cannot collide.
func newE2EEngine(t *testing.T, dc *docker.Client, root, bin string) (*engine.Engine, project.Target) {
	t.Helper()

	name := fmt.Sprintf("cagee2e%d", time.Now().UnixNano()%1_000_000_000)
	eng, err := engine.New(store.New(store.DefaultLayout(root)), dc, engine.Options{
		ProjectName: name,
		ComposeBin:  bin,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	target, err := eng.Target("")
	require.NoError(t, err)
	return eng, target
}

// cleanupPods stops and removes everything the test started. Failures only
// log: cleanup runs after the daemon may already be gone.
func cleanupPods(t *testing.T, eng *engine.Engine, target project.Target) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := eng.Stop(ctx, target, nil); err != nil {
		t.Logf("cleanup stop: %v", err)
	}
	if err := eng.Rm(ctx, target, nil); err != nil {
		t.Logf("cleanup rm: %v", err)
	}
}
