// Package engine orchestrates cage's commands. It loads the project through
// the store, runs the synthesis pipeline over every pod, delegates container
// lifecycle to the compose binary and asks the container engine about
// runtime state.
//
// One Engine serves one invocation: every command starts from the files on
// disk and regenerates its configuration before acting, so a previous run
// can never leave the tool in a broken state that a rerun would not fix.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/core/secret"
	"github.com/faradayio/cage-sub000/internal/core/source"
	"github.com/faradayio/cage-sub000/internal/shell/docker"
	gitshell "github.com/faradayio/cage-sub000/internal/shell/git"
	"github.com/faradayio/cage-sub000/internal/shell/store"
)

// Options configures an Engine.
type Options struct {
	// ProjectName scopes container labels and compose invocations. Defaults
	// to the base name of the project root.
	ProjectName string

	// DefaultTarget is used when a command names no target. Defaults to
	// development.
	DefaultTarget string

	// ComposeBin overrides the compose binary.
	ComposeBin string

	// Tokens maps service names to the environment variable each one
	// receives a generated token in.
	Tokens map[string]string

	// HomeDir anchors ~ paths during synthesis. Defaults to the current
	// user's home directory.
	HomeDir string

	Logger *slog.Logger
}

// Engine ties the loaded project to the shell adapters that act on it.
type Engine struct {
	Project  *project.Project
	Registry *source.Registry
	Secrets  *secret.Store

	store  *store.Store
	docker *docker.Client
	cloner *gitshell.Cloner
	runner *Runner
	opts   Options
	logger *slog.Logger
}

// New loads the project from the store and prepares an engine. The docker
// client may be nil: commands that need the container engine then fail with
// ErrNoDocker, and synthesis skips the host-dns entry.
func New(st *store.Store, dc *docker.Client, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = "development"
	}
	if opts.ProjectName == "" {
		opts.ProjectName = filepath.Base(st.Layout.Root)
	}
	if opts.HomeDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.HomeDir = home
		}
	}

	proj, err := st.LoadProject(opts.ProjectName, opts.DefaultTarget)
	if err != nil {
		return nil, err
	}
	reg, err := st.LoadRegistry(proj)
	if err != nil {
		return nil, err
	}
	secrets, err := st.LoadSecrets()
	if err != nil {
		return nil, err
	}
	if secrets == nil {
		opts.Logger.Debug("no secrets file, skipping secret injection")
	}

	return &Engine{
		Project:  proj,
		Registry: reg,
		Secrets:  secrets,
		store:    st,
		docker:   dc,
		cloner:   &gitshell.Cloner{Logger: opts.Logger, Progress: os.Stderr},
		runner:   &Runner{Bin: opts.ComposeBin, Logger: opts.Logger},
		opts:     opts,
		logger:   opts.Logger,
	}, nil
}

// Target resolves a target name, falling back to the configured default.
func (e *Engine) Target(name string) (project.Target, error) {
	if name == "" {
		name = e.opts.DefaultTarget
	}
	return e.Project.Target(name)
}

func (e *Engine) paths() source.Paths {
	return e.store.Layout.SourcePaths()
}

// sourceAvailable reports whether a source's files exist on disk.
func (e *Engine) sourceAvailable(src *source.Source) bool {
	info, err := os.Stat(src.LocalPath(e.paths()))
	return err == nil && info.IsDir()
}

// selectPods resolves explicit pod names, or falls back to every pod the
// target enables. One-off pods join the fallback only for commands that want
// them (build, pull); naming one explicitly always works.
func (e *Engine) selectPods(t project.Target, names []string, oneOff bool) ([]*project.Pod, error) {
	if len(names) == 0 {
		if oneOff {
			return e.Project.EnabledPods(t), nil
		}
		return e.Project.ServingPods(t), nil
	}
	pods := make([]*project.Pod, 0, len(names))
	for _, name := range names {
		pod, err := e.Project.Pod(name)
		if err != nil {
			return nil, err
		}
		if !pod.EnabledIn(t) {
			return nil, fmt.Errorf("%w: %s in %s", ErrPodDisabled, name, t)
		}
		pods = append(pods, pod)
	}
	return pods, nil
}
