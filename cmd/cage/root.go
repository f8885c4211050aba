package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
	"github.com/faradayio/cage-sub000/internal/shell/docker"
	"github.com/faradayio/cage-sub000/internal/shell/store"
)

// =============================================================================
// CLI Wiring
// =============================================================================

// app carries the state shared by every subcommand: settings resolved in the
// root PersistentPreRunE, the logger, and the Docker client once a command
// has asked for one.
type app struct {
	projectDir string
	targetFlag string

	root     string
	settings *Settings
	logger   *slog.Logger
	layout   store.Layout

	docker *docker.Client
}

func newApp() *app {
	return &app{}
}

// init resolves the project root and loads settings before any RunE fires.
func (a *app) init() error {
	start := a.projectDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		start = FindProjectRoot(wd)
	}

	root, err := filepath.Abs(start)
	if err != nil {
		return err
	}
	a.root = root

	settings, err := LoadSettings(root)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = SetupLogger(settings)
	a.layout = settings.Layout(root)
	return nil
}

// engine builds the orchestration engine. With needDocker false an
// unreachable daemon only logs a warning; synthesis and source management
// work fine without one.
func (a *app) engine(ctx context.Context, needDocker bool) (*engine.Engine, error) {
	dc, err := a.dockerClient(ctx, needDocker)
	if err != nil {
		return nil, err
	}

	return engine.New(store.New(a.layout), dc, engine.Options{
		ProjectName:   a.settings.Project.Name,
		DefaultTarget: a.settings.Project.DefaultTarget,
		ComposeBin:    a.settings.Compose.Bin,
		Tokens:        a.settings.Tokens,
		Logger:        a.logger,
	})
}

func (a *app) dockerClient(ctx context.Context, need bool) (*docker.Client, error) {
	if a.docker != nil {
		return a.docker, nil
	}

	dc, err := docker.NewClient(a.settings.Docker.Host)
	if err == nil {
		if pingErr := dc.Ping(ctx); pingErr != nil {
			dc.Close()
			err = pingErr
		}
	}
	if err != nil {
		if need {
			return nil, err
		}
		a.logger.Warn("container engine unreachable, continuing without it", "error", err)
		return nil, nil
	}

	a.docker = dc
	return dc, nil
}

func (a *app) close() {
	if a.docker != nil {
		a.docker.Close()
	}
}

// withEngine wraps the load sequence shared by every verb: build the engine,
// resolve the target, then hand both to fn.
func (a *app) withEngine(cmd *cobra.Command, needDocker bool, fn func(ctx context.Context, eng *engine.Engine, t project.Target) error) error {
	ctx := cmd.Context()

	eng, err := a.engine(ctx, needDocker)
	if err != nil {
		return err
	}

	t, err := eng.Target(a.targetFlag)
	if err != nil {
		return err
	}

	return fn(ctx, eng, t)
}

// =============================================================================
// Root Command
// =============================================================================

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cage",
		Short: "Develop and run multi-pod Docker applications",
		Long: `cage turns pod definitions and target overrides into docker-compose
files, keeps library sources mounted into containers, and drives the
container engine through the generated files.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.targetFlag, "target", "t", "", "target to act on (default from settings)")
	flags.StringVar(&a.projectDir, "project-dir", "", "project root (default: nearest parent with a pods directory)")

	root.AddCommand(
		newUpCmd(a),
		newStopCmd(a),
		newRmCmd(a),
		newBuildCmd(a),
		newPullCmd(a),
		newRunCmd(a),
		newLogsCmd(a),
		newStatusCmd(a),
		newExportCmd(a),
		newSourceCmd(a),
	)
	return root
}
