package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
)

// =============================================================================
// Pod Lifecycle Commands
// =============================================================================

func newUpCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "up [pod...]",
		Short: "Generate compose files and start pods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, wait, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				if wait {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, a.settings.Compose.WaitTimeout)
					defer cancel()
				}
				return eng.Up(ctx, t, args, wait)
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait until every service accepts TCP connections")
	return cmd
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [pod...]",
		Short: "Stop running pods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Stop(ctx, t, args)
			})
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [pod...]",
		Short: "Remove stopped pod containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Rm(ctx, t, args)
			})
		},
	}
}

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build [pod...]",
		Short: "Build images for pods with build sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Build(ctx, t, args)
			})
		},
	}
}

func newPullCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [pod...]",
		Short: "Pull images for pods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Pull(ctx, t, args)
			})
		},
	}
}

// =============================================================================
// One-Off and Log Commands
// =============================================================================

func newRunCmd(a *app) *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "run <pod> [command...]",
		Short: "Run a one-off command in a pod's service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Run(ctx, t, args[0], service, args[1:]...)
			})
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "service to run in (default: the pod's only service)")
	return cmd
}

func newLogsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logs [service...]",
		Short: "Show logs from the pods hosting the given services",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Logs(ctx, t, args)
			})
		},
	}
}
