package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
)

// =============================================================================
// Source Commands
// =============================================================================

func newSourceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage the source tree checkouts used by mounted pods",
	}
	cmd.AddCommand(
		newSourceLsCmd(a),
		newSourceCloneCmd(a),
		newSourceMountCmd(a),
		newSourceUnmountCmd(a),
	)
	return cmd
}

func newSourceLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List tracked sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				writeSourceTable(cmd.OutOrStdout(), eng.Sources())
				return nil
			})
		},
	}
}

func newSourceCloneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <alias>",
		Short: "Clone a source into the source tree and mount it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.CloneSource(ctx, args[0])
			})
		},
	}
}

func newSourceMountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mount <alias>",
		Short: "Mount a source into the pods that use it, cloning first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.MountSource(ctx, args[0])
			})
		},
	}
}

func newSourceUnmountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unmount <alias>",
		Short: "Unmount a source, restoring the pod's original configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.UnmountSource(args[0])
			})
		},
	}
}

func writeSourceTable(out io.Writer, sources []engine.SourceStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMOUNTED\tAVAILABLE\tORIGIN")
	for _, src := range sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", src.Alias, yesNo(src.Mounted), yesNo(src.Available), src.Origin)
	}
	w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
