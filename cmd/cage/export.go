package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
)

// =============================================================================
// Export Command
// =============================================================================

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write portable compose files for deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := checkExportDir(dir); err != nil {
				return err
			}
			return a.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				return eng.Export(ctx, t, dir)
			})
		},
	}
}

// checkExportDir refuses to write into a directory that already has content.
func checkExportDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("export directory %s is not empty", dir)
	}
	return nil
}
