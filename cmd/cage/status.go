package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/engine"
)

// =============================================================================
// Status Command
// =============================================================================

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show container state for every serving pod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine, t project.Target) error {
				pods, err := eng.Status(ctx, t)
				if err != nil {
					return err
				}
				writeStatusTable(cmd.OutOrStdout(), pods)
				return nil
			})
		},
	}
}

func writeStatusTable(out io.Writer, pods []engine.PodStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POD\tSERVICE\tCONTAINER\tSTATUS\tPORTS")
	for _, pod := range pods {
		for _, svc := range pod.Services {
			if len(svc.Containers) == 0 {
				fmt.Fprintf(w, "%s\t%s\t-\tdown\t-\n", pod.Name, svc.Name)
				continue
			}
			for _, c := range svc.Containers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", pod.Name, svc.Name, c.Name, c.Status, formatPorts(c.Ports))
			}
		}
	}
	w.Flush()
}

func formatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
