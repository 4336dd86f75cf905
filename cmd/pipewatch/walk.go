package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pipewatch/internal/entity"
	"pipewatch/internal/orchestrate"
)

func walkCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Print plugin and instance pairs in pipeline order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop the walk after this long (0 for no limit)")
	return cmd
}

func runWalk(cmd *cobra.Command, timeout time.Duration) error {
	ctx, r, err := openRun(context.Background())
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	printer := orchestrate.RunnerFunc(func(ctx context.Context, plugin *entity.Plugin, instance *entity.Instance) error {
		if instance == nil {
			fmt.Fprintf(os.Stdout, "%s\n", plugin.Name)
			return nil
		}
		fmt.Fprintf(os.Stdout, "%s -> %s\n", plugin.Name, instance.Name)
		return nil
	})

	summary, err := orchestrate.Walk(ctx, r.plugins, r.instances, printer)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%d steps, %d failed.\n", summary.Processed, summary.Failed)
	return nil
}
