package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the configured run snapshot and summarise it",
		RunE:  runLoad,
	}
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	_, r, err := openRun(context.Background())
	if err != nil {
		return err
	}
	result := r.result

	fmt.Fprintln(os.Stdout, "Snapshot loaded.")
	fmt.Fprintf(os.Stdout, "  Run:       %s\n", result.RunID)
	fmt.Fprintf(os.Stdout, "  Plugins:   %d\n", result.PluginsAdded)
	fmt.Fprintf(os.Stdout, "  Instances: %d\n", result.InstancesAdded)
	fmt.Fprintf(os.Stdout, "  Records:   %d\n", result.RecordsAdded)
	fmt.Fprintf(os.Stdout, "  Skipped:   %d\n", result.EntriesSkipped)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("load completed with errors")
	}

	return nil
}
