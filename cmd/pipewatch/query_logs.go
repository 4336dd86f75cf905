package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pipewatch/internal/terminal"
)

func queryLogsCmd() *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print terminal records in arrival order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryLogs(cmd, level)
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "Only show records with this levelname")
	return cmd
}

func runQueryLogs(cmd *cobra.Command, level string) error {
	_, r, err := openRun(context.Background())
	if err != nil {
		return err
	}

	printed := 0
	for _, record := range r.terminal.Records() {
		if level != "" && !strings.EqualFold(record.String("levelname"), level) {
			continue
		}
		fmt.Fprintln(os.Stdout, formatRecord(record))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(os.Stdout, "No records found.")
	}
	return nil
}

func formatRecord(record terminal.Record) string {
	switch record.String("type") {
	case "context":
		return fmt.Sprintf("[context] host=%v user=%v endpoint=%v", record["host"], record["user"], record["endpointVersion"])
	case "error":
		return fmt.Sprintf("[error] %v: %v (%v:%v)", record["exc"], record["args"], record["fname"], record["line_number"])
	case "plugin":
		return fmt.Sprintf("[plugin] %v on %v", record["plugin"], record["instance"])
	}
	levelname := record.String("levelname")
	if levelname == "" {
		levelname = "record"
	}
	return fmt.Sprintf("[%s] %s", strings.ToLower(levelname), record.String("message"))
}
