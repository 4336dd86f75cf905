package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const exampleSnapshot = `version: 1
plugins:
  - name: CollectScene
    data:
      type: collector
      families: ["*"]
  - name: ValidateNaming
    data:
      type: validator
      optional: true
      families: [model]
  - name: ExtractModel
    data:
      type: extractor
      families: [model]
instances:
  - name: Bruce
    data:
      family: model
records:
  - type: context
    host: maya
    endpointVersion: 1.0.0
`

func initCmd() *cobra.Command {
	var projectName string
	var snapshot string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new pipewatch project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, snapshot)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&snapshot, "snapshot", "run.yaml", "Snapshot file to create")
	return cmd
}

func runInit(projectName, snapshot string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if _, err := os.Stat(snapshot); err == nil {
		return fmt.Errorf("%s already exists", snapshot)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nsnapshot: %s\nrecords: []\n\nlog:\n  level: info\n  format: text\n\nvalidate:\n  endpoint_constraint: \">= 1.0\"\n", projectName, snapshot)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(snapshot, []byte(exampleSnapshot), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", snapshot, err)
	}

	fmt.Fprintf(os.Stdout, "Created %s and %s.\n", configPath, snapshot)
	return nil
}
