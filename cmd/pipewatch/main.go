package main

import (
	"os"

	"github.com/spf13/cobra"

	"pipewatch/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:   "pipewatch",
		Short: "Inspect and drive publishing pipeline runs",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.FileName, "Path to the project config")
	root.AddCommand(loadCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(walkCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
