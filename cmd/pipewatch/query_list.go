package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func queryListCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins and instances in pipeline order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only list plugin or instance entities")
	return cmd
}

func runQueryList(cmd *cobra.Command, kind string) error {
	kind = strings.ToLower(kind)
	switch kind {
	case "", "plugin", "instance":
	default:
		return fmt.Errorf("invalid --kind %q: expected plugin or instance", kind)
	}

	_, r, err := openRun(context.Background())
	if err != nil {
		return err
	}

	printed := 0
	if kind == "" || kind == "plugin" {
		for i, p := range r.plugins.Items() {
			fmt.Fprintf(os.Stdout, "%3d  %s (plugin, %s) %s\n", i, p.Name, p.Type, strings.Join(p.Families, ","))
			printed++
		}
	}
	if kind == "" || kind == "instance" {
		for i, inst := range r.instances.Items() {
			fmt.Fprintf(os.Stdout, "%3d  %s (instance, %s)%s\n", i, inst.Name, inst.Family, toggledSuffix(inst.IsToggled))
			printed++
		}
	}
	if printed == 0 {
		fmt.Fprintln(os.Stdout, "No entities found.")
	}
	return nil
}

func toggledSuffix(toggled bool) string {
	if toggled {
		return ""
	}
	return " [off]"
}
