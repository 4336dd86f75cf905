package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pipewatch/internal/entity"
	"pipewatch/internal/registry"
)

func queryEntityCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "entity <name>",
		Short: "Display an entity and its fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runQueryEntity(cmd, name, kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "plugin or instance, to disambiguate")
	return cmd
}

func runQueryEntity(cmd *cobra.Command, name, kind string) error {
	_, r, err := openRun(context.Background())
	if err != nil {
		return err
	}

	var item entity.Entity
	if kind == "" || kind == "plugin" {
		if p, err := r.plugins.ItemFromName(name); err == nil {
			item = p
		} else if !errors.Is(err, registry.ErrNotFound) {
			return err
		}
	}
	if item == nil && (kind == "" || kind == "instance") {
		if inst, err := r.instances.ItemFromName(name); err == nil {
			item = inst
		} else if !errors.Is(err, registry.ErrNotFound) {
			return err
		}
	}
	if item == nil {
		fmt.Fprintf(os.Stdout, "No entity found for %q.\n", name)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Name: %s\n", item.EntityName())
	fmt.Fprintf(os.Stdout, "Kind: %s\n", item.Kind())
	fmt.Fprintln(os.Stdout, "Fields:")
	for _, key := range item.Fields() {
		if key == "name" {
			continue
		}
		value, _ := item.Field(key)
		fmt.Fprintf(os.Stdout, "  %s: %v\n", key, value)
	}
	return nil
}
