package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pipewatch/internal/config"
	"pipewatch/internal/feed"
	"pipewatch/internal/logging"
	"pipewatch/internal/registry"
	"pipewatch/internal/terminal"
)

var configPath = config.FileName

// run is one snapshot loaded into fresh registries.
type run struct {
	cfg       *config.ProjectConfig
	plugins   *registry.PluginRegistry
	instances *registry.InstanceRegistry
	terminal  *terminal.Registry
	result    *feed.Result
}

func openRun(ctx context.Context) (context.Context, *run, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return ctx, nil, err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	ctx = logging.WithLogger(ctx, logger)

	base := filepath.Dir(configPath)
	doc, err := feed.ParseFile(resolvePath(base, cfg.Snapshot))
	if err != nil {
		return ctx, nil, err
	}

	records := make([]string, 0, len(cfg.Records))
	for _, path := range cfg.Records {
		records = append(records, resolvePath(base, path))
	}

	r := &run{
		cfg:       cfg,
		plugins:   registry.NewPluginRegistry(registry.WithLogger(logger)),
		instances: registry.NewInstanceRegistry(registry.WithLogger(logger)),
		terminal:  terminal.New(),
	}
	r.result, err = feed.Run(ctx, doc, feed.Target{
		Plugins:   r.plugins,
		Instances: r.instances,
		Terminal:  r.terminal,
	}, feed.Options{RecordFiles: records})
	if err != nil {
		return ctx, nil, fmt.Errorf("feeding %s: %w", cfg.Snapshot, err)
	}
	return ctx, r, nil
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
