package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pipewatch/internal/entity"
	"pipewatch/internal/logging"
	"pipewatch/internal/registry"
	"pipewatch/internal/terminal"
)

// Target is the set of registries a snapshot is fed into. Terminal may be
// nil when records are not wanted.
type Target struct {
	Plugins   *registry.PluginRegistry
	Instances *registry.InstanceRegistry
	Terminal  *terminal.Registry
}

type Options struct {
	// Keep appends to the registries instead of resetting them first.
	Keep bool
	// RecordFiles are JSON-lines files appended to the terminal after the
	// snapshot's own records.
	RecordFiles []string
}

type Result struct {
	RunID          string
	PluginsAdded   int
	InstancesAdded int
	RecordsAdded   int
	EntriesSkipped int
	Errors         []error
}

func Run(ctx context.Context, doc *Document, target Target, options Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	if target.Plugins == nil || target.Instances == nil {
		return nil, fmt.Errorf("plugin and instance registries are required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	result := &Result{RunID: uuid.NewString()}
	logger.Debug("feeding snapshot", "run", result.RunID, "source", doc.SourceFile,
		"plugins", len(doc.Plugins), "instances", len(doc.Instances))

	if !options.Keep {
		target.Plugins.Reset()
		target.Instances.Reset()
		if target.Terminal != nil {
			target.Terminal.Reset()
		}
	}

	for i, entry := range doc.Plugins {
		if strings.TrimSpace(entry.Name) == "" {
			result.EntriesSkipped++
			result.Errors = append(result.Errors, fmt.Errorf("plugin %d: %w", i, ErrMissingName))
			continue
		}
		target.Plugins.Append(entity.NewPlugin(entry.Name, entry.Data))
		result.PluginsAdded++
	}

	for i, entry := range doc.Instances {
		if strings.TrimSpace(entry.Name) == "" {
			result.EntriesSkipped++
			result.Errors = append(result.Errors, fmt.Errorf("instance %d: %w", i, ErrMissingName))
			continue
		}
		target.Instances.Append(entity.NewInstance(entry.Name, entry.Data))
		result.InstancesAdded++
	}

	if target.Terminal == nil {
		return result, nil
	}

	for _, record := range doc.Records {
		target.Terminal.Append(record)
		result.RecordsAdded++
	}

	for _, path := range options.RecordFiles {
		records, lineErrs, err := ReadRecordsFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading records: %w", err))
			continue
		}
		result.Errors = append(result.Errors, lineErrs...)
		for _, record := range records {
			target.Terminal.Append(record)
			result.RecordsAdded++
		}
		logger.Debug("records loaded", "file", path, "records", len(records), "malformed", len(lineErrs))
	}

	logger.Info("snapshot fed", "run", result.RunID, "plugins", result.PluginsAdded,
		"instances", result.InstancesAdded, "records", result.RecordsAdded, "errors", len(result.Errors))
	return result, nil
}
