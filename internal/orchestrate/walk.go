// Package orchestrate drives a publishing run over the plugin and instance
// registries, pairing each toggled plugin with the toggled instances it
// accepts and recording progress back onto both entities.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"

	"pipewatch/internal/entity"
	"pipewatch/internal/logging"
	"pipewatch/internal/registry"
)

// Runner processes one plugin against one instance. Instance is nil for
// plugins that declare no families.
type Runner interface {
	Process(ctx context.Context, plugin *entity.Plugin, instance *entity.Instance) error
}

type RunnerFunc func(ctx context.Context, plugin *entity.Plugin, instance *entity.Instance) error

func (f RunnerFunc) Process(ctx context.Context, plugin *entity.Plugin, instance *entity.Instance) error {
	return f(ctx, plugin, instance)
}

// Pair is one processed step. InstanceIndex is -1 when no instance was
// involved.
type Pair struct {
	Plugin        *entity.Plugin
	Instance      *entity.Instance
	PluginIndex   int
	InstanceIndex int
	Err           error
}

type Summary struct {
	Pairs     []Pair
	Processed int
	Failed    int

	// WriteErrors counts state updates the registries rejected.
	WriteErrors int
}

type fieldSetter interface {
	SetField(index int, key string, value any) error
}

// Walk visits plugins in registry order and, for each, the compatible
// instances in registry order. Runner failures are recorded on the pair and
// on both entities; the walk continues with the next pair. A cancelled
// context stops the walk before the next step and its error is returned
// with the partial summary.
func Walk(ctx context.Context, plugins *registry.PluginRegistry, instances *registry.InstanceRegistry, runner Runner) (*Summary, error) {
	if plugins == nil || instances == nil {
		return nil, fmt.Errorf("plugin and instance registries are required")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	logger := logging.FromContext(ctx)
	summary := &Summary{}
	w := &walker{plugins: plugins, instances: instances, runner: runner, logger: logger, summary: summary}

	for plugin, pi, ok := plugins.NextPlugin(-1); ok; plugin, pi, ok = plugins.NextPlugin(pi) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !plugin.IsToggled {
			logger.Debug("plugin skipped", "plugin", plugin.Name)
			continue
		}

		if len(plugin.Families) == 0 {
			pair := w.step(ctx, pi, plugin, nil, -1, 1)
			summary.add(pair)
			w.finishPlugin(pi, pair.Err == nil)
			continue
		}

		families := familiesFor(plugin, instances)
		total := countToggled(instances, families)
		done := 0
		failed := false
		for inst, ii, ok := instances.NextInstance(-1, families); ok; inst, ii, ok = instances.NextInstance(ii, families) {
			if err := ctx.Err(); err != nil {
				w.set(plugins, pi, "isProcessing", false)
				return summary, err
			}
			if !inst.IsToggled {
				continue
			}
			done++
			pair := w.step(ctx, pi, plugin, inst, ii, float64(done)/float64(total))
			summary.add(pair)
			if pair.Err != nil {
				failed = true
			}
		}
		if done > 0 {
			w.finishPlugin(pi, !failed)
		}
	}

	logger.Info("walk finished", "processed", summary.Processed, "failed", summary.Failed, "write_errors", summary.WriteErrors)
	return summary, nil
}

type walker struct {
	plugins   *registry.PluginRegistry
	instances *registry.InstanceRegistry
	runner    Runner
	logger    *slog.Logger
	summary   *Summary
}

func (w *walker) step(ctx context.Context, pi int, plugin *entity.Plugin, inst *entity.Instance, ii int, progress float64) Pair {
	w.set(w.plugins, pi, "isProcessing", true)
	if inst != nil {
		w.set(w.instances, ii, "isProcessing", true)
	}

	err := w.runner.Process(ctx, plugin, inst)

	w.set(w.plugins, pi, "currentProgress", progress)
	if err != nil {
		name := "-"
		if inst != nil {
			name = inst.Name
		}
		w.logger.Warn("step failed", "plugin", plugin.Name, "instance", name, "error", err)
		w.appendError(w.plugins, pi, plugin.Errors, err)
		w.set(w.plugins, pi, "hasError", true)
	}
	if inst != nil {
		w.set(w.instances, ii, "isProcessing", false)
		w.set(w.instances, ii, "currentProgress", 1.0)
		if err != nil {
			w.appendError(w.instances, ii, inst.Errors, err)
			w.set(w.instances, ii, "hasError", true)
			w.set(w.instances, ii, "succeeded", false)
		} else if !inst.HasError {
			w.set(w.instances, ii, "succeeded", true)
		}
	}

	return Pair{Plugin: plugin, Instance: inst, PluginIndex: pi, InstanceIndex: ii, Err: err}
}

func (w *walker) finishPlugin(pi int, ok bool) {
	w.set(w.plugins, pi, "isProcessing", false)
	w.set(w.plugins, pi, "succeeded", ok)
}

// familiesFor expands the "*" wildcard to every family currently present.
func familiesFor(plugin *entity.Plugin, instances *registry.InstanceRegistry) registry.FamilySet {
	for _, f := range plugin.Families {
		if f != "*" {
			continue
		}
		all := registry.Families()
		for _, inst := range instances.Items() {
			all[inst.Family] = struct{}{}
		}
		return all
	}
	return registry.Families(plugin.Families...)
}

func countToggled(instances *registry.InstanceRegistry, families registry.FamilySet) int {
	n := 0
	for inst, i, ok := instances.NextInstance(-1, families); ok; inst, i, ok = instances.NextInstance(i, families) {
		if inst.IsToggled {
			n++
		}
	}
	return n
}

func (w *walker) appendError(target fieldSetter, index int, existing []any, err error) {
	list := append(append([]any{}, existing...), err.Error())
	w.set(target, index, "errors", list)
}

// set records state on an entity. A rejected write does not stop the walk
// but is logged at error level and counted in the summary.
func (w *walker) set(target fieldSetter, index int, key string, value any) {
	if err := target.SetField(index, key, value); err != nil {
		w.summary.WriteErrors++
		w.logger.Error("recording walk state failed", "index", index, "key", key, "error", err)
	}
}

func (s *Summary) add(pair Pair) {
	s.Pairs = append(s.Pairs, pair)
	s.Processed++
	if pair.Err != nil {
		s.Failed++
	}
}
