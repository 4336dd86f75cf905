package validate

import (
	"pipewatch/internal/entity"
	"pipewatch/internal/registry"
	"pipewatch/internal/terminal"
)

type Source interface {
	ListPlugins() []*entity.Plugin
	ListInstances() []*entity.Instance
	ListRecords() []terminal.Record
}

// Registries adapts the live registries to Source. Terminal may be nil.
type Registries struct {
	Plugins   *registry.PluginRegistry
	Instances *registry.InstanceRegistry
	Terminal  *terminal.Registry
}

func (r Registries) ListPlugins() []*entity.Plugin {
	if r.Plugins == nil {
		return nil
	}
	return r.Plugins.Items()
}

func (r Registries) ListInstances() []*entity.Instance {
	if r.Instances == nil {
		return nil
	}
	return r.Instances.Items()
}

func (r Registries) ListRecords() []terminal.Record {
	if r.Terminal == nil {
		return nil
	}
	return r.Terminal.Records()
}
