package registry

import "pipewatch/internal/entity"

// FamilySet is the set of instance families a plugin is eligible for.
type FamilySet map[string]struct{}

func Families(names ...string) FamilySet {
	set := make(FamilySet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s FamilySet) Has(family string) bool {
	_, ok := s[family]
	return ok
}

type PluginRegistry struct {
	*Registry[*entity.Plugin]
}

func NewPluginRegistry(opts ...Option) *PluginRegistry {
	return &PluginRegistry{Registry: New[*entity.Plugin](opts...)}
}

// NextPlugin returns the plugin following current. Pass -1 to start from
// the beginning.
func (r *PluginRegistry) NextPlugin(current int) (*entity.Plugin, int, bool) {
	if current < -1 || current >= len(r.items)-1 {
		return nil, -1, false
	}
	next := current + 1
	p, ok := r.ItemFromIndex(next)
	if !ok {
		return nil, -1, false
	}
	return p, next, true
}

type InstanceRegistry struct {
	*Registry[*entity.Instance]
}

func NewInstanceRegistry(opts ...Option) *InstanceRegistry {
	return &InstanceRegistry{Registry: New[*entity.Instance](opts...)}
}

// NextInstance returns the first instance after current whose family is in
// families. Instances of other families are skipped. Pass -1 to start from
// the beginning.
func (r *InstanceRegistry) NextInstance(current int, families FamilySet) (*entity.Instance, int, bool) {
	if current < -1 || current >= len(r.items)-1 {
		return nil, -1, false
	}
	for i := current + 1; i < len(r.items); i++ {
		if families.Has(r.items[i].Family) {
			return r.items[i], i, true
		}
	}
	return nil, -1, false
}
