package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"pipewatch/internal/entity"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrOutOfRange = errors.New("index out of range")
)

type options struct {
	logger *slog.Logger
}

type Option func(*options)

// WithLogger sets the logger used for diagnostics such as writes to
// unknown fields.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Registry is an ordered, append-only collection of entities addressable
// by position and by name. It is not safe for concurrent use; all calls
// are expected from one goroutine.
type Registry[E entity.Entity] struct {
	items     []E
	index     map[string]int
	roles     *RoleTable
	listeners []Listener
	onField   []FieldChangedFunc[E]
	logger    *slog.Logger
}

func New[E entity.Entity](opts ...Option) *Registry[E] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[E]{
		index:  make(map[string]int),
		roles:  EntityRoles(),
		logger: o.logger,
	}
}

func (r *Registry[E]) Subscribe(l Listener) {
	r.listeners = append(r.listeners, l)
}

func (r *Registry[E]) OnFieldChanged(fn FieldChangedFunc[E]) {
	r.onField = append(r.onField, fn)
}

func (r *Registry[E]) Roles() *RoleTable {
	return r.roles
}

// RoleNames returns the role to field name table used by FieldAt.
func (r *Registry[E]) RoleNames() map[Role]string {
	return r.roles.Names()
}

// Append adds item at the end. Duplicate names are accepted; name lookups
// resolve to the first item currently carrying a name, including after a
// rename through SetField.
func (r *Registry[E]) Append(item E) {
	row := len(r.items)
	r.items = append(r.items, item)
	if _, exists := r.index[item.EntityName()]; !exists {
		r.index[item.EntityName()] = row
	}
	for _, l := range r.listeners {
		l.RowsInserted(row, row)
	}
}

func (r *Registry[E]) RowCount() int {
	return len(r.items)
}

// FieldAt projects the field identified by role of the item at index. It
// returns false when the index is out of range or the role does not name
// a field of the item.
func (r *Registry[E]) FieldAt(index int, role Role) (any, bool) {
	item, ok := r.ItemFromIndex(index)
	if !ok {
		return nil, false
	}
	if role == RoleKind {
		return string(item.Kind()), true
	}
	name, ok := r.roles.Name(role)
	if !ok {
		return nil, false
	}
	return item.Field(name)
}

// SetField assigns value to key on the item at index and notifies
// listeners. Unknown keys and mistyped values are logged and leave the
// registry unchanged; the error is returned for callers that care.
func (r *Registry[E]) SetField(index int, key string, value any) error {
	item, ok := r.ItemFromIndex(index)
	if !ok {
		r.logger.Warn("set field on missing row", "index", index, "key", key)
		return fmt.Errorf("set field %s: %w: %d", key, ErrOutOfRange, index)
	}

	old, ok := item.Field(key)
	if !ok {
		r.logger.Warn("field does not exist", "item", item.EntityName(), "key", key)
		return fmt.Errorf("set field on %s: %w: %s", item.EntityName(), entity.ErrUnknownField, key)
	}
	if err := item.SetField(key, value); err != nil {
		r.logger.Warn("field value rejected", "item", item.EntityName(), "key", key, "error", err)
		return fmt.Errorf("set field on %s: %w", item.EntityName(), err)
	}

	if key == "name" {
		r.reindex()
	}

	role, _ := r.roles.Role(key)
	for _, l := range r.listeners {
		l.DataChanged(index, role)
	}
	current, _ := item.Field(key)
	for _, fn := range r.onField {
		fn(item, key, old, current)
	}
	return nil
}

// reindex rebuilds the name index from the current names, first match
// winning.
func (r *Registry[E]) reindex() {
	r.index = make(map[string]int, len(r.items))
	for i, item := range r.items {
		if _, exists := r.index[item.EntityName()]; !exists {
			r.index[item.EntityName()] = i
		}
	}
}

func (r *Registry[E]) ItemFromIndex(index int) (E, bool) {
	if index < 0 || index >= len(r.items) {
		var zero E
		return zero, false
	}
	return r.items[index], true
}

func (r *Registry[E]) ItemFromName(name string) (E, error) {
	index, err := r.ItemIndexFromName(name)
	if err != nil {
		var zero E
		return zero, err
	}
	return r.items[index], nil
}

func (r *Registry[E]) ItemIndexFromName(name string) (int, error) {
	index, ok := r.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return index, nil
}

func (r *Registry[E]) ItemIndexFromItem(item E) (int, error) {
	for i, candidate := range r.items {
		if any(candidate) == any(item) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNotFound, item.EntityName())
}

// Items returns the items in registry order.
func (r *Registry[E]) Items() []E {
	return append([]E(nil), r.items...)
}

// Serialized returns a copy of the raw data mapping of every item in order.
func (r *Registry[E]) Serialized() []map[string]any {
	out := make([]map[string]any, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, maps.Clone(item.Data()))
	}
	return out
}

// Reset drops every item and emits a single reset notification.
func (r *Registry[E]) Reset() {
	r.items = nil
	r.index = make(map[string]int)
	for _, l := range r.listeners {
		l.Reset()
	}
}

func (r *Registry[E]) Plugins() []*entity.Plugin {
	var plugins []*entity.Plugin
	for _, item := range r.items {
		if p, ok := any(item).(*entity.Plugin); ok {
			plugins = append(plugins, p)
		}
	}
	return plugins
}

func (r *Registry[E]) Instances() []*entity.Instance {
	var instances []*entity.Instance
	for _, item := range r.items {
		if inst, ok := any(item).(*entity.Instance); ok {
			instances = append(instances, inst)
		}
	}
	return instances
}
