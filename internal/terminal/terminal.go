// Package terminal holds the log records shown in the terminal view. Unlike
// the entity registries it has no defaults, no name index and no field
// mutation: records are stored as appended.
package terminal

import (
	"sync"

	"pipewatch/internal/registry"
)

// Fields is the fixed set of record fields addressable by role, grouped by
// the kind of record that usually carries them.
var Fields = []string{
	"type",
	"filter",
	"message",

	// log record
	"threadName",
	"name",
	"thread",
	"created",
	"process",
	"processName",
	"args",
	"module",
	"filename",
	"levelno",
	"exc_text",
	"pathname",
	"lineno",
	"msg",
	"exc_info",
	"funcName",
	"relativeCreated",
	"levelname",
	"msecs",

	// exception
	"fname",
	"line_number",
	"func",
	"exc",

	// context
	"port",
	"host",
	"user",
	"connectTime",
	"pythonVersion",
	"pyblishVersion",
	"endpointVersion",

	// plugin
	"doc",
	"instance",
	"plugin",
}

// Record is a single log entry keyed by names from Fields. Missing fields
// are simply absent.
type Record map[string]any

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

var roles = sync.OnceValue(func() *registry.RoleTable {
	return registry.NewRoleTable(Fields)
})

func Roles() *registry.RoleTable {
	return roles()
}

type Registry struct {
	items     []Record
	listeners []registry.Listener
}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) Subscribe(l registry.Listener) {
	r.listeners = append(r.listeners, l)
}

func (r *Registry) Append(record Record) {
	row := len(r.items)
	r.items = append(r.items, record)
	for _, l := range r.listeners {
		l.RowsInserted(row, row)
	}
}

func (r *Registry) RowCount() int {
	return len(r.items)
}

func (r *Registry) FieldAt(index int, role registry.Role) (any, bool) {
	if index < 0 || index >= len(r.items) {
		return nil, false
	}
	name, ok := Roles().Name(role)
	if !ok {
		return nil, false
	}
	value, ok := r.items[index][name]
	return value, ok
}

func (r *Registry) RoleNames() map[registry.Role]string {
	return Roles().Names()
}

// RoleOf returns the role of a field name.
func RoleOf(name string) (registry.Role, bool) {
	return Roles().Role(name)
}

// Records returns the records in append order.
func (r *Registry) Records() []Record {
	return append([]Record(nil), r.items...)
}

func (r *Registry) Reset() {
	r.items = nil
	for _, l := range r.listeners {
		l.Reset()
	}
}
