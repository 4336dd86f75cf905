package registry

import (
	"sort"
	"sync"

	"pipewatch/internal/entity"
)

type Role int

// UserRole is the first role id handed out to fields. Lower ids are left
// to the presentation layer's own display roles.
const UserRole Role = 0x0100

// RoleKind is the reserved role of the synthetic "itemType" field.
const RoleKind Role = 999

const KindField = "itemType"

// RoleTable maps role ids to field names. A table never changes after it
// is built.
type RoleTable struct {
	names map[Role]string
	roles map[string]Role
}

func NewRoleTable(fields []string) *RoleTable {
	t := &RoleTable{
		names: make(map[Role]string, len(fields)),
		roles: make(map[string]Role, len(fields)),
	}
	for i, field := range fields {
		role := UserRole + Role(i)
		t.names[role] = field
		t.roles[field] = role
	}
	return t
}

func (t *RoleTable) Name(role Role) (string, bool) {
	name, ok := t.names[role]
	return name, ok
}

func (t *RoleTable) Role(name string) (Role, bool) {
	role, ok := t.roles[name]
	return role, ok
}

// Names returns a copy of the role to field name mapping.
func (t *RoleTable) Names() map[Role]string {
	out := make(map[Role]string, len(t.names))
	for role, name := range t.names {
		out[role] = name
	}
	return out
}

// Roles returns the role ids in ascending order.
func (t *RoleTable) Roles() []Role {
	roles := make([]Role, 0, len(t.names))
	for role := range t.names {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

var entityRoles = sync.OnceValue(func() *RoleTable {
	t := NewRoleTable(entity.UnionKeys(entity.BaseSchema, entity.InstanceSchema, entity.PluginSchema))
	t.names[RoleKind] = KindField
	t.roles[KindField] = RoleKind
	return t
})

// EntityRoles returns the process-wide role table shared by every entity
// registry.
func EntityRoles() *RoleTable {
	return entityRoles()
}
