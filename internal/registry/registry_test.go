package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"pipewatch/internal/entity"
)

type recordingListener struct {
	inserted [][2]int
	resets   int
	changed  []struct {
		index int
		role  Role
	}
}

func (l *recordingListener) RowsInserted(first, last int) {
	l.inserted = append(l.inserted, [2]int{first, last})
}

func (l *recordingListener) Reset() {
	l.resets++
}

func (l *recordingListener) DataChanged(index int, role Role) {
	l.changed = append(l.changed, struct {
		index int
		role  Role
	}{index: index, role: role})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustRole(t *testing.T, name string) Role {
	t.Helper()
	role, ok := EntityRoles().Role(name)
	if !ok {
		t.Fatalf("no role for %s", name)
	}
	return role
}

func TestAppend(t *testing.T) {
	reg := New[entity.Entity](WithLogger(quietLogger()))
	listener := &recordingListener{}
	reg.Subscribe(listener)

	names := []string{"a", "b", "c", "d"}
	for _, name := range names {
		reg.Append(entity.NewItem(name, nil))
	}

	if reg.RowCount() != len(names) {
		t.Fatalf("expected %d rows, got %d", len(names), reg.RowCount())
	}
	nameRole := mustRole(t, "name")
	for i, name := range names {
		got, ok := reg.FieldAt(i, nameRole)
		if !ok || got != name {
			t.Fatalf("row %d: expected %q, got %v (%v)", i, name, got, ok)
		}
	}
	if len(listener.inserted) != len(names) {
		t.Fatalf("expected %d insert notifications, got %d", len(names), len(listener.inserted))
	}
	for i, rng := range listener.inserted {
		if rng != [2]int{i, i} {
			t.Fatalf("insert %d: unexpected range %v", i, rng)
		}
	}
}

func TestAppend_ObserverSeesNewRow(t *testing.T) {
	reg := New[*entity.Instance]()
	var seen string
	reg.Subscribe(ListenerFuncs{OnRowsInserted: func(first, last int) {
		item, err := reg.ItemFromName("Bruce")
		if err != nil {
			t.Fatalf("lookup inside notification: %v", err)
		}
		seen = item.Name
		if reg.RowCount() != last+1 {
			t.Fatalf("expected row count %d, got %d", last+1, reg.RowCount())
		}
	}})
	reg.Append(entity.NewInstance("Bruce", nil))
	if seen != "Bruce" {
		t.Fatalf("expected observer to see Bruce, got %q", seen)
	}
}

func TestFieldAt(t *testing.T) {
	reg := New[entity.Entity]()
	reg.Append(entity.NewPlugin("p", map[string]any{"type": "validator"}))
	reg.Append(entity.NewInstance("i", map[string]any{"family": "model"}))

	t.Run("kind role", func(t *testing.T) {
		got, ok := reg.FieldAt(0, RoleKind)
		if !ok || got != string(entity.KindPlugin) {
			t.Fatalf("expected Plugin, got %v", got)
		}
		got, _ = reg.FieldAt(1, RoleKind)
		if got != string(entity.KindInstance) {
			t.Fatalf("expected Instance, got %v", got)
		}
	})

	t.Run("known field", func(t *testing.T) {
		got, ok := reg.FieldAt(0, mustRole(t, "type"))
		if !ok || got != "validator" {
			t.Fatalf("expected validator, got %v", got)
		}
		got, ok = reg.FieldAt(1, mustRole(t, "family"))
		if !ok || got != "model" {
			t.Fatalf("expected model, got %v", got)
		}
	})

	t.Run("field of another variant", func(t *testing.T) {
		if _, ok := reg.FieldAt(1, mustRole(t, "doc")); ok {
			t.Fatalf("expected instance to have no doc")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, index := range []int{-1, 2, 100} {
			if got, ok := reg.FieldAt(index, mustRole(t, "name")); ok || got != nil {
				t.Fatalf("index %d: expected empty sentinel, got %v", index, got)
			}
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		if _, ok := reg.FieldAt(0, Role(42)); ok {
			t.Fatalf("expected empty sentinel for unknown role")
		}
	})
}

func TestSetField(t *testing.T) {
	reg := New[*entity.Instance](WithLogger(quietLogger()))
	listener := &recordingListener{}
	reg.Subscribe(listener)
	reg.Append(entity.NewInstance("Bruce", map[string]any{"family": "model"}))

	type change struct {
		item     string
		key      string
		old, new any
	}
	var changes []change
	reg.OnFieldChanged(func(item *entity.Instance, key string, old, new any) {
		changes = append(changes, change{item: item.Name, key: key, old: old, new: new})
	})

	if err := reg.SetField(0, "family", "rig"); err != nil {
		t.Fatalf("set field: %v", err)
	}
	got, _ := reg.FieldAt(0, mustRole(t, "family"))
	if got != "rig" {
		t.Fatalf("expected rig, got %v", got)
	}
	if len(listener.changed) != 1 || listener.changed[0].index != 0 || listener.changed[0].role != mustRole(t, "family") {
		t.Fatalf("unexpected cell notifications %+v", listener.changed)
	}
	want := []change{{item: "Bruce", key: "family", old: "model", new: "rig"}}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("expected %+v, got %+v", want, changes)
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reg := New[*entity.Instance](WithLogger(logger))
	listener := &recordingListener{}
	reg.Subscribe(listener)
	reg.Append(entity.NewInstance("Bruce", nil))
	before := fmt.Sprintf("%+v", *reg.Items()[0])

	err := reg.SetField(0, "doesNotExist", 1)
	if !errors.Is(err, entity.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if reg.RowCount() != 1 {
		t.Fatalf("expected row count unchanged")
	}
	if after := fmt.Sprintf("%+v", *reg.Items()[0]); after != before {
		t.Fatalf("expected fields unchanged\nbefore %s\nafter  %s", before, after)
	}
	if len(listener.changed) != 0 {
		t.Fatalf("expected no notifications, got %d", len(listener.changed))
	}
	if !strings.Contains(buf.String(), "doesNotExist") {
		t.Fatalf("expected diagnostic to be logged, got %q", buf.String())
	}
}

func TestSetField_Rejected(t *testing.T) {
	reg := New[*entity.Plugin](WithLogger(quietLogger()))
	reg.Append(entity.NewPlugin("p", nil))

	if err := reg.SetField(0, "hasRepair", "yes"); !errors.Is(err, entity.ErrFieldType) {
		t.Fatalf("expected ErrFieldType, got %v", err)
	}
	if err := reg.SetField(3, "hasRepair", true); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	reg := New[entity.Entity]()
	a := entity.NewItem("a", nil)
	b := entity.NewItem("b", nil)
	reg.Append(a)
	reg.Append(b)

	item, err := reg.ItemFromName("b")
	if err != nil || item != entity.Entity(b) {
		t.Fatalf("expected b, got %v (%v)", item, err)
	}
	index, err := reg.ItemIndexFromName("b")
	if err != nil || index != 1 {
		t.Fatalf("expected index 1, got %d (%v)", index, err)
	}
	index, err = reg.ItemIndexFromItem(a)
	if err != nil || index != 0 {
		t.Fatalf("expected index 0, got %d (%v)", index, err)
	}

	if _, err := reg.ItemFromName("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := reg.ItemIndexFromItem(entity.NewItem("a", nil)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign item, got %v", err)
	}
}

func TestDuplicateNames(t *testing.T) {
	reg := New[entity.Entity]()
	first := entity.NewItem("dup", nil)
	reg.Append(first)
	reg.Append(entity.NewItem("dup", nil))

	if reg.RowCount() != 2 {
		t.Fatalf("expected duplicate to be accepted")
	}
	item, err := reg.ItemFromName("dup")
	if err != nil || item != entity.Entity(first) {
		t.Fatalf("expected first match")
	}
}

func TestReset(t *testing.T) {
	reg := New[entity.Entity]()
	listener := &recordingListener{}
	reg.Subscribe(listener)
	names := []string{"a", "b", "c"}
	for _, name := range names {
		reg.Append(entity.NewItem(name, nil))
	}

	reg.Reset()

	if reg.RowCount() != 0 {
		t.Fatalf("expected 0 rows, got %d", reg.RowCount())
	}
	if listener.resets != 1 {
		t.Fatalf("expected one reset notification, got %d", listener.resets)
	}
	for _, name := range names {
		if _, err := reg.ItemFromName(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected %s to be gone, got %v", name, err)
		}
	}
}

func TestSerialized(t *testing.T) {
	reg := New[entity.Entity]()
	first := map[string]any{"family": "model"}
	second := map[string]any{"families": []any{"rig"}, "doc": strings.Repeat("z", 50)}
	reg.Append(entity.NewInstance("i", first))
	reg.Append(entity.NewPlugin("p", second))

	got := reg.Serialized()
	want := []map[string]any{first, second}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPluginsAndInstances(t *testing.T) {
	reg := New[entity.Entity]()
	reg.Append(entity.NewPlugin("p1", nil))
	reg.Append(entity.NewInstance("i1", nil))
	reg.Append(entity.NewItem("x", nil))
	reg.Append(entity.NewPlugin("p2", nil))

	plugins := reg.Plugins()
	if len(plugins) != 2 || plugins[0].Name != "p1" || plugins[1].Name != "p2" {
		t.Fatalf("unexpected plugins %v", plugins)
	}
	instances := reg.Instances()
	if len(instances) != 1 || instances[0].Name != "i1" {
		t.Fatalf("unexpected instances %v", instances)
	}
}

func TestEntityRoles(t *testing.T) {
	roles := EntityRoles()
	if roles != EntityRoles() {
		t.Fatalf("expected a single shared table")
	}
	if New[entity.Entity]().Roles() != New[*entity.Plugin]().Roles() {
		t.Fatalf("expected registries to share the role table")
	}

	keys := entity.UnionKeys(entity.BaseSchema, entity.InstanceSchema, entity.PluginSchema)
	names := roles.Names()
	if len(names) != len(keys)+1 {
		t.Fatalf("expected %d roles, got %d", len(keys)+1, len(names))
	}
	for i, key := range keys {
		if names[UserRole+Role(i)] != key {
			t.Fatalf("role %d: expected %s, got %s", UserRole+Role(i), key, names[UserRole+Role(i)])
		}
	}
	if names[RoleKind] != KindField {
		t.Fatalf("expected reserved kind role")
	}
	ordered := roles.Roles()
	if ordered[0] != UserRole || ordered[len(ordered)-1] != RoleKind {
		t.Fatalf("unexpected role order %v", ordered)
	}
}

func TestSetField_RenameUpdatesIndex(t *testing.T) {
	reg := New[entity.Entity](WithLogger(quietLogger()))
	renamed := entity.NewItem("old", nil)
	reg.Append(renamed)
	reg.Append(entity.NewItem("other", nil))

	if err := reg.SetField(0, "name", "new"); err != nil {
		t.Fatalf("set field: %v", err)
	}

	item, err := reg.ItemFromName("new")
	if err != nil || item != entity.Entity(renamed) {
		t.Fatalf("expected lookup by current name, got %v (%v)", item, err)
	}
	if _, err := reg.ItemFromName("old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old name to be gone, got %v", err)
	}
	if index, err := reg.ItemIndexFromName("other"); err != nil || index != 1 {
		t.Fatalf("expected other at 1, got %d (%v)", index, err)
	}

	t.Run("rename onto an existing name keeps first match", func(t *testing.T) {
		if err := reg.SetField(1, "name", "new"); err != nil {
			t.Fatalf("set field: %v", err)
		}
		if index, err := reg.ItemIndexFromName("new"); err != nil || index != 0 {
			t.Fatalf("expected first match at 0, got %d (%v)", index, err)
		}
		if err := reg.SetField(0, "name", "gone"); err != nil {
			t.Fatalf("set field: %v", err)
		}
		if index, err := reg.ItemIndexFromName("new"); err != nil || index != 1 {
			t.Fatalf("expected remaining duplicate at 1, got %d (%v)", index, err)
		}
	})
}

func TestSerialized_ReturnsCopies(t *testing.T) {
	reg := New[entity.Entity]()
	data := map[string]any{"family": "model"}
	reg.Append(entity.NewInstance("i", data))

	reg.Serialized()[0]["family"] = "rig"

	if data["family"] != "model" || reg.Serialized()[0]["family"] != "model" {
		t.Fatalf("expected retained data to be unchanged, got %v", reg.Serialized()[0])
	}
}
