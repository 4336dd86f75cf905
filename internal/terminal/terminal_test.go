package terminal

import (
	"testing"

	"pipewatch/internal/registry"
)

func TestAppendAndFieldAt(t *testing.T) {
	reg := New()
	var inserted [][2]int
	reg.Subscribe(registry.ListenerFuncs{OnRowsInserted: func(first, last int) {
		inserted = append(inserted, [2]int{first, last})
	}})

	reg.Append(Record{"type": "record", "message": "hello", "levelname": "INFO"})
	reg.Append(Record{"type": "error", "fname": "plugin.py", "line_number": 12})

	if reg.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", reg.RowCount())
	}
	if len(inserted) != 2 || inserted[1] != [2]int{1, 1} {
		t.Fatalf("unexpected insert notifications %v", inserted)
	}

	message, _ := RoleOf("message")
	got, ok := reg.FieldAt(0, message)
	if !ok || got != "hello" {
		t.Fatalf("expected hello, got %v", got)
	}

	t.Run("absent field", func(t *testing.T) {
		if _, ok := reg.FieldAt(1, message); ok {
			t.Fatalf("expected empty sentinel for absent field")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		if _, ok := reg.FieldAt(5, message); ok {
			t.Fatalf("expected empty sentinel for missing row")
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		if _, ok := reg.FieldAt(0, registry.RoleKind); ok {
			t.Fatalf("expected terminal roles to have no kind role")
		}
	})
}

func TestRoles(t *testing.T) {
	names := New().RoleNames()
	if len(names) != len(Fields) {
		t.Fatalf("expected %d roles, got %d", len(Fields), len(names))
	}
	for i, field := range Fields {
		if names[registry.UserRole+registry.Role(i)] != field {
			t.Fatalf("role %d: expected %s", i, field)
		}
	}
}

func TestReset(t *testing.T) {
	reg := New()
	resets := 0
	reg.Subscribe(registry.ListenerFuncs{OnReset: func() { resets++ }})
	reg.Append(Record{"message": "a"})
	reg.Reset()
	if reg.RowCount() != 0 || resets != 1 {
		t.Fatalf("expected empty registry and one reset, got %d rows %d resets", reg.RowCount(), resets)
	}
}
