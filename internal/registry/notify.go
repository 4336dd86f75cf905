package registry

import "pipewatch/internal/entity"

// Listener receives structural and cell notifications, typically from a
// presentation layer that repaints rows. Implementations must not call a
// mutating method of the registry they are attached to.
type Listener interface {
	RowsInserted(first, last int)
	Reset()
	DataChanged(index int, role Role)
}

// FieldChangedFunc is notified with the previous and new value of every
// successful SetField.
type FieldChangedFunc[E entity.Entity] func(item E, key string, old, new any)

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnRowsInserted func(first, last int)
	OnReset        func()
	OnDataChanged  func(index int, role Role)
}

func (l ListenerFuncs) RowsInserted(first, last int) {
	if l.OnRowsInserted != nil {
		l.OnRowsInserted(first, last)
	}
}

func (l ListenerFuncs) Reset() {
	if l.OnReset != nil {
		l.OnReset()
	}
}

func (l ListenerFuncs) DataChanged(index int, role Role) {
	if l.OnDataChanged != nil {
		l.OnDataChanged(index, role)
	}
}
