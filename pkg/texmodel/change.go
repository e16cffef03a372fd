package texmodel

import (
	"fmt"
	"slices"
)

// ChangeKind classifies a model notification.
type ChangeKind int

// Change kinds.
const (
	ChangeReset    ChangeKind = iota // every row may differ, row count included
	ChangeData                       // cell values in [First, Last] changed
	ChangeInserted                   // rows [First, Last] were inserted
	ChangeRemoved                    // rows [First, Last] were removed
	ChangeRollback                   // an edit in [First, Last] was rejected; re-read stored values
	ChangeState                      // clean/dirty or path changed, no cell data changed
)

// String returns a human-readable kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeReset:
		return "reset"
	case ChangeData:
		return "data"
	case ChangeInserted:
		return "inserted"
	case ChangeRemoved:
		return "removed"
	case ChangeRollback:
		return "rollback"
	case ChangeState:
		return "state"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Change describes which rows a view must re-render.
// For ChangeReset and ChangeState, First and Last are -1.
type Change struct {
	Kind  ChangeKind
	First int
	Last  int
}

// All reports whether the change affects every row.
func (c Change) All() bool { return c.Kind == ChangeReset }

func resetChange() Change {
	return Change{Kind: ChangeReset, First: -1, Last: -1}
}

// Subscribe registers fn for change notifications. Calling the returned
// function removes it.
func (m *Model) Subscribe(fn func(Change)) (cancel func()) {
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = slices.Delete(slices.Clone(m.listeners), i, i+1)
				return
			}
		}
	}
}

// emit notifies a snapshot of the listeners, so a listener may cancel
// itself or others without disturbing delivery of c.
func (m *Model) emit(c Change) {
	m.lastReset = c.Kind == ChangeReset
	for _, l := range slices.Clone(m.listeners) {
		l.fn(c)
	}
}
