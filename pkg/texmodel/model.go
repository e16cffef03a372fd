// Package texmodel exposes an assfile.File as a two-column table (slot, path)
// for interactive editing.
//
// The model holds no copy of entry data. Every read goes to the bound
// document and every edit is routed through it.
package texmodel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/asstex/pkg/assfile"
)

// Model errors.
var (
	ErrNotBound       = errors.New("no document bound to model")
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrIndex          = errors.New("index out of range")
)

// Column identifies a table column.
type Column int

// Columns, in display order.
const (
	ColumnSlot Column = iota
	ColumnPath

	ColumnCount = 2
)

// String returns the column header title.
func (c Column) String() string {
	switch c {
	case ColumnSlot:
		return "Slot"
	case ColumnPath:
		return "Path"
	default:
		return fmt.Sprintf("Column(%d)", int(c))
	}
}

// Valid reports whether c is one of the table columns.
func (c Column) Valid() bool {
	return c >= 0 && c < ColumnCount
}

// Editable reports whether cells of c accept writes.
func (c Column) Editable() bool {
	return c == ColumnPath
}

// IndexError reports a cell address outside the table.
type IndexError struct {
	Row    int
	Column Column
	Rows   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cell (%d, %d) outside %dx%d table", e.Row, int(e.Column), e.Rows, ColumnCount)
}

func (e *IndexError) Unwrap() error { return ErrIndex }

// State is the model's position in its lifecycle.
type State int

// Model states.
const (
	StateUnbound State = iota
	StateClean
	StateDirty
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "Unbound"
	case StateClean:
		return "Clean"
	case StateDirty:
		return "Dirty"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for debug tracing.
func WithLogger(log *zap.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// Model is the table projection of one document.
type Model struct {
	doc       *assfile.File
	unwatch   func()
	listeners []listener
	nextID    int
	lastReset bool
	log       *zap.Logger
}

type listener struct {
	id int
	fn func(Change)
}

// New creates an unbound model. If doc is non-nil it is bound immediately.
func New(doc *assfile.File, opts ...Option) *Model {
	m := &Model{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if doc != nil {
		m.Bind(doc)
	}
	return m
}

// Bind attaches doc, replacing any previously bound document, and emits a
// reset. Bind(nil) is Unbind.
func (m *Model) Bind(doc *assfile.File) {
	if doc == nil {
		m.Unbind()
		return
	}
	m.detach()
	m.doc = doc
	m.unwatch = doc.OnChange(m.onDocumentEvent)
	m.log.Debug("model bound", zap.String("path", doc.Path()), zap.Int("rows", doc.Len()))
	m.emit(resetChange())
}

// Unbind detaches the document, if any, and emits a reset. Closing the
// bound document unbinds the model as well.
func (m *Model) Unbind() {
	if m.doc == nil {
		return
	}
	m.detach()
	m.log.Debug("model unbound")
	m.emit(resetChange())
}

func (m *Model) detach() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
	m.doc = nil
}

// Document returns the bound document, or nil.
func (m *Model) Document() *assfile.File { return m.doc }

// State reports Unbound, Clean or Dirty.
func (m *Model) State() State {
	switch {
	case m.doc == nil:
		return StateUnbound
	case m.doc.IsDirty():
		return StateDirty
	default:
		return StateClean
	}
}

// RowCount returns the number of entries in the bound document.
func (m *Model) RowCount() int {
	if m.doc == nil {
		return 0
	}
	return m.doc.Len()
}

// ColumnCount returns the fixed number of columns.
func (m *Model) ColumnCount() int { return ColumnCount }

// Headers returns the column titles in display order.
func (m *Model) Headers() []string {
	return []string{ColumnSlot.String(), ColumnPath.String()}
}

func (m *Model) checkCell(row int, col Column) error {
	if !col.Valid() || row < 0 || row >= m.RowCount() {
		return &IndexError{Row: row, Column: col, Rows: m.RowCount()}
	}
	return nil
}

// CellValue returns the text of a cell.
func (m *Model) CellValue(row int, col Column) (string, error) {
	if err := m.checkCell(row, col); err != nil {
		return "", err
	}
	e, _ := m.doc.Entry(row)
	if col == ColumnSlot {
		return e.Slot, nil
	}
	return e.Path, nil
}

// SetCellValue writes value into a Path cell through the document.
//
// When the document rejects the value nothing is changed and a rollback
// notification for the row is emitted, so a view that already shows the
// typed text re-reads the stored value.
func (m *Model) SetCellValue(row int, col Column, value string) error {
	if m.doc == nil {
		return ErrNotBound
	}
	if err := m.checkCell(row, col); err != nil {
		return err
	}
	if !col.Editable() {
		return m.reject(row, fmt.Errorf("%w: %s", ErrReadOnlyColumn, col))
	}

	e, _ := m.doc.Entry(row)
	if err := m.doc.SetEntry(e.Slot, value); err != nil {
		return m.reject(row, err)
	}
	return nil
}

// reject emits a rollback for row and returns err.
func (m *Model) reject(row int, err error) error {
	m.log.Debug("cell edit rejected", zap.Int("row", row), zap.Error(err))
	m.emit(Change{Kind: ChangeRollback, First: row, Last: row})
	return err
}

// InsertRow appends a new slot and returns its row.
func (m *Model) InsertRow(slot, path string) (int, error) {
	if m.doc == nil {
		return -1, ErrNotBound
	}
	return m.doc.AddEntry(slot, path)
}

// RemoveRow deletes the entry shown at row.
func (m *Model) RemoveRow(row int) error {
	if m.doc == nil {
		return ErrNotBound
	}
	if err := m.checkCell(row, ColumnSlot); err != nil {
		return err
	}
	e, _ := m.doc.Entry(row)
	_, err := m.doc.RemoveEntry(e.Slot)
	return err
}

// Rows returns a snapshot of all cells, for printing.
func (m *Model) Rows() [][ColumnCount]string {
	rows := make([][ColumnCount]string, m.RowCount())
	for i := range rows {
		e, _ := m.doc.Entry(i)
		rows[i] = [ColumnCount]string{e.Slot, e.Path}
	}
	return rows
}

// Refresh re-synchronizes views after the document changed identity
// (load or close). It emits a reset unless the last notification already was
// one, so a shell that refreshes after every load notifies views once.
func (m *Model) Refresh() {
	m.log.Debug("model refresh", zap.Int("rows", m.RowCount()), zap.Bool("skipped", m.lastReset))
	if m.lastReset {
		return
	}
	m.emit(resetChange())
}

// onDocumentEvent maps document transitions to row notifications.
func (m *Model) onDocumentEvent(ev assfile.Event) {
	switch ev.Kind {
	case assfile.EventLoaded:
		m.emit(resetChange())
	case assfile.EventClosed:
		m.Unbind()
	case assfile.EventEdited:
		m.emit(Change{Kind: ChangeData, First: ev.Index, Last: ev.Index})
	case assfile.EventInserted:
		m.emit(Change{Kind: ChangeInserted, First: ev.Index, Last: ev.Index})
	case assfile.EventRemoved:
		m.emit(Change{Kind: ChangeRemoved, First: ev.Index, Last: ev.Index})
	case assfile.EventSaved, assfile.EventPathChanged:
		m.emit(Change{Kind: ChangeState, First: -1, Last: -1})
	}
}
