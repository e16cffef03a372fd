// Package assfile implements the texture association (ASS) document: a text
// file mapping texture slot names to texture paths, one "slot=path" record
// per line.
//
// A File is owned by a single goroutine. None of its methods lock.
package assfile

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/asstex/pkg/encoding"
)

// EventKind identifies a document state transition.
type EventKind int

// Event kinds.
const (
	EventLoaded EventKind = iota
	EventClosed
	EventSaved
	EventPathChanged
	EventEdited
	EventInserted
	EventRemoved
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventClosed:
		return "closed"
	case EventSaved:
		return "saved"
	case EventPathChanged:
		return "path-changed"
	case EventEdited:
		return "edited"
	case EventInserted:
		return "inserted"
	case EventRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Event describes a completed transition. Index is the affected entry for
// Edited/Inserted/Removed and -1 otherwise.
type Event struct {
	Kind  EventKind
	Index int
	Slot  string
}

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for debug tracing of transitions.
func WithLogger(log *zap.Logger) Option {
	return func(f *File) {
		if log != nil {
			f.log = log
		}
	}
}

// WithMaxPathLength sets the texture path length limit. n <= 0 disables it.
func WithMaxPathLength(n int) Option {
	return func(f *File) { f.maxPathLen = n }
}

// WithCodec sets the byte encoding used on load and save.
func WithCodec(c encoding.Codec) Option {
	return func(f *File) {
		if c != nil {
			f.codec = c
		}
	}
}

// WithFileMode sets the permissions of newly created files.
func WithFileMode(mode os.FileMode) Option {
	return func(f *File) { f.mode = mode }
}

// WithCreateDirs makes Save create missing parent directories.
func WithCreateDirs(create bool) Option {
	return func(f *File) { f.createDirs = create }
}

// File is an ASS document: an optional on-disk path, an ordered list of
// entries and a dirty flag.
type File struct {
	path    string
	entries []Entry
	dirty   bool

	maxPathLen int
	codec      encoding.Codec
	mode       os.FileMode
	createDirs bool
	log        *zap.Logger

	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func(Event)
}

// New creates an empty, unattached document.
func New(opts ...Option) *File {
	f := &File{
		maxPathLen: DefaultMaxPathLength,
		codec:      encoding.UTF8,
		mode:       0644,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnChange registers fn to be called after every transition.
// The returned function removes the registration.
func (f *File) OnChange(fn func(Event)) (cancel func()) {
	f.nextObsID++
	id := f.nextObsID
	f.observers = append(f.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range f.observers {
			if o.id == id {
				f.observers = slices.Delete(slices.Clone(f.observers), i, i+1)
				return
			}
		}
	}
}

// transition is the single place where dirty state changes. Every mutation
// calls it after the document has reached its new consistent state.
// Observers registered or cancelled during delivery take effect from the
// next transition.
func (f *File) transition(ev Event, dirty bool) {
	f.dirty = dirty
	f.log.Debug("document transition",
		zap.Stringer("event", ev.Kind),
		zap.Int("index", ev.Index),
		zap.String("slot", ev.Slot),
		zap.String("path", f.path),
		zap.Bool("dirty", dirty),
	)
	for _, o := range slices.Clone(f.observers) {
		o.fn(ev)
	}
}

// Path returns the save location, or "" if none is set.
func (f *File) Path() string { return f.path }

// IsAttached reports whether the document has a save location.
func (f *File) IsAttached() bool { return f.path != "" }

// IsDirty reports whether entries changed since the last load or save.
func (f *File) IsDirty() bool { return f.dirty }

// Len returns the number of entries.
func (f *File) Len() int { return len(f.entries) }

// Codec returns the byte encoding used on load and save.
func (f *File) Codec() encoding.Codec { return f.codec }

// Entry returns the entry at index i.
func (f *File) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(f.entries) {
		return Entry{}, false
	}
	return f.entries[i], true
}

// Entries returns a copy of all entries in document order.
func (f *File) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Lookup finds the entry for slot and its index.
func (f *File) Lookup(slot string) (Entry, int, bool) {
	i := f.index(slot)
	if i < 0 {
		return Entry{}, -1, false
	}
	return f.entries[i], i, true
}

func (f *File) index(slot string) int {
	for i, e := range f.entries {
		if e.Slot == slot {
			return i
		}
	}
	return -1
}

// Load reads and parses the file at path. On any error the document is
// left exactly as it was.
func (f *File) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}

	text, err := f.codec.Decode(data)
	if err != nil {
		line := 0
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			line = firstInvalidLine(data)
		}
		return &ParseError{Line: line, Reason: err.Error(), Err: err}
	}

	entries, err := parseText(text, f.maxPathLen)
	if err != nil {
		return err
	}

	f.path = path
	f.entries = entries
	f.transition(Event{Kind: EventLoaded, Index: -1}, false)
	return nil
}

// SetPath sets the save location without reading or writing anything.
// Dirty state is unchanged.
func (f *File) SetPath(path string) {
	f.path = path
	f.transition(Event{Kind: EventPathChanged, Index: -1}, f.dirty)
}

// Bytes returns the encoded serialization of the current entries.
func (f *File) Bytes() ([]byte, error) {
	data, err := f.codec.Encode(string(Serialize(f.entries)))
	if err != nil {
		return nil, fmt.Errorf("encoding document as %s: %w", f.codec.Name(), err)
	}
	return data, nil
}

// Save writes the document to its path atomically and clears the dirty flag.
// It returns ErrNoPath if no path has been set.
func (f *File) Save() error {
	if f.path == "" {
		return ErrNoPath
	}

	data, err := f.Bytes()
	if err != nil {
		return err
	}
	if err := writeAtomic(f.path, data, f.mode, f.createDirs); err != nil {
		return &IOError{Op: "write", Path: f.path, Err: err}
	}

	f.transition(Event{Kind: EventSaved, Index: -1}, false)
	return nil
}

// SaveAs is SetPath followed by Save.
func (f *File) SaveAs(path string) error {
	f.SetPath(path)
	return f.Save()
}

// Close discards entries and path without saving. Calling it on an empty
// document is a no-op apart from the notification.
func (f *File) Close() {
	f.path = ""
	f.entries = nil
	f.transition(Event{Kind: EventClosed, Index: -1}, false)
}

// validatePath applies the format rules plus the codec's ability to encode
// the value, so an accepted edit can always be saved.
func (f *File) validatePath(slot, path string) error {
	if err := ValidatePath(path, f.maxPathLen); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Slot = slot
		}
		return err
	}
	if f.codec != encoding.UTF8 {
		if _, err := f.codec.Encode(path); err != nil {
			return &ValidationError{Slot: slot, Value: path, Err: fmt.Errorf("%w: %v", ErrInvalidPath, err)}
		}
	}
	return nil
}

// SetEntry assigns newPath to slot. Setting the current value is a no-op
// and does not mark the document dirty.
func (f *File) SetEntry(slot, newPath string) error {
	i := f.index(slot)
	if i < 0 {
		return &SlotNotFoundError{Slot: slot}
	}
	if err := f.validatePath(slot, newPath); err != nil {
		return err
	}
	if f.entries[i].Path == newPath {
		return nil
	}

	f.entries[i].Path = newPath
	f.transition(Event{Kind: EventEdited, Index: i, Slot: slot}, true)
	return nil
}

// AddEntry appends a new slot and returns its index.
func (f *File) AddEntry(slot, path string) (int, error) {
	if err := ValidateSlot(slot); err != nil {
		return -1, err
	}
	if f.index(slot) >= 0 {
		return -1, &DuplicateSlotError{Slot: slot}
	}
	if err := f.validatePath(slot, path); err != nil {
		return -1, err
	}

	f.entries = append(f.entries, Entry{Slot: slot, Path: path})
	i := len(f.entries) - 1
	f.transition(Event{Kind: EventInserted, Index: i, Slot: slot}, true)
	return i, nil
}

// RemoveEntry deletes slot and returns the index it occupied.
func (f *File) RemoveEntry(slot string) (int, error) {
	i := f.index(slot)
	if i < 0 {
		return -1, &SlotNotFoundError{Slot: slot}
	}

	f.entries = append(f.entries[:i], f.entries[i+1:]...)
	f.transition(Event{Kind: EventRemoved, Index: i, Slot: slot}, true)
	return i, nil
}

// RenameSlot changes the name of a slot, keeping its position and path.
func (f *File) RenameSlot(oldSlot, newSlot string) error {
	i := f.index(oldSlot)
	if i < 0 {
		return &SlotNotFoundError{Slot: oldSlot}
	}
	if err := ValidateSlot(newSlot); err != nil {
		return err
	}
	if oldSlot == newSlot {
		return nil
	}
	if f.index(newSlot) >= 0 {
		return &DuplicateSlotError{Slot: newSlot}
	}

	f.entries[i].Slot = newSlot
	f.transition(Event{Kind: EventEdited, Index: i, Slot: newSlot}, true)
	return nil
}
