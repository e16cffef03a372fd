package assfile

import (
	"errors"
	"fmt"
)

// Document errors.
var (
	ErrNoPath         = errors.New("document has no path")
	ErrSlotNotFound   = errors.New("slot not found")
	ErrDuplicateSlot  = errors.New("duplicate slot")
	ErrInvalidSlot    = errors.New("invalid slot name")
	ErrInvalidPath    = errors.New("invalid texture path")
	ErrPathTooLong    = errors.New("texture path too long")
	ErrRecordSep      = errors.New("texture path contains a record separator")
	ErrMalformedInput = errors.New("malformed ASS data")
)

// ParseError reports a malformed record. Line is 1-based; zero means the
// failure is not tied to a single line (e.g. the file could not be decoded).
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedInput, e.Err}
	}
	return []error{ErrMalformedInput}
}

// DuplicateSlotError reports a slot name that occurs more than once.
// Line is zero when the duplicate came from an edit rather than a parse.
type DuplicateSlotError struct {
	Slot string
	Line int
}

func (e *DuplicateSlotError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: duplicate slot %q", e.Line, e.Slot)
	}
	return fmt.Sprintf("duplicate slot %q", e.Slot)
}

func (e *DuplicateSlotError) Unwrap() error { return ErrDuplicateSlot }

// SlotNotFoundError reports an edit addressed to a slot the document lacks.
type SlotNotFoundError struct {
	Slot string
}

func (e *SlotNotFoundError) Error() string {
	return fmt.Sprintf("slot %q not found", e.Slot)
}

func (e *SlotNotFoundError) Unwrap() error { return ErrSlotNotFound }

// ValidationError reports a rejected slot or path value.
type ValidationError struct {
	Slot  string
	Value string
	Err   error // ErrInvalidSlot, ErrInvalidPath, ErrPathTooLong or ErrRecordSep
}

func (e *ValidationError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("slot %q: %v: %q", e.Slot, e.Err, e.Value)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IOError reports a failure reading or writing the document file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
