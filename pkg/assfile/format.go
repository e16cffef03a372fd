package assfile

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Faultbox/asstex/pkg/encoding"
)

// Delimiter separates the slot from the texture path within a record.
const Delimiter = '='

// DefaultMaxPathLength caps texture path length in bytes.
const DefaultMaxPathLength = 1024

// Entry associates a texture slot with a texture path.
// An empty Path means the slot is unassigned.
type Entry struct {
	Slot string `yaml:"slot"`
	Path string `yaml:"path"`
}

// String returns the entry as a serialized record without the line terminator.
func (e Entry) String() string {
	return e.Slot + string(Delimiter) + e.Path
}

// ValidateSlot checks that slot can be written as the key of a record.
func ValidateSlot(slot string) error {
	if slot == "" {
		return &ValidationError{Value: slot, Err: fmt.Errorf("%w: empty", ErrInvalidSlot)}
	}
	for _, r := range slot {
		if r == Delimiter || unicode.IsSpace(r) || unicode.IsControl(r) {
			return &ValidationError{Value: slot, Err: fmt.Errorf("%w: illegal character %q", ErrInvalidSlot, r)}
		}
	}
	return nil
}

// ValidatePath checks a texture path. maxLen <= 0 disables the length check.
func ValidatePath(path string, maxLen int) error {
	if path == "" {
		return nil
	}
	if strings.ContainsAny(path, "\n\r\x00") {
		return &ValidationError{Value: path, Err: ErrRecordSep}
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return &ValidationError{Value: path, Err: fmt.Errorf("%w: control character %q", ErrInvalidPath, r)}
		}
	}
	if strings.TrimSpace(path) != path {
		return &ValidationError{Value: path, Err: fmt.Errorf("%w: surrounding whitespace", ErrInvalidPath)}
	}
	if maxLen > 0 && len(path) > maxLen {
		return &ValidationError{Value: path, Err: fmt.Errorf("%w: %d > %d bytes", ErrPathTooLong, len(path), maxLen)}
	}
	return nil
}

// Parse parses UTF-8 ASS data using the default path length limit.
func Parse(data []byte) ([]Entry, error) {
	text, err := encoding.UTF8.Decode(data)
	if err != nil {
		return nil, &ParseError{Line: firstInvalidLine(data), Reason: err.Error(), Err: err}
	}
	return parseText(text, DefaultMaxPathLength)
}

// parseText parses decoded records.
//
// Record rules: one record per line, "slot=path", fields trimmed, blank lines
// skipped, a line without a delimiter is a slot with an empty path.
func parseText(text string, maxPathLen int) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]int)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		slot, path := line, ""
		if idx := strings.IndexRune(line, Delimiter); idx >= 0 {
			slot, path = line[:idx], line[idx+1:]
		}
		slot = strings.TrimSpace(slot)
		path = strings.TrimSpace(path)

		if err := ValidateSlot(slot); err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error(), Err: err}
		}
		if err := ValidatePath(path, maxPathLen); err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error(), Err: err}
		}
		if _, dup := seen[slot]; dup {
			return nil, &DuplicateSlotError{Slot: slot, Line: lineNo}
		}
		seen[slot] = lineNo

		entries = append(entries, Entry{Slot: slot, Path: path})
	}

	return entries, nil
}

// Serialize renders entries in canonical form: "slot=path\n" per entry, in order.
func Serialize(entries []Entry) []byte {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Slot)
		sb.WriteRune(Delimiter)
		sb.WriteString(e.Path)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// firstInvalidLine returns the 1-based line holding the first invalid UTF-8 sequence.
func firstInvalidLine(data []byte) int {
	line := 1
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return line
		}
		if data[i] == '\n' {
			line++
		}
		i += size
	}
	return line
}
