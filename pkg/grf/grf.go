// Package grf reads the file table of Ragnarok Online GRF archives, so
// texture paths can be checked against an archive without extracting it.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/asstex/pkg/encoding"
)

const (
	grfMagic      = "Master of Magic"
	headerSize    = 46
	entryInfoSize = 17
	version200    = 0x200

	flagFile = 0x01
)

// GRF format errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic: expected 'Master of Magic'")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrTruncated          = errors.New("truncated GRF data")
)

// Header is the fixed-size archive header.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Index is the set of file names stored in an archive.
type Index struct {
	Path    string
	Version uint32
	names   map[string]struct{}
}

// Open reads the file table of the archive at path. The archive is closed
// before Open returns.
func Open(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	idx, err := ReadIndex(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx.Path = path
	return idx, nil
}

// ReadIndex reads the header and file table from r. Sizes and counts in the
// header are checked against the archive size before anything is allocated.
func ReadIndex(r io.ReadSeeker) (*Index, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncated)
	}
	if string(header.Magic[:]) != grfMagic {
		return nil, ErrInvalidMagic
	}
	if header.Version != version200 {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, header.Version)
	}

	table, err := readTable(r, int64(header.TableOffset)+headerSize, size)
	if err != nil {
		return nil, err
	}

	// Stored count is offset by the seed and a constant 7.
	count := int64(header.FileCount) - int64(header.Seed) - 7
	if count < 0 {
		return nil, fmt.Errorf("%w: negative file count", ErrTruncated)
	}
	// Each entry takes at least a NUL terminator plus its info block.
	if count > int64(len(table)/(entryInfoSize+1)) {
		return nil, fmt.Errorf("%w: %d entries in a %d byte table", ErrTruncated, count, len(table))
	}

	idx := &Index{Version: header.Version, names: make(map[string]struct{}, count)}
	offset := 0
	for i := int64(0); i < count; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 {
			return nil, fmt.Errorf("%w: entry %d name", ErrTruncated, i)
		}
		rawName := table[offset : offset+nameEnd]
		offset += nameEnd + 1

		if offset+entryInfoSize > len(table) {
			return nil, fmt.Errorf("%w: entry %d info", ErrTruncated, i)
		}
		flags := table[offset+12]
		offset += entryInfoSize

		if flags&flagFile == 0 {
			continue
		}
		idx.names[normalizeName(decodeName(rawName))] = struct{}{}
	}

	return idx, nil
}

// maxTableRatio bounds the inflated table size relative to its compressed size.
const maxTableRatio = 1032

// readTable reads and inflates the compressed file table at offset. size is
// the archive length.
func readTable(r io.ReadSeeker, offset, size int64) ([]byte, error) {
	if offset > size {
		return nil, fmt.Errorf("%w: table offset %d beyond archive end %d", ErrTruncated, offset, size)
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file table: %w", err)
	}

	var sizes struct {
		Compressed   uint32
		Uncompressed uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &sizes); err != nil {
		return nil, fmt.Errorf("%w: reading table sizes", ErrTruncated)
	}

	if remaining := size - offset - 8; int64(sizes.Compressed) > remaining {
		return nil, fmt.Errorf("%w: table of %d bytes, %d left in archive", ErrTruncated, sizes.Compressed, remaining)
	}
	if int64(sizes.Uncompressed) > int64(sizes.Compressed)*maxTableRatio {
		return nil, fmt.Errorf("%w: implausible table size %d from %d compressed bytes", ErrTruncated, sizes.Uncompressed, sizes.Compressed)
	}

	compressed := make([]byte, sizes.Compressed)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: reading file table", ErrTruncated)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflating file table: %w", err)
	}
	defer zr.Close()

	table, err := io.ReadAll(io.LimitReader(zr, int64(sizes.Uncompressed)))
	if err != nil {
		return nil, fmt.Errorf("inflating file table: %w", err)
	}
	if len(table) != int(sizes.Uncompressed) {
		return nil, fmt.Errorf("%w: inflating file table", ErrTruncated)
	}
	return table, nil
}

// decodeName converts an EUC-KR archive name to UTF-8, keeping the raw bytes
// if they are not valid EUC-KR.
func decodeName(raw []byte) string {
	if s, err := encoding.EUCKR.Decode(raw); err == nil {
		return s
	}
	return string(raw)
}

// normalizeName makes lookups case-insensitive and separator-agnostic.
func normalizeName(name string) string {
	return strings.ToLower(encoding.NormalizeTexturePath(name))
}

// Len returns the number of files in the archive.
func (i *Index) Len() int { return len(i.names) }

// Contains reports whether the archive holds texturePath. Client texture
// paths usually omit the leading "data/", so that prefix is also tried.
func (i *Index) Contains(texturePath string) bool {
	name := strings.TrimPrefix(normalizeName(texturePath), "/")
	if _, ok := i.names[name]; ok {
		return true
	}
	_, ok := i.names["data/"+name]
	return ok
}

// Names returns all file names, sorted.
func (i *Index) Names() []string {
	out := make([]string, 0, len(i.names))
	for name := range i.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
