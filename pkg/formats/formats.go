// Package formats reads the texture lists embedded in Ragnarok Online model
// (RSM) and ground (GND) files.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/asstex/pkg/encoding"
)

// Texture list errors.
var (
	ErrUnknownFormat      = errors.New("unknown file format")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncatedData      = errors.New("truncated data")
)

// Version is a Major.Minor file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v Version) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// TextureList is the ordered texture table of a model or ground file.
type TextureList struct {
	Format   string // "RSM" or "GND"
	Version  Version
	Textures []string
}

const rsmTextureNameLen = 40

// maxTextures bounds the texture count read from a header.
const maxTextures = 4096

// ReadRSMTextures reads the texture table of an RSM model, versions 1.x to 2.1.
// Later versions store textures per node and are rejected.
func ReadRSMTextures(data []byte) (*TextureList, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: RSM header", ErrTruncatedData)
	}
	if string(data[0:4]) != "GRSM" {
		return nil, fmt.Errorf("%w: expected 'GRSM'", ErrUnknownFormat)
	}

	// Version is stored as [major, minor]
	version := Version{Major: data[4], Minor: data[5]}
	if version.Major < 1 || version.AtLeast(2, 2) {
		return nil, fmt.Errorf("%w: RSM %s", ErrUnsupportedVersion, version)
	}

	r := bytes.NewReader(data[6:])

	// Animation length and shading type, int32 each.
	skip := 8
	if version.AtLeast(1, 4) {
		skip++ // alpha
	}
	skip += 16 // reserved
	if _, err := r.Seek(int64(skip), io.SeekCurrent); err != nil || r.Len() < 4 {
		return nil, fmt.Errorf("%w: RSM header", ErrTruncatedData)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading texture count", ErrTruncatedData)
	}
	if count < 0 || count > maxTextures {
		return nil, fmt.Errorf("invalid RSM texture count %d", count)
	}

	textures, err := readNames(r, int(count), rsmTextureNameLen)
	if err != nil {
		return nil, err
	}
	return &TextureList{Format: "RSM", Version: version, Textures: textures}, nil
}

// ReadGNDTextures reads the texture table of a GND ground file, versions 1.5 to 1.9.
func ReadGNDTextures(data []byte) (*TextureList, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: GND header", ErrTruncatedData)
	}
	if string(data[0:4]) != "GRGN" {
		return nil, fmt.Errorf("%w: expected 'GRGN'", ErrUnknownFormat)
	}

	version := Version{Major: data[4], Minor: data[5]}
	if version.Major != 1 || version.Minor < 5 || version.Minor > 9 {
		return nil, fmt.Errorf("%w: GND %s", ErrUnsupportedVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var header struct {
		Width, Height uint32
		Zoom          float32
		TextureCount  uint32
		NameLen       uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: GND header", ErrTruncatedData)
	}
	if header.TextureCount > maxTextures || header.NameLen == 0 || header.NameLen > 256 {
		return nil, fmt.Errorf("invalid GND texture table: %d names of %d bytes", header.TextureCount, header.NameLen)
	}

	textures, err := readNames(r, int(header.TextureCount), int(header.NameLen))
	if err != nil {
		return nil, err
	}
	return &TextureList{Format: "GND", Version: version, Textures: textures}, nil
}

// ReadTextures detects the format from the magic bytes.
func ReadTextures(data []byte) (*TextureList, error) {
	switch {
	case bytes.HasPrefix(data, []byte("GRSM")):
		return ReadRSMTextures(data)
	case bytes.HasPrefix(data, []byte("GRGN")):
		return ReadGNDTextures(data)
	default:
		return nil, ErrUnknownFormat
	}
}

// ReadTexturesFile reads the texture table of an RSM or GND file on disk.
func ReadTexturesFile(path string) (*TextureList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return ReadTextures(data)
}

// readNames reads count fixed-size, NUL-padded, EUC-KR names.
func readNames(r *bytes.Reader, count, size int) ([]string, error) {
	names := make([]string, count)
	buf := make([]byte, size)
	for i := range names {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: reading texture %d name", ErrTruncatedData, i)
		}
		raw := buf
		if idx := bytes.IndexByte(raw, 0); idx >= 0 {
			raw = raw[:idx]
		}
		name, err := encoding.EUCKR.Decode(raw)
		if err != nil {
			name = string(raw)
		}
		names[i] = strings.TrimSpace(name)
	}
	return names, nil
}
