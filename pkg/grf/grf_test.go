package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/asstex/pkg/encoding"
)

type testEntry struct {
	name  []byte
	flags uint8
}

// createTestGRF builds a minimal version 0x200 archive holding only a file table.
func createTestGRF(t *testing.T, entries []testEntry) []byte {
	t.Helper()

	var table bytes.Buffer
	for _, e := range entries {
		table.Write(e.name)
		table.WriteByte(0)
		info := make([]byte, entryInfoSize)
		info[12] = e.flags
		table.Write(info)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(table.Bytes()); err != nil {
		t.Fatalf("compressing table: %v", err)
	}
	zw.Close()

	const seed = 0
	header := Header{
		TableOffset: 0,
		Seed:        seed,
		FileCount:   uint32(len(entries)) + seed + 7,
		Version:     version200,
	}
	copy(header.Magic[:], grfMagic)

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, header)
	binary.Write(buf, binary.LittleEndian, uint32(compressed.Len()))
	binary.Write(buf, binary.LittleEndian, uint32(table.Len()))
	buf.Write(compressed.Bytes())
	return buf.Bytes()
}

func TestReadIndex(t *testing.T) {
	krName, err := encoding.EUCKR.Encode(`data\texture\유저인터페이스\bg.bmp`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	data := createTestGRF(t, []testEntry{
		{name: []byte(`data\texture\Prontera\Wall01.BMP`), flags: flagFile},
		{name: krName, flags: flagFile},
		{name: []byte(`data\texture\somedir`), flags: 0},
	})

	idx, err := ReadIndex(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadIndex failed: %v", err)
	}

	if idx.Len() != 2 {
		t.Errorf("expected 2 files, got %d", idx.Len())
	}
	if idx.Version != version200 {
		t.Errorf("expected version 0x200, got 0x%x", idx.Version)
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"data/texture/prontera/wall01.bmp", true},
		{`DATA\TEXTURE\PRONTERA\WALL01.BMP`, true},
		{"texture/prontera/wall01.bmp", true},
		{"texture/유저인터페이스/bg.bmp", true},
		{"data/texture/somedir", false},
		{"texture/missing.bmp", false},
	}
	for _, tc := range tests {
		if got := idx.Contains(tc.path); got != tc.expected {
			t.Errorf("Contains(%q) = %v, expected %v", tc.path, got, tc.expected)
		}
	}

	names := idx.Names()
	if len(names) != 2 || names[0] != "data/texture/prontera/wall01.bmp" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestReadIndex_InvalidMagic(t *testing.T) {
	data := createTestGRF(t, nil)
	copy(data, "Master of Mogic")

	_, err := ReadIndex(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestReadIndex_UnsupportedVersion(t *testing.T) {
	data := createTestGRF(t, nil)
	binary.LittleEndian.PutUint32(data[42:], 0x103)

	_, err := ReadIndex(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadIndex_Truncated(t *testing.T) {
	data := createTestGRF(t, []testEntry{{name: []byte("data/a.bmp"), flags: flagFile}})

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", data[:20]},
		{"missing table", data[:headerSize+4]},
		{"cut table", data[:len(data)-3]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadIndex(bytes.NewReader(tc.data)); err == nil {
				t.Error("expected error for truncated data")
			}
		})
	}
}

func TestReadIndex_OversizedHeaderValues(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		value  uint32
	}{
		{"table offset past end", 30, 0xFFFFFF00},
		{"file count", 38, 0xFFFFFFFF},
		{"compressed size", headerSize, 0xFFFFFFFF},
		{"uncompressed size", headerSize + 4, 0xFFFFFFFF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := createTestGRF(t, []testEntry{{name: []byte("data/a.bmp"), flags: flagFile}})
			binary.LittleEndian.PutUint32(data[tc.offset:], tc.value)

			_, err := ReadIndex(bytes.NewReader(data))
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textures.grf")
	data := createTestGRF(t, []testEntry{{name: []byte(`data\texture\a.bmp`), flags: flagFile}})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if idx.Path != path {
		t.Errorf("expected path %s, got %s", path, idx.Path)
	}
	if !idx.Contains("texture/a.bmp") {
		t.Error("expected texture/a.bmp to be found")
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error opening missing archive")
	}
}
