// Package encoding provides text encoding utilities for texture association files.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Supported codec names.
const (
	NameUTF8  = "utf-8"
	NameEUCKR = "euc-kr"
)

// ErrInvalidUTF8 is returned when UTF-8 input contains invalid byte sequences.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ErrUnknownCodec is returned by Lookup for unsupported encoding names.
var ErrUnknownCodec = errors.New("unknown encoding")

// Codec converts document bytes to and from UTF-8 text.
type Codec interface {
	Name() string
	Decode(data []byte) (string, error)
	Encode(s string) ([]byte, error)
}

// UTF8 is the default codec. Decode rejects invalid byte sequences.
var UTF8 Codec = utf8Codec{}

// EUCKR decodes legacy Korean client files, whose texture names are EUC-KR.
var EUCKR Codec = euckrCodec{}

type utf8Codec struct{}

func (utf8Codec) Name() string { return NameUTF8 }

func (utf8Codec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

func (utf8Codec) Encode(s string) ([]byte, error) {
	return []byte(s), nil
}

type euckrCodec struct{}

func (euckrCodec) Name() string { return NameEUCKR }

func (euckrCodec) Decode(data []byte) (string, error) {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding EUC-KR: %w", err)
	}
	return string(result), nil
}

func (euckrCodec) Encode(s string) ([]byte, error) {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding EUC-KR: %w", err)
	}
	return result, nil
}

// Lookup returns the codec registered under name (case-insensitive).
// An empty name selects UTF-8.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameUTF8, "utf8":
		return UTF8, nil
	case NameEUCKR, "euckr", "cp949":
		return EUCKR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// NormalizeTexturePath converts backslashes to forward slashes so client-style
// paths (data\texture\foo.bmp) resolve on any OS.
func NormalizeTexturePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
