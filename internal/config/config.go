// Package config handles editor configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Faultbox/asstex/pkg/encoding"
)

// Config holds all editor settings.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Textures TexturesConfig `yaml:"textures"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DocumentConfig controls how ASS files are read and written.
type DocumentConfig struct {
	Encoding      string `yaml:"encoding"`        // utf-8 or euc-kr
	MaxPathLength int    `yaml:"max_path_length"` // 0 disables the limit
	FileMode      string `yaml:"file_mode"`       // octal, for newly created files
	CreateDirs    bool   `yaml:"create_dirs"`
}

// TexturesConfig holds the directories texture paths are resolved against.
type TexturesConfig struct {
	Roots []string `yaml:"roots"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{
			Encoding:      encoding.NameUTF8,
			MaxPathLength: 1024,
			FileMode:      "0644",
			CreateDirs:    false,
		},
		Textures: TexturesConfig{
			Roots: []string{"."},
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Codec returns the configured document encoding.
func (d DocumentConfig) Codec() (encoding.Codec, error) {
	return encoding.Lookup(d.Encoding)
}

// Mode parses FileMode as an octal permission value.
func (d DocumentConfig) Mode() (os.FileMode, error) {
	if d.FileMode == "" {
		return 0644, nil
	}
	v, err := strconv.ParseUint(d.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file_mode %q: %w", d.FileMode, err)
	}
	if v > 0777 {
		return 0, fmt.Errorf("invalid file_mode %q: not a permission value", d.FileMode)
	}
	return os.FileMode(v), nil
}

// Validate checks values that would otherwise fail later at first use.
func (c *Config) Validate() error {
	if _, err := c.Document.Codec(); err != nil {
		return fmt.Errorf("document.encoding: %w", err)
	}
	if _, err := c.Document.Mode(); err != nil {
		return fmt.Errorf("document.file_mode: %w", err)
	}
	if c.Document.MaxPathLength < 0 {
		return fmt.Errorf("document.max_path_length: must not be negative, got %d", c.Document.MaxPathLength)
	}
	return nil
}
