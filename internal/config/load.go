package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the search locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./asstex.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "asstex")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "asstex")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "asstex")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "asstex")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Relative texture roots listed in the file are resolved against the file's
// directory, so a project config works from any working directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	defaultRoots := cfg.Textures.Roots
	cfg.Textures.Roots = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg.Textures.Roots = defaultRoots
		return err
	}
	if cfg.Textures.Roots == nil {
		cfg.Textures.Roots = defaultRoots
		return nil
	}

	base := filepath.Dir(path)
	for i, root := range cfg.Textures.Roots {
		if root != "" && !filepath.IsAbs(root) {
			cfg.Textures.Roots[i] = filepath.Join(base, root)
		}
	}
	return nil
}
