// SPDX-License-Identifier: MPL-2.0

// Package config loads the lunu project manifest (lunu.toml): where the
// bundled runtime binary lives and which project directories travel inside
// the payload.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ManifestName is the project manifest filename the builder looks for.
const ManifestName = "lunu.toml"

// ErrManifestNotFound is returned when no lunu.toml exists in the searched
// directory or any of its ancestors.
var ErrManifestNotFound = errors.New("project manifest not found")

// Config is the decoded project manifest.
type Config struct {
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Payload PayloadConfig `mapstructure:"payload"`
	Stub    StubConfig    `mapstructure:"stub"`
}

// RuntimeConfig locates the runtime binary bundled into every build.
type RuntimeConfig struct {
	// Path to the runtime binary, relative to the project root.
	Path string `mapstructure:"path"`
}

// PayloadConfig lists the project directories copied into the payload.
type PayloadConfig struct {
	// Dirs are project-root-relative directories whose contents are
	// archived under the same relative paths. Missing directories are
	// skipped; a project does not need all of them.
	Dirs []string `mapstructure:"dirs"`
}

// StubConfig carries launcher behavior baked in at build time.
type StubConfig struct {
	// HoldConsole keeps the launched console window open until Enter is
	// pressed after the script finishes.
	HoldConsole bool `mapstructure:"hold_console"`
}

// DefaultConfig returns the manifest values used when a key is absent.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{Path: "bin/lune"},
		Payload: PayloadConfig{Dirs: []string{"src/bridge", "src/libs", "config", "modules"}},
		Stub:    StubConfig{HoldConsole: true},
	}
}

// Load reads the manifest at path and fills defaults for absent keys.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("runtime.path", defaults.Runtime.Path)
	v.SetDefault("payload.dirs", defaults.Payload.Dirs)
	v.SetDefault("stub.hold_console", defaults.Stub.HoldConsole)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %q: %w", path, err)
	}
	return cfg, nil
}

// FindProjectRoot walks upward from startDir looking for the directory that
// contains the manifest. It returns the root directory and the loaded
// manifest, or ErrManifestNotFound (wrapped) when the walk reaches the
// filesystem root without a hit.
func FindProjectRoot(startDir string) (string, *Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve %q: %w", startDir, err)
	}

	for {
		manifest := filepath.Join(dir, ManifestName)
		if info, statErr := os.Stat(manifest); statErr == nil && !info.IsDir() {
			cfg, loadErr := Load(manifest)
			if loadErr != nil {
				return "", nil, loadErr
			}
			return dir, cfg, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, fmt.Errorf("no %s above %q: %w", ManifestName, startDir, ErrManifestNotFound)
		}
		dir = parent
	}
}
