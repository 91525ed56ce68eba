// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	defaults := DefaultConfig()
	if cfg.Runtime.Path != defaults.Runtime.Path {
		t.Errorf("Runtime.Path = %q, want default %q", cfg.Runtime.Path, defaults.Runtime.Path)
	}
	if len(cfg.Payload.Dirs) != len(defaults.Payload.Dirs) {
		t.Errorf("Payload.Dirs = %v, want defaults %v", cfg.Payload.Dirs, defaults.Payload.Dirs)
	}
	if !cfg.Stub.HoldConsole {
		t.Error("Stub.HoldConsole = false, want default true")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[runtime]
path = "vendor/lune"

[payload]
dirs = ["lib"]

[stub]
hold_console = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Runtime.Path != "vendor/lune" {
		t.Errorf("Runtime.Path = %q, want vendor/lune", cfg.Runtime.Path)
	}
	if len(cfg.Payload.Dirs) != 1 || cfg.Payload.Dirs[0] != "lib" {
		t.Errorf("Payload.Dirs = %v, want [lib]", cfg.Payload.Dirs)
	}
	if cfg.Stub.HoldConsole {
		t.Error("Stub.HoldConsole = true, want false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), ManifestName)); err == nil {
		t.Error("Load() of a missing manifest succeeded, want error")
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "")
	nested := filepath.Join(root, "src", "deep", "deeper")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("creating nested dirs: %v", err)
	}

	got, cfg, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	// Resolve symlinks for the comparison; macOS temp dirs live behind one.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}
	if cfg == nil {
		t.Fatal("FindProjectRoot() returned nil config")
	}
}

func TestFindProjectRoot_NotFound(t *testing.T) {
	_, _, err := FindProjectRoot(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("FindProjectRoot() error = %v, want ErrManifestNotFound", err)
	}
}
