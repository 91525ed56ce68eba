// SPDX-License-Identifier: MPL-2.0

// Package payload assembles the archive entries that go into a standalone
// executable: the bundled runtime binary, the project's library directories,
// and finally the user's entry script plus the launcher flag file.
package payload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"lunu-cli/internal/config"
	"lunu-cli/pkg/sfx"
)

// ErrRuntimeNotFound is returned when the manifest's runtime binary does not
// exist in the project.
var ErrRuntimeNotFound = errors.New("runtime binary not found")

// CollectRuntime gathers the script-independent part of the payload from the
// project tree: the runtime binary (stored at the contract path with its
// executable bit), every configured payload directory, and the root-level
// init.luau / .luaurc when present. Entry order is deterministic: runtime
// first, then directories in manifest order with lexical walks inside each.
//
// This is the portion worth caching between builds; the per-build entries
// are added by Finalize.
func CollectRuntime(root string, cfg *config.Config) ([]sfx.Entry, error) {
	runtimeSrc, err := resolveRuntime(root, cfg.Runtime.Path)
	if err != nil {
		return nil, err
	}
	runtimeData, err := os.ReadFile(runtimeSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to read runtime binary %q: %w", runtimeSrc, err)
	}

	entries := []sfx.Entry{{Path: sfx.RuntimePath(), Data: runtimeData, Mode: 0o755}}

	for _, dir := range cfg.Payload.Dirs {
		dirEntries, dirErr := collectDir(root, dir)
		if dirErr != nil {
			return nil, dirErr
		}
		entries = append(entries, dirEntries...)
	}

	for _, name := range []string{"init.luau", ".luaurc"} {
		data, readErr := os.ReadFile(filepath.Join(root, name))
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %q: %w", name, readErr)
		}
		entries = append(entries, sfx.Entry{Path: name, Data: data})
	}

	return entries, nil
}

// Finalize appends the per-build entries to a runtime payload: the entry
// script at the contract path and the hold-console flag file.
func Finalize(runtimeEntries []sfx.Entry, scriptData []byte, holdConsole bool) []sfx.Entry {
	flag := "1"
	if !holdConsole {
		flag = "0"
	}
	entries := make([]sfx.Entry, 0, len(runtimeEntries)+2)
	entries = append(entries, runtimeEntries...)
	entries = append(entries,
		sfx.Entry{Path: sfx.EntryScriptPath, Data: scriptData},
		sfx.Entry{Path: sfx.HoldConsoleFile, Data: []byte(flag)},
	)
	return entries
}

// resolveRuntime finds the runtime binary, trying the manifest path as
// given and then with the platform executable suffix. Relative paths are
// resolved against the project root; absolute paths (a --runtime override)
// are used as-is.
func resolveRuntime(root, runtimePath string) (string, error) {
	candidates := []string{runtimePath}
	if suffix := sfx.ExeSuffix(); suffix != "" && filepath.Ext(runtimePath) == "" {
		candidates = append(candidates, runtimePath+suffix)
	}
	for _, c := range candidates {
		full := c
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, c)
		}
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return full, nil
		}
	}
	return "", fmt.Errorf("runtime binary %q not found under %q: %w", runtimePath, root, ErrRuntimeNotFound)
}

// collectDir walks one payload directory and returns its files as entries
// keyed by their project-root-relative slash paths. A missing directory
// yields no entries and no error.
func collectDir(root, dir string) ([]sfx.Entry, error) {
	base := filepath.Join(root, dir)
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		return nil, nil
	}

	var entries []sfx.Entry
	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(base, p)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		entries = append(entries, sfx.Entry{
			Path: path.Join(filepath.ToSlash(dir), filepath.ToSlash(rel)),
			Data: data,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to collect %q: %w", dir, walkErr)
	}
	return entries, nil
}
