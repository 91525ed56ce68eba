// SPDX-License-Identifier: MPL-2.0

package payload

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"lunu-cli/internal/config"
	"lunu-cli/pkg/sfx"

	"github.com/klauspost/compress/flate"
	"github.com/pelletier/go-toml/v2"
)

// Cache filenames under <user cache dir>/lunu-builder. The zip holds the
// runtime payload entries; the meta file records the source digest they were
// built from.
const (
	cacheDirName  = "lunu-builder"
	cacheZipName  = "runtime_payload.zip"
	cacheMetaName = "runtime_payload.toml"
)

// cacheMeta is the sidecar that validates a cached runtime payload.
type cacheMeta struct {
	SourceDigest string    `toml:"source_digest"`
	CreatedAt    time.Time `toml:"created_at"`
}

// CacheDir returns the builder's cache directory, creating it if needed.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	dir := filepath.Join(base, cacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir %q: %w", dir, err)
	}
	return dir, nil
}

// SourceDigest fingerprints the files that feed CollectRuntime: the runtime
// binary, every file under the payload directories, and the root-level
// extras. The digest covers each file's path, size, and mtime, so touching
// any source invalidates the cache without hashing file contents.
func SourceDigest(root string, cfg *config.Config) (string, error) {
	h := sha256.New()

	add := func(p string, info fs.FileInfo) {
		fmt.Fprintf(h, "%s|%d|%d\n", filepath.ToSlash(p), info.Size(), info.ModTime().UnixNano())
	}

	if src, err := resolveRuntime(root, cfg.Runtime.Path); err == nil {
		if info, statErr := os.Stat(src); statErr == nil {
			add(src, info)
		}
	}

	roots := make([]string, 0, len(cfg.Payload.Dirs)+2)
	for _, dir := range cfg.Payload.Dirs {
		roots = append(roots, filepath.Join(root, dir))
	}
	roots = append(roots, filepath.Join(root, "init.luau"), filepath.Join(root, ".luaurc"))

	for _, r := range roots {
		walkErr := filepath.WalkDir(r, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Missing payload dirs are legal; they just contribute
				// nothing to the digest.
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return infoErr
			}
			add(p, info)
			return nil
		})
		if walkErr != nil {
			return "", fmt.Errorf("failed to fingerprint %q: %w", r, walkErr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadCachedRuntime returns the cached runtime payload entries when the
// cache exists and was built from sources matching digest. The second return
// is false on any miss; cache corruption is treated as a miss, never an
// error.
func LoadCachedRuntime(cacheDir, digest string) ([]sfx.Entry, bool) {
	metaData, err := os.ReadFile(filepath.Join(cacheDir, cacheMetaName))
	if err != nil {
		return nil, false
	}
	var meta cacheMeta
	if err := toml.Unmarshal(metaData, &meta); err != nil || meta.SourceDigest != digest {
		return nil, false
	}

	zipData, err := os.ReadFile(filepath.Join(cacheDir, cacheZipName))
	if err != nil {
		return nil, false
	}
	entries, err := entriesFromZip(zipData)
	if err != nil {
		return nil, false
	}
	return entries, true
}

// StoreCachedRuntime persists the runtime payload entries for reuse by later
// builds. Failures are returned so the caller can warn, but a failed store
// never fails the build.
func StoreCachedRuntime(cacheDir, digest string, entries []sfx.Entry) error {
	zipData, err := sfx.BuildArchive(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize cache payload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, cacheZipName), zipData, 0o644); err != nil {
		return fmt.Errorf("failed to write cache payload: %w", err)
	}

	metaData, err := toml.Marshal(cacheMeta{SourceDigest: digest, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode cache meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, cacheMetaName), metaData, 0o644); err != nil {
		return fmt.Errorf("failed to write cache meta: %w", err)
	}
	return nil
}

// entriesFromZip reads a cached payload zip back into ordered entries,
// preserving each entry's permission bits.
func entriesFromZip(zipData []byte) ([]sfx.Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, err
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	entries := make([]sfx.Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return nil, openErr
		}
		data, readErr := io.ReadAll(rc)
		closeErr := rc.Close()
		if readErr != nil {
			return nil, readErr
		}
		if closeErr != nil {
			return nil, closeErr
		}
		entries = append(entries, sfx.Entry{Path: f.Name, Data: data, Mode: f.Mode().Perm()})
	}
	return entries, nil
}
