// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// Entry is a single file carried inside an embedded archive. Path is
// slash-separated and relative to the extraction root. A zero Mode means
// 0644; the bundled runtime binary is stored with its executable bit set.
type Entry struct {
	Path string
	Data []byte
	Mode fs.FileMode
}

// entryTimestamp is the fixed modification time stamped on every archive
// entry so that identical input always produces byte-identical archives.
var entryTimestamp = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// registerFlate swaps archive/zip's default Deflate implementation for the
// klauspost one on a writer.
func registerFlate(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
}

// validEntryPath reports whether p is a clean, slash-separated relative path
// with no parent-directory segments. The same check guards both building and
// extraction, so a hostile archive cannot place files outside the
// extraction root.
func validEntryPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return false
	}
	if path.Clean(p) != p {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return false
		}
	}
	return true
}

// BuildArchive serializes entries, in order, into a zip archive. The output
// is deterministic for identical input: entry order is preserved, timestamps
// are fixed, and compression settings never vary. Duplicate paths are
// rejected with a DuplicateEntryError, malformed paths with an
// UnsafePathError.
func BuildArchive(entries []Entry) ([]byte, error) {
	seen := make(map[string]bool, len(entries))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	registerFlate(zw)

	for _, e := range entries {
		if !validEntryPath(e.Path) {
			return nil, &UnsafePathError{Path: e.Path}
		}
		if seen[e.Path] {
			return nil, &DuplicateEntryError{Path: e.Path}
		}
		seen[e.Path] = true

		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &zip.FileHeader{
			Name:     e.Path,
			Method:   zip.Deflate,
			Modified: entryTimestamp,
		}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %q: %w", e.Path, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %q: %w", e.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract unpacks the archive region [offset, offset+length) of image into
// destDir, creating intermediate directories as needed. Existing files at
// the destination are overwritten. It returns the slash-separated relative
// paths of every file written, in archive order.
//
// Any entry whose normalized path would resolve outside destDir fails with
// an UnsafePathError before anything is written for it; IO failures fail
// with an ExtractionError. In both cases the destination may already be
// partially populated and the caller owns its cleanup.
func Extract(image []byte, offset, length int64, destDir string) ([]string, error) {
	if offset < 0 || length < 0 || offset+length > int64(len(image)) {
		return nil, fmt.Errorf("archive region [%d, %d) out of bounds: %w", offset, offset+length, ErrArchiveNotFound)
	}
	region := image[offset : offset+length]

	zr, err := zip.NewReader(bytes.NewReader(region), length)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded archive: %w", err)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	var extracted []string
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, "/")
		if !validEntryPath(name) {
			return extracted, &UnsafePathError{Path: f.Name}
		}

		destPath := filepath.Join(absDest, filepath.FromSlash(name))
		// Belt and braces: validEntryPath already rejects traversal, but the
		// resolved path is checked against the root as well.
		rel, relErr := filepath.Rel(absDest, destPath)
		if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return extracted, &UnsafePathError{Path: f.Name}
		}

		if f.FileInfo().IsDir() {
			if mkErr := os.MkdirAll(destPath, 0o755); mkErr != nil {
				return extracted, &ExtractionError{Path: name, Err: mkErr}
			}
			continue
		}

		if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
			return extracted, &ExtractionError{Path: name, Err: mkErr}
		}
		if wErr := writeZipFile(f, destPath); wErr != nil {
			return extracted, &ExtractionError{Path: name, Err: wErr}
		}
		extracted = append(extracted, name)
	}
	return extracted, nil
}

// writeZipFile copies one zip entry to destPath, preserving the entry's
// permission bits (the bundled runtime binary must stay executable).
func writeZipFile(f *zip.File, destPath string) (err error) {
	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, rc)
	return err
}
