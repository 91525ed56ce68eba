// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Assemble produces a complete self-extracting image: the launcher template,
// the zip archive built from entries, and the trailer record pointing at the
// archive. It is a pure function; writing the result to disk (and marking it
// executable) is the caller's job.
func Assemble(template []byte, entries []Entry) ([]byte, error) {
	archive, err := BuildArchive(entries)
	if err != nil {
		return nil, err
	}

	t := trailer{
		ArchiveOffset: uint64(len(template)),
		ArchiveLength: uint64(len(archive)),
	}

	image := make([]byte, 0, len(template)+len(archive)+trailerSize)
	image = append(image, template...)
	image = append(image, archive...)
	image = append(image, encodeTrailer(t)...)
	return image, nil
}

// ExeSuffix is the executable filename suffix for the build platform.
func ExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// DeriveOutputName maps an input script path to the output executable name:
// the script's base name with its final extension replaced by the platform
// suffix (appended whole if there is no extension). The result is always a
// bare name relative to the current working directory, regardless of where
// the input lives.
func DeriveOutputName(scriptPath string) string {
	base := filepath.Base(scriptPath)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ExeSuffix()
}
