// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"bytes"
	"fmt"
)

const (
	// scanWindowSize is how much of the image one backward-scan step covers.
	scanWindowSize = 128 * 1024

	// maxScanDistance bounds the backward scan. A trailer further from
	// end-of-file than this cannot belong to an image the assembler
	// produced, since the assembler always writes the trailer as the final
	// bytes; the bound keeps the fallback from walking a multi-gigabyte
	// binary byte by byte.
	maxScanDistance = 4 * 1024 * 1024
)

// zipSignatures are the byte patterns a zip archive may legally start with:
// a local file header, or end-of-central-directory for an empty archive.
var zipSignatures = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
}

// Locate finds the embedded archive inside image and returns its offset and
// length. The fast path reads the trailer record from the fixed position at
// the end of the file; if the signature check there fails, it falls back to
// scanning backward in bounded windows. The rearmost validated occurrence of
// the signature wins, so incidental copies of the magic bytes inside the
// launcher's machine code are ignored.
//
// Returns ErrArchiveNotFound (wrapped) when no valid trailer exists.
func Locate(image []byte) (offset, length int64, err error) {
	if len(image) < trailerSize {
		return 0, 0, fmt.Errorf("image too small (%d bytes): %w", len(image), ErrArchiveNotFound)
	}

	// Fast path: the trailer is the final trailerSize bytes.
	tail := len(image) - trailerSize
	if t, decErr := decodeTrailer(image[tail:]); decErr == nil {
		if off, ln, ok := validateTrailer(image, t, tail); ok {
			return off, ln, nil
		}
	}

	return scanBackward(image)
}

// validateTrailer cross-checks a decoded trailer against the image: the
// archive region must end exactly where the record begins, and the region
// must start with a zip signature. recordPos is the byte offset of the
// record's magic within image.
func validateTrailer(image []byte, t trailer, recordPos int) (offset, length int64, ok bool) {
	off := int64(t.ArchiveOffset)
	ln := int64(t.ArchiveLength)
	if off < 0 || ln < 0 || off+ln != int64(recordPos) {
		return 0, 0, false
	}
	if ln < 4 {
		return 0, 0, false
	}
	head := image[off : off+4]
	for _, sig := range zipSignatures {
		if bytes.Equal(head, sig) {
			return off, ln, true
		}
	}
	return 0, 0, false
}

// scanBackward is the resilience fallback: walk the tail of the image in
// overlapping windows, nearest end-of-file first, and return the rearmost
// position whose magic decodes into a trailer that validates.
func scanBackward(image []byte) (int64, int64, error) {
	magic := []byte(trailerMagic)
	limit := len(image) - maxScanDistance
	if limit < 0 {
		limit = 0
	}

	winEnd := len(image)
	for winEnd > limit {
		winStart := winEnd - scanWindowSize
		if winStart < limit {
			winStart = limit
		}

		// Search this window back to front so the match closest to
		// end-of-file is tried first.
		window := image[winStart:winEnd]
		for at := bytes.LastIndex(window, magic); at >= 0; at = bytes.LastIndex(window[:at], magic) {
			pos := winStart + at
			if pos+trailerSize > len(image) {
				continue
			}
			t, err := decodeTrailer(image[pos : pos+trailerSize])
			if err != nil {
				continue
			}
			if off, ln, ok := validateTrailer(image, t, pos); ok {
				return off, ln, nil
			}
		}

		// Overlap consecutive windows so a record straddling the boundary
		// is still seen whole.
		winEnd = winStart + trailerSize
		if winStart == limit {
			break
		}
	}

	return 0, 0, fmt.Errorf("no trailer record within %d bytes of end-of-file: %w", maxScanDistance, ErrArchiveNotFound)
}
