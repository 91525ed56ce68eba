// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// trailerMagic marks the start of a lunu trailer record. The record sits at
// the very end of an assembled image, after the zip archive.
const trailerMagic = "LUNUSFX1"

// trailerSize is the fixed on-disk size of a trailer record: magic (8),
// archive offset (8), archive length (8), record length (8), little-endian.
// The locator relies on this being constant to read the record with a single
// fixed-offset seek from end-of-file.
const trailerSize = 32

// trailer describes where the embedded archive lives inside the image.
// ArchiveOffset is absolute from the start of the image file.
type trailer struct {
	ArchiveOffset uint64
	ArchiveLength uint64
}

// encodeTrailer serializes a trailer record into its fixed 32-byte form.
func encodeTrailer(t trailer) []byte {
	buf := make([]byte, trailerSize)
	copy(buf[0:8], trailerMagic)
	binary.LittleEndian.PutUint64(buf[8:16], t.ArchiveOffset)
	binary.LittleEndian.PutUint64(buf[16:24], t.ArchiveLength)
	binary.LittleEndian.PutUint64(buf[24:32], trailerSize)
	return buf
}

// decodeTrailer parses a trailer record from data. data must hold exactly
// trailerSize bytes starting at the record's magic.
func decodeTrailer(data []byte) (trailer, error) {
	if len(data) < trailerSize {
		return trailer{}, fmt.Errorf("parse trailer record: %w", io.ErrUnexpectedEOF)
	}
	if string(data[0:8]) != trailerMagic {
		return trailer{}, fmt.Errorf("parse trailer record: bad magic")
	}
	if recLen := binary.LittleEndian.Uint64(data[24:32]); recLen != trailerSize {
		return trailer{}, fmt.Errorf("parse trailer record: unexpected record length %d", recLen)
	}
	return trailer{
		ArchiveOffset: binary.LittleEndian.Uint64(data[8:16]),
		ArchiveLength: binary.LittleEndian.Uint64(data[16:24]),
	}, nil
}
