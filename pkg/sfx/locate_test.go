// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"bytes"
	"errors"
	"testing"
)

func TestLocate_FastPath(t *testing.T) {
	image, err := Assemble([]byte("STUB"), testEntries())
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	offset, length, err := Locate(image)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if offset != 4 {
		t.Errorf("offset = %d, want 4", offset)
	}
	if int(offset+length) != len(image)-trailerSize {
		t.Errorf("archive region ends at %d, want %d", offset+length, len(image)-trailerSize)
	}
}

func TestLocate_DecoySignatureInTemplate(t *testing.T) {
	// A template whose machine code happens to contain the magic bytes,
	// twice, once followed by plausible-looking junk.
	var template bytes.Buffer
	template.WriteString("machine code ")
	template.WriteString(trailerMagic)
	template.Write(make([]byte, 40))
	template.WriteString(trailerMagic)
	template.WriteString(" more machine code")

	image, err := Assemble(template.Bytes(), testEntries())
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	offset, _, err := Locate(image)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if offset != int64(template.Len()) {
		t.Errorf("Locate() offset = %d, want %d (decoy signature won)", offset, template.Len())
	}
}

func TestLocate_ScanFallbackWithTrailingPadding(t *testing.T) {
	image, err := Assemble([]byte("STUB"), testEntries())
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	trueOffset, trueLength, err := Locate(image)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}

	// Data appended after the trailer (a code signature, say) breaks the
	// fixed-offset read; the backward scan must still find the record.
	padded := append(append([]byte{}, image...), bytes.Repeat([]byte("pad"), 1000)...)

	offset, length, err := Locate(padded)
	if err != nil {
		t.Fatalf("Locate() on padded image error: %v", err)
	}
	if offset != trueOffset || length != trueLength {
		t.Errorf("Locate() on padded image = (%d, %d), want (%d, %d)", offset, length, trueOffset, trueLength)
	}
}

func TestLocate_NestedImagesRearmostWins(t *testing.T) {
	// Two complete images back to back; only the rearmost trailer is
	// authoritative.
	inner, err := Assemble([]byte("OLD"), []Entry{{Path: "old.txt", Data: []byte("old")}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	outer, err := Assemble(inner, []Entry{{Path: "new.txt", Data: []byte("new")}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	offset, length, err := Locate(outer)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if offset != int64(len(inner)) {
		t.Errorf("Locate() offset = %d, want %d", offset, len(inner))
	}

	dest := t.TempDir()
	paths, err := Extract(outer, offset, length, dest)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "new.txt" {
		t.Errorf("extracted %v, want [new.txt]", paths)
	}
}

func TestLocate_NoArchive(t *testing.T) {
	plain := bytes.Repeat([]byte("just a binary with no payload "), 100)
	if _, _, err := Locate(plain); !errors.Is(err, ErrArchiveNotFound) {
		t.Errorf("Locate() error = %v, want ErrArchiveNotFound", err)
	}
}

func TestLocate_TooSmall(t *testing.T) {
	if _, _, err := Locate([]byte("tiny")); !errors.Is(err, ErrArchiveNotFound) {
		t.Errorf("Locate() error = %v, want ErrArchiveNotFound", err)
	}
}

func TestLocate_MagicWithoutValidRecord(t *testing.T) {
	// The magic appears but the record around it is garbage; Locate must
	// not trust it.
	image := append(bytes.Repeat([]byte{0xCC}, 100), []byte(trailerMagic)...)
	image = append(image, bytes.Repeat([]byte{0xCC}, 24)...)
	if _, _, err := Locate(image); !errors.Is(err, ErrArchiveNotFound) {
		t.Errorf("Locate() error = %v, want ErrArchiveNotFound", err)
	}
}

func TestTrailerRecord_RoundTrip(t *testing.T) {
	in := trailer{ArchiveOffset: 12345, ArchiveLength: 67890}
	buf := encodeTrailer(in)
	if len(buf) != trailerSize {
		t.Fatalf("encoded trailer is %d bytes, want %d", len(buf), trailerSize)
	}
	out, err := decodeTrailer(buf)
	if err != nil {
		t.Fatalf("decodeTrailer() error: %v", err)
	}
	if out != in {
		t.Errorf("decodeTrailer() = %+v, want %+v", out, in)
	}
}

func TestTrailerRecord_Short(t *testing.T) {
	if _, err := decodeTrailer([]byte(trailerMagic)); err == nil {
		t.Error("decodeTrailer() on short input succeeded, want error")
	}
}
