// SPDX-License-Identifier: MPL-2.0

// Package sfx implements the self-extracting image format used by lunu
// standalone executables: a launcher stub binary, an appended zip archive
// carrying the runtime and the user script, and a fixed-size trailer record
// at the very end of the file that points back at the archive.
//
// The builder side uses BuildArchive and Assemble to produce an image; the
// launcher side uses Locate and Extract to recover the payload from its own
// on-disk executable.
package sfx
