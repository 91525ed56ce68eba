// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lunu-cli/pkg/sfx"
)

func TestWriteImageAtomic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "game"+sfx.ExeSuffix())
	image := []byte("assembled image bytes")

	if err := writeImageAtomic(out, image); err != nil {
		t.Fatalf("writeImageAtomic() error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(got, image) {
		t.Error("output content differs from image")
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("listing output dir: %v", err)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", f.Name())
		}
	}
}

func TestWriteImageAtomic_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "missing-subdir", "game")

	if err := writeImageAtomic(out, []byte("image")); err == nil {
		t.Fatal("writeImageAtomic() into a missing directory succeeded, want error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("partial output left at the output path")
	}
}

func TestReadStubTemplate_FlagOverride(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "custom-stub")
	want := []byte("stub machine code")
	if err := os.WriteFile(stub, want, 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}

	old := buildStub
	buildStub = stub
	defer func() { buildStub = old }()

	got, path, err := readStubTemplate(t.TempDir())
	if err != nil {
		t.Fatalf("readStubTemplate() error: %v", err)
	}
	if path != stub {
		t.Errorf("stub path = %q, want %q", path, stub)
	}
	if !bytes.Equal(got, want) {
		t.Error("stub content differs")
	}
}

func TestReadStubTemplate_ProjectFallback(t *testing.T) {
	root := t.TempDir()
	stub := filepath.Join(root, "bin", "lunu-stub"+sfx.ExeSuffix())
	if err := os.MkdirAll(filepath.Dir(stub), 0o755); err != nil {
		t.Fatalf("creating bin dir: %v", err)
	}
	want := []byte("project stub")
	if err := os.WriteFile(stub, want, 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}

	got, path, err := readStubTemplate(root)
	if err != nil {
		t.Fatalf("readStubTemplate() error: %v", err)
	}
	if path != stub {
		t.Errorf("stub path = %q, want %q", path, stub)
	}
	if !bytes.Equal(got, want) {
		t.Error("stub content differs")
	}
}

func TestReadStubTemplate_NotFound(t *testing.T) {
	old := buildStub
	buildStub = filepath.Join(t.TempDir(), "nowhere")
	defer func() { buildStub = old }()

	if _, _, err := readStubTemplate(t.TempDir()); err == nil {
		t.Error("readStubTemplate() with no stub anywhere succeeded, want error")
	}
}
