// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestOS_SpawnExitCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}

	proc, err := OS.Spawn("sh", []string{"-c", "exit 7"}, t.TempDir())
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	code, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

func TestOS_SpawnMissingBinary(t *testing.T) {
	if _, err := OS.Spawn(filepath.Join(t.TempDir(), "no-such-binary"), nil, t.TempDir()); err == nil {
		t.Error("Spawn() of a missing binary succeeded, want error")
	}
}

func TestOS_RemoveTreeMissingPath(t *testing.T) {
	if err := OS.RemoveTree(filepath.Join(t.TempDir(), "never-created")); err != nil {
		t.Errorf("RemoveTree() on a missing path: %v", err)
	}
}

func TestOS_MakeDirTwice(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "once")
	if err := OS.MakeDir(dir); err != nil {
		t.Fatalf("MakeDir() error: %v", err)
	}
	err := OS.MakeDir(dir)
	if err == nil {
		t.Fatal("second MakeDir() succeeded, want ErrExist")
	}
	if !os.IsExist(err) {
		t.Errorf("second MakeDir() error = %v, want ErrExist", err)
	}
}
