// SPDX-License-Identifier: MPL-2.0

// Package launcher implements the run-time half of a lunu standalone
// executable: locate the archive embedded in the running binary, extract it
// into a private temp directory, spawn the bundled runtime on the entry
// script, forward its exit code, and remove the temp directory on every
// exit path.
package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lunu-cli/internal/platform"
	"lunu-cli/pkg/sfx"

	"github.com/charmbracelet/log"
)

// InternalFailureCode is the exit code for fatal failures inside the
// launcher itself (archive not found, temp dir setup, spawn failure).
//
// A child process can legitimately exit with this same code, so the number
// alone does not identify a launcher failure; every fatal path also writes a
// "launcher failure:" line to stderr, and callers that need certainty should
// match on that marker.
const InternalFailureCode = 121

// tempDirPrefix names extraction directories: <temp root>/lunu_<pid>. The
// pid token is unique enough for concurrent launches; a stale directory from
// a recycled pid is removed before extraction.
const tempDirPrefix = "lunu_"

// Result is the outcome of one launcher invocation.
type Result struct {
	// ExitCode is the child's exit code, or InternalFailureCode when Err
	// is set.
	ExitCode int

	// Err is the fatal error that stopped the launch, nil on a completed
	// child run (even one that exited non-zero).
	Err error

	// HoldConsole reports whether the process should wait for an
	// acknowledgment before exiting, per the flag file bundled in the
	// payload. Defaults to true when the flag was never extracted or is
	// unreadable.
	HoldConsole bool
}

func failure(err error) *Result {
	return &Result{ExitCode: InternalFailureCode, Err: err, HoldConsole: true}
}

// Run drives the extract-spawn-wait-cleanup lifecycle over the given host
// capabilities. It blocks until the child terminates. The temp directory is
// removed before Run returns on every path that created it; removal failure
// is logged, never fatal.
func Run(ops platform.Ops, logger *log.Logger) *Result {
	exePath, err := ops.ExecutablePath()
	if err != nil {
		return failure(fmt.Errorf("resolving own executable: %w", err))
	}
	// The on-disk file is the ground truth, not the loaded image.
	image, err := os.ReadFile(exePath)
	if err != nil {
		return failure(fmt.Errorf("reading own executable %q: %w", exePath, err))
	}

	tempDir := filepath.Join(ops.TempRoot(), fmt.Sprintf("%s%d", tempDirPrefix, ops.ProcessID()))

	// A leftover directory with this name belongs to a dead invocation
	// whose pid was recycled; clear it so stale payload cannot leak into
	// this run.
	_ = ops.RemoveTree(tempDir)
	if err := ops.MakeDir(tempDir); err != nil && !errors.Is(err, fs.ErrExist) {
		return failure(&TempDirError{Path: tempDir, Err: err})
	}

	res := &Result{HoldConsole: true}
	defer func() {
		if rmErr := ops.RemoveTree(tempDir); rmErr != nil {
			logger.Warn("temp directory cleanup failed", "dir", tempDir, "err", rmErr)
		}
	}()

	offset, length, err := sfx.Locate(image)
	if err != nil {
		res.ExitCode = InternalFailureCode
		res.Err = err
		return res
	}
	if _, err := sfx.Extract(image, offset, length, tempDir); err != nil {
		res.ExitCode = InternalFailureCode
		res.Err = fmt.Errorf("extracting payload: %w", err)
		return res
	}

	res.HoldConsole = readHoldConsole(tempDir)

	runtimeBin := filepath.Join(tempDir, filepath.FromSlash(sfx.RuntimePath()))
	script := filepath.Join(tempDir, filepath.FromSlash(sfx.EntryScriptPath))
	if _, err := os.Stat(runtimeBin); err != nil {
		res.ExitCode = InternalFailureCode
		res.Err = &LaunchError{Runtime: runtimeBin, Err: err}
		return res
	}

	proc, err := ops.Spawn(runtimeBin, []string{sfx.RuntimeRunVerb, script}, tempDir)
	if err != nil {
		res.ExitCode = InternalFailureCode
		res.Err = &LaunchError{Runtime: runtimeBin, Err: err}
		return res
	}

	code, err := proc.Wait()
	if err != nil {
		res.ExitCode = InternalFailureCode
		res.Err = &LaunchError{Runtime: runtimeBin, Err: err}
		return res
	}

	res.ExitCode = code
	return res
}

// readHoldConsole reads the bundled hold-console flag file from the
// extracted tree. Missing or unreadable means hold.
func readHoldConsole(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(sfx.HoldConsoleFile)))
	if err != nil {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(string(data))) {
	case "0", "false", "no":
		return false
	}
	return true
}
