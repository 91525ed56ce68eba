// SPDX-License-Identifier: MPL-2.0

// Package platform abstracts the host facilities the launcher depends on —
// temp-path resolution, process identity, process creation, and recursive
// removal — so the supervisor state machine can be exercised in tests with
// fake implementations.
package platform

import (
	"os"
	"os/exec"
)

// Process is a handle to a spawned child. It is owned by the caller from
// spawn until Wait returns and must not be used afterwards.
type Process interface {
	// Wait blocks until the child terminates and returns its exit code.
	// A non-nil error means the wait itself failed, not that the child
	// exited non-zero.
	Wait() (int, error)
}

// Ops is the capability surface the launcher needs from the host.
type Ops interface {
	// TempRoot returns the host's temporary-file directory.
	TempRoot() string

	// ProcessID returns the current process identifier, used as the
	// uniqueness token for the extraction directory name.
	ProcessID() int

	// ExecutablePath returns the on-disk path of the running executable.
	// The file, not the in-memory image, is the ground truth for the
	// embedded archive.
	ExecutablePath() (string, error)

	// MakeDir creates a single directory. It fails if the parent does not
	// exist; it is the caller's business whether pre-existence is an error.
	MakeDir(path string) error

	// RemoveTree recursively deletes path. Removing a path that does not
	// exist is not an error.
	RemoveTree(path string) error

	// Spawn starts bin with args in workDir, inheriting this process's
	// standard streams, and returns a handle to wait on.
	Spawn(bin string, args []string, workDir string) (Process, error)
}

// OS is the real host implementation of Ops.
var OS Ops = osOps{}

type osOps struct{}

func (osOps) TempRoot() string { return os.TempDir() }

func (osOps) ProcessID() int { return os.Getpid() }

func (osOps) ExecutablePath() (string, error) { return os.Executable() }

func (osOps) MakeDir(path string) error { return os.Mkdir(path, 0o755) }

func (osOps) RemoveTree(path string) error { return os.RemoveAll(path) }

func (osOps) Spawn(bin string, args []string, workDir string) (Process, error) {
	cmd := exec.Command(bin, args...)
	cmd.Dir = workDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &osProcess{cmd: cmd}, nil
}

type osProcess struct {
	cmd *exec.Cmd
}

func (p *osProcess) Wait() (int, error) {
	if err := p.cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
