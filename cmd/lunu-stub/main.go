// SPDX-License-Identifier: MPL-2.0

// Command lunu-stub is the launcher half of a lunu standalone executable.
// The builder appends the payload archive and trailer to a copy of this
// binary; at run time it extracts its own payload, runs the bundled runtime
// on the entry script, forwards the exit code, and cleans up.
//
// It takes no arguments: everything it does is determined by the archive
// embedded in its own file.
package main

import (
	"os"

	"lunu-cli/internal/launcher"
	"lunu-cli/internal/platform"

	"github.com/charmbracelet/log"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "lunu"})

	res := launcher.Run(platform.OS, logger)
	if res.Err != nil {
		launcher.PresentFailure(logger, res.Err)
		// The stub usually runs without a persistent console; hold the
		// window so the failure stays readable.
		if res.HoldConsole {
			launcher.AwaitAcknowledgment(os.Stdin, os.Stderr)
		}
		os.Exit(launcher.InternalFailureCode)
	}

	if res.HoldConsole {
		launcher.AwaitAcknowledgment(os.Stdin, os.Stdout)
	}
	os.Exit(res.ExitCode)
}
