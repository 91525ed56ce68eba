// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// PresentFailure reports a fatal launcher error on the given logger. The
// "launcher failure:" marker is load-bearing: it is the out-of-band signal
// that distinguishes an InternalFailureCode exit from a child process that
// happened to return the same number.
func PresentFailure(logger *log.Logger, err error) {
	logger.Error(fmt.Sprintf("launcher failure: %v", err))
}

// AwaitAcknowledgment blocks until one line is read from in (or it reaches
// EOF). The stub is typically double-clicked, so its console window closes
// the instant the process exits; holding for a keypress keeps the last
// output readable. A short prompt is written to out before blocking.
func AwaitAcknowledgment(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Press Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
