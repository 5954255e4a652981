package commands

import (
	"errors"
	"fmt"
	"io"

	"rtask/internal/exitcode"
	"rtask/internal/service"
	"rtask/internal/store"
)

// ReportError prints err in the CLI's error format and returns the
// matching exit code.
func ReportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case service.IsAuthError(err):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: remote error: %v\n", err)
		return exitcode.RemoteError
	}
}

// done prints the acknowledgement unless quiet.
func done(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
