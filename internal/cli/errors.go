package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pulp/oci-env/internal/engine"
	"github.com/spf13/cobra"
)

// ErrUnsupportedOption indicates an option value outside the accepted set.
var ErrUnsupportedOption = errors.New("unsupported option")

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// unknownAction backs a parent command whose actions are subcommands: bare
// invocations print help, anything else is rejected.
func unknownAction(expected string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("%w: %s %s (expected %s)", ErrUnsupportedOption, cmd.Name(), args[0], expected)
	}
}

var colorError = color.New(color.FgHiRed, color.Bold).SprintFunc()

// exitCode reports err on w and maps it to a process exit status. Failed
// subprocesses have already spoken for themselves, so only their code is kept.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *engine.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	fmt.Fprintln(w, colorError("Error:"), err)
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}
