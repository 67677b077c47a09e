package cli

import (
	"fmt"

	"github.com/pulp/oci-env/internal/engine"
	"github.com/spf13/cobra"
)

type shellKind int

const (
	shellBash shellKind = iota + 1
	shellPython
	shellDB
)

func parseShellKind(s string) (shellKind, error) {
	switch s {
	case "bash":
		return shellBash, nil
	case "python":
		return shellPython, nil
	case "db":
		return shellDB, nil
	}
	return 0, fmt.Errorf("%w: shell %q (expected bash, python, or db)", ErrUnsupportedOption, s)
}

func (k shellKind) argv() []string {
	switch k {
	case shellBash:
		return []string{"bash"}
	case shellPython:
		return []string{"pulpcore-manager", "shell_plus"}
	case shellDB:
		return []string{"pulpcore-manager", "dbshell"}
	}
	panic(fmt.Sprintf("unhandled shell kind %d", int(k)))
}

func newShellCommand(a *app) *cobra.Command {
	var (
		kind       string
		privileged bool
	)
	cmd := &cobra.Command{
		Use:   "shell [-s bash|python|db]",
		Short: "Open an interactive shell in the pulp container",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseShellKind(kind)
			if err != nil {
				return err
			}
			return a.engine.Exec(cmd.Context(), k.argv(), engine.ExecOptions{
				Interactive: true,
				Privileged:  privileged,
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "shell", "s", "bash", "shell to open: bash, python, or db")
	cmd.Flags().BoolVar(&privileged, "privileged", false, "run the shell with extended privileges")
	return cmd
}
