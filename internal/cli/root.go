package cli

import (
	"github.com/pulp/oci-env/internal/version"
	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code. Signals are left
// alone: the terminal delivers them to the engine process directly.
func Execute() int {
	a := newApp()
	cmd := newRootCommand(a)
	err := cmd.Execute()
	a.close()
	return exitCode(cmd.ErrOrStderr(), err)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oci-env",
		Short:         "Manage the Pulp container development environment",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				return nil
			}
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "print debug output and executed commands")
	flags.StringVarP(&a.opts.envFile, "env-file", "e", "", "path to the env file (default <oci-env>/compose.env)")
	flags.BoolVar(&a.opts.dryRun, "dry-run", false, "print commands instead of running them")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.AddCommand(
		newComposeCommand(a),
		newExecCommand(a),
		newDBCommand(a),
		newShellCommand(a),
		newTestCommand(a),
		newGenerateClientCommand(a),
		newPulpcoreManagerCommand(a),
		newProfileCommand(a),
		newPollCommand(a),
		newPulpCommand(a),
		newDoctorCommand(a),
		newVersionCommand(),
	)

	return cmd
}

const annotationSkipSetup = "oci-env/skip-setup"

func skipSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipSetup] == "true" {
			return true
		}
	}
	return false
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
