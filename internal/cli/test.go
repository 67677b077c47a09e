package cli

import (
	"fmt"
	"strings"

	"github.com/pulp/oci-env/internal/testrunner"
	"github.com/spf13/cobra"
)

type testOptions struct {
	installDeps bool
	plugin      string
	privileged  bool
}

func newTestCommand(a *app) *cobra.Command {
	opts := &testOptions{}
	cmd := &cobra.Command{
		Use:   "test [-i] [-p plugin] <kind> [args...]",
		Short: "Install test requirements and run test suites",
		Long: "Run the " + strings.Join(testrunner.Names, ", ") + " suites for a plugin,\n" +
			"or for every project in DEV_SOURCE_PATH when --plugin is omitted.\n" +
			"Arguments after the kind are passed to the test scripts verbatim.",
		Example:   "  oci-env test -i -p pulp_file functional\n  oci-env test -p pulpcore unit -- -k test_tasks",
		Args:      usageArgs(cobra.MinimumNArgs(1)),
		ValidArgs: testrunner.Names,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := testrunner.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUnsupportedOption, err)
			}
			runner := &testrunner.Runner{
				Scripts:    a.engine,
				Projects:   a.cfg.Projects(),
				Out:        cmd.OutOrStdout(),
				Privileged: opts.privileged,
			}
			sel := testrunner.Selection{Plugin: opts.plugin, Kind: kind, Args: passthrough(args[1:])}
			a.log.Info("TEST", "kind", kind, "plugin", opts.plugin)
			if opts.installDeps {
				if err := runner.InstallRequirements(cmd.Context(), sel); err != nil {
					return err
				}
			}
			return runner.RunTests(cmd.Context(), sel)
		},
	}
	cmd.Flags().BoolVarP(&opts.installDeps, "install-deps", "i", false, "install test requirements before running")
	cmd.Flags().StringVarP(&opts.plugin, "plugin", "p", "", "plugin to test (default: every DEV_SOURCE_PATH project)")
	cmd.Flags().BoolVar(&opts.privileged, "privileged", false, "run scripts with extended privileges")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// passthrough drops the "--" separating the kind from script arguments.
// Flag parsing stops at the kind, so the separator arrives verbatim.
func passthrough(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}
