package cli

import (
	"github.com/pulp/oci-env/internal/engine"
	"github.com/spf13/cobra"
)

func newExecCommand(a *app) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "exec [-s service] <command> [args...]",
		Short: "Run a command inside a service container",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("EXEC", "service", service, "args", args)
			return a.engine.Exec(cmd.Context(), args, engine.ExecOptions{
				Interactive: true,
				Service:     service,
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", engine.DefaultService, "compose service to run in")
	cmd.Flags().SetInterspersed(false)
	return cmd
}
