package cli

import (
	"github.com/pulp/oci-env/internal/engine"
	"github.com/spf13/cobra"
)

func newPulpcoreManagerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulpcore-manager [args...]",
		Short: "Run pulpcore-manager inside the pulp container",
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{"pulpcore-manager"}, args...)
			return a.engine.Exec(cmd.Context(), argv, engine.ExecOptions{Interactive: true})
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newPulpCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulp [args...]",
		Short: "Run the pulp CLI inside the pulp container",
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{"pulp"}, args...)
			return a.engine.Exec(cmd.Context(), argv, engine.ExecOptions{})
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
