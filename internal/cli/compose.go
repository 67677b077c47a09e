package cli

import (
	"github.com/spf13/cobra"
)

func newComposeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose [args...]",
		Short: "Run a compose command against the configured stack",
		Long: "Run docker compose or podman-compose with the base compose file and every\n" +
			"profile listed in COMPOSE_PROFILE. Arguments are passed through unchanged.",
		Example: "  oci-env compose up -d\n  oci-env compose logs -f pulp",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("COMPOSE", "args", args)
			return a.engine.ComposeCommand(cmd.Context(), args, true)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
