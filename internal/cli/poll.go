package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultPollAttempts = 10
	defaultPollWait     = 5
)

func newPollCommand(a *app) *cobra.Command {
	var attempts, wait int
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Wait until the Pulp status API responds",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempts < 1 {
				return usageError{fmt.Errorf("--attempts must be at least 1")}
			}
			if wait < 0 {
				return usageError{fmt.Errorf("--wait must not be negative")}
			}
			return a.engine.Poll(cmd.Context(), attempts, time.Duration(wait)*time.Second)
		},
	}
	cmd.Flags().IntVarP(&attempts, "attempts", "a", defaultPollAttempts, "number of status checks")
	cmd.Flags().IntVarP(&wait, "wait", "w", defaultPollWait, "seconds between status checks")
	return cmd
}
