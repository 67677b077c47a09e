package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pulp/oci-env/internal/engine"
	"github.com/spf13/cobra"
)

const defaultSnapshotFile = "pulp_db.tar"

// errDeclined is returned when the operator refuses a destructive action.
var errDeclined = errors.New("aborted")

type dbOptions struct {
	filename string
	migrate  bool
	yes      bool
}

func newDBCommand(a *app) *cobra.Command {
	opts := &dbOptions{}
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Reset, snapshot, or restore the Pulp database",
		Args:  cobra.ArbitraryArgs,
		RunE:  unknownAction("reset, snapshot, or restore"),
	}
	cmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the database, then wait for Pulp",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd.Context(), a, opts)
		},
	}

	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Dump the database to a file in the container",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSnapshot(cmd.Context(), a, opts)
		},
	}
	snapshot.Flags().StringVarP(&opts.filename, "filename", "f", defaultSnapshotFile, "snapshot file name")

	restore := &cobra.Command{
		Use:   "restore",
		Short: "Restore the database from a snapshot, then wait for Pulp",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBRestore(cmd.Context(), a, opts)
		},
	}
	restore.Flags().StringVarP(&opts.filename, "filename", "f", defaultSnapshotFile, "snapshot file name")
	restore.Flags().BoolVar(&opts.migrate, "migrate", false, "run migrations after restoring")

	cmd.AddCommand(reset, snapshot, restore)
	return cmd
}

func runDBReset(ctx context.Context, a *app, opts *dbOptions) error {
	ok, err := a.confirmDestructive(opts.yes, "Reset the Pulp database? All data will be lost.")
	if err != nil {
		return err
	}
	if !ok {
		return errDeclined
	}
	a.log.Info("DB", "action", "reset")
	if err := a.engine.ExecContainerScript(ctx, "database_reset.sh", nil, engine.ExecOptions{Interactive: true}); err != nil {
		return err
	}
	return a.engine.Poll(ctx, defaultPollAttempts, defaultPollWait*time.Second)
}

func runDBSnapshot(ctx context.Context, a *app, opts *dbOptions) error {
	a.log.Info("DB", "action", "snapshot", "file", opts.filename)
	return a.engine.ExecContainerScript(ctx, "db_snapshot.sh", []string{opts.filename}, engine.ExecOptions{Interactive: true})
}

func runDBRestore(ctx context.Context, a *app, opts *dbOptions) error {
	msg := fmt.Sprintf("Replace the Pulp database with %s?", opts.filename)
	ok, err := a.confirmDestructive(opts.yes, msg)
	if err != nil {
		return err
	}
	if !ok {
		return errDeclined
	}
	args := []string{opts.filename}
	if opts.migrate {
		args = append(args, "1")
	}
	a.log.Info("DB", "action", "restore", "file", opts.filename, "migrate", opts.migrate)
	if err := a.engine.ExecContainerScript(ctx, "db_restore.sh", args, engine.ExecOptions{Interactive: true}); err != nil {
		return err
	}
	return a.engine.Poll(ctx, defaultPollAttempts, defaultPollWait*time.Second)
}
