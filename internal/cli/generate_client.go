package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pulp/oci-env/internal/engine"
	"github.com/pulp/oci-env/internal/execx"
	"github.com/spf13/cobra"
)

type generateClientOptions struct {
	plugin  string
	lang    string
	install bool
}

func newGenerateClientCommand(a *app) *cobra.Command {
	opts := &generateClientOptions{}
	cmd := &cobra.Command{
		Use:   "generate-client [-p plugin] [-l language] [-i]",
		Short: "Generate API bindings from the running server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateClient(cmd, a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.plugin, "plugin", "p", "", "plugin to generate bindings for (default: every DEV_SOURCE_PATH project)")
	cmd.Flags().StringVarP(&opts.lang, "language", "l", "python", "bindings language")
	cmd.Flags().BoolVarP(&opts.install, "install-client", "i", false, "install the generated client in the pulp container")
	return cmd
}

func runGenerateClient(cmd *cobra.Command, a *app, opts *generateClientOptions) error {
	ctx := cmd.Context()
	plugins := a.cfg.Projects()
	if opts.plugin != "" {
		plugins = []string{opts.plugin}
	}
	if len(plugins) == 0 {
		return errors.New("no plugins to generate; pass --plugin or set DEV_SOURCE_PATH")
	}

	apiRoot, err := a.engine.DynaconfValue(ctx, "API_ROOT")
	if err != nil {
		return err
	}
	if apiRoot == "" {
		apiRoot = a.cfg.APIRoot
	}

	script := filepath.Join(a.root, "base", "local_scripts", "generate_client.sh")
	for _, plugin := range plugins {
		module := strings.ReplaceAll(plugin, "-", "_")
		argv := []string{"bash", script, module, opts.lang}
		if a.opts.verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Running local command: %s\n", execx.Quote(argv))
		}
		if err := a.engine.Local(ctx, argv, "PULP_API_ROOT="+apiRoot); err != nil {
			return err
		}
		if opts.install {
			if err := a.engine.ExecContainerScript(ctx, "install_client.sh", []string{module}, engine.ExecOptions{}); err != nil {
				return err
			}
		}
	}
	return nil
}
