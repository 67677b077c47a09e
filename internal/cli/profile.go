package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/pulp/oci-env/internal/profile"
	"github.com/spf13/cobra"
)

var (
	colorSuccess = color.New(color.FgGreen, color.Bold).SprintFunc()
	colorPlugin  = color.New(color.FgBlue, color.Bold).SprintFunc()
	colorSummary = color.New(color.FgHiBlack).SprintFunc()
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create, list, and read compose profiles",
		Args:  cobra.ArbitraryArgs,
		RunE:  unknownAction("init, ls, or docs"),
	}
	cmd.AddCommand(
		newProfileInitCommand(a),
		newProfileListCommand(a),
		newProfileDocsCommand(a),
	)
	return cmd
}

func (a *app) profiles() (*profile.Manager, error) {
	return profile.NewManager(a.cfg.SrcDir, a.root)
}

func newProfileInitCommand(a *app) *cobra.Command {
	var plugin string
	cmd := &cobra.Command{
		Use:   "init [-p plugin] <name>",
		Short: "Scaffold a new profile",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.profiles()
			if err != nil {
				return err
			}
			created, err := m.Init(plugin, args[0])
			if err != nil {
				return err
			}
			a.log.Debug("profile created", "name", created.Name, "files", len(created.Files))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %q successfully created at: %s\n", colorSuccess("New profile"), created.Name, created.Dir)
			fmt.Fprintf(out, "To use it set \"COMPOSE_PROFILE=%s\"\n", created.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&plugin, "plugin", "p", "", "plugin that owns the profile (default: oci-env itself)")
	return cmd
}

func newProfileListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List profiles available under SRC_DIR",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.profiles()
			if err != nil {
				return err
			}
			groups, err := m.List()
			if err != nil {
				return err
			}
			renderProfiles(cmd.OutOrStdout(), groups)
			return nil
		},
	}
}

func renderProfiles(w io.Writer, groups []profile.PluginProfiles) {
	width := 0
	for _, g := range groups {
		for _, e := range g.Profiles {
			if n := runewidth.StringWidth(e.Name); n > width {
				width = n
			}
		}
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s %s\n", colorPlugin("Plugin:"), g.Plugin)
		for _, e := range g.Profiles {
			if e.Summary == "" || e.Summary == e.Name {
				fmt.Fprintf(w, "  %s\n", e.Name)
				continue
			}
			fmt.Fprintf(w, "  %s  %s\n", runewidth.FillRight(e.Name, width), colorSummary(e.Summary))
		}
	}
}

func newProfileDocsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs <profile>",
		Short: "Print a profile's README",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.profiles()
			if err != nil {
				return err
			}
			text, err := m.Docs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
