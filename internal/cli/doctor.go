package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pulp/oci-env/internal/config"
	"github.com/spf13/cobra"
)

func newDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose oci-env prerequisites and configuration issues",
		Long:  "Check the engine binary, env file, source tree, and profiles. With --verbose\npassing checks are listed too.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, a, a.opts.verbose)
		},
	}
}

type doctorCheck struct {
	Name string
	Fn   func() error
}

func runDoctor(cmd *cobra.Command, a *app, verbose bool) error {
	envFile := a.opts.envFile
	if envFile == "" {
		envFile = filepath.Join(a.root, config.FileName)
	}

	binary := a.engine.Binary()[0]
	checks := []doctorCheck{
		{Name: binary + " installed", Fn: requireOnPath(binary)},
		{Name: "env file present", Fn: func() error {
			if !config.Exists(envFile) {
				return fmt.Errorf("%s not found; defaults are in use", envFile)
			}
			return nil
		}},
		{Name: "SRC_DIR exists", Fn: requireDir(a.cfg.SrcDir)},
		{Name: "DEV_SOURCE_PATH projects checked out", Fn: func() error {
			var missing []string
			for _, p := range a.cfg.Projects() {
				if requireDir(filepath.Join(a.cfg.SrcDir, p))() != nil {
					missing = append(missing, p)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing under %s: %s", a.cfg.SrcDir, strings.Join(missing, ", "))
			}
			return nil
		}},
		{Name: "COMPOSE_PROFILE profiles exist", Fn: func() error {
			m, err := a.profiles()
			if err != nil {
				return err
			}
			var missing []string
			for _, name := range a.cfg.Profiles() {
				plugin := ""
				short := name
				if p, n, ok := strings.Cut(name, "/"); ok {
					plugin, short = p, n
				}
				if requireDir(filepath.Join(m.ProfilesRoot(plugin), short))() != nil {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("unknown profiles: %s", strings.Join(missing, ", "))
			}
			return nil
		}},
	}

	var failures []string
	for _, check := range checks {
		if err := check.Fn(); err != nil {
			failures = append(failures, fmt.Sprintf("✗ %s: %v", check.Name, err))
			continue
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", check.Name)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "healthy!")
	return nil
}

func requireOnPath(binary string) func() error {
	return func() error {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s not found on PATH", binary)
		}
		return nil
	}
}

func requireDir(path string) func() error {
	return func() error {
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%s does not exist", path)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	}
}
