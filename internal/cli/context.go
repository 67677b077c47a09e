package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pulp/oci-env/internal/config"
	"github.com/pulp/oci-env/internal/engine"
	"github.com/pulp/oci-env/internal/execx"
	"github.com/pulp/oci-env/internal/logging"
	"github.com/pulp/oci-env/internal/toolroot"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootOptions struct {
	verbose bool
	envFile string
	dryRun  bool
}

// app holds the state built once per invocation and shared by every command.
type app struct {
	opts rootOptions

	root   string
	cfg    config.Config
	engine *engine.Client
	log    *slog.Logger
	closer io.Closer

	logFile string
	runner  execx.Runner
	tty     func() bool
	confirm func(message string) (bool, error)
}

func newApp() *app {
	return &app{
		logFile: logging.DefaultFile(),
		tty:     func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		confirm: surveyConfirm,
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := toolroot.Discover(wd)
	if err != nil {
		return err
	}

	envFile := a.opts.envFile
	if envFile == "" {
		envFile = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(root, envFile)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Options{
		Verbose: a.opts.verbose,
		Stderr:  cmd.ErrOrStderr(),
		File:    a.logFile,
	})
	if err != nil {
		return err
	}

	client := engine.New(cfg, root, log)
	client.DryRun = a.opts.dryRun
	client.Stderr = cmd.ErrOrStderr()
	client.TTY = a.tty
	if a.runner != nil {
		client.Runner = a.runner
	}

	a.root = root
	a.cfg = cfg
	a.log = log.With("cmd", cmd.Name())
	a.closer = closer
	a.engine = client
	a.log.Debug("loaded configuration", "root", root, "env_file", envFile)
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// confirmDestructive asks before an irreversible action when a person is at
// the keyboard. Non-interactive sessions proceed.
func (a *app) confirmDestructive(assumeYes bool, message string) (bool, error) {
	if assumeYes || a.opts.dryRun || a.tty == nil || !a.tty() {
		return true, nil
	}
	return a.confirm(message)
}

func surveyConfirm(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
