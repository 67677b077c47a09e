// Package engine drives the container orchestration engine.
//
// Every interaction with the outside world goes through a Client: compose
// invocations, commands executed inside the running services, container
// scripts, and the readiness poll against the Pulp status API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pulp/oci-env/internal/config"
	"github.com/pulp/oci-env/internal/execx"
	"golang.org/x/term"
)

const (
	// DefaultService is the compose service commands run in by default.
	DefaultService = "pulp"
	// ContainerScriptsDir is where the base image keeps its helper scripts.
	ContainerScriptsDir = "/opt/oci_env/base/container_scripts"
)

var (
	// ErrExecutionFailed indicates an external process exited non-zero.
	ErrExecutionFailed = errors.New("execution failed")
	// ErrNotReady indicates the status API never answered during a poll.
	ErrNotReady = errors.New("pulp did not become ready")
)

// ExitError carries the exit status of a failed process.
type ExitError struct {
	Code    int
	Command string
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

func (e *ExitError) Is(target error) bool { return target == ErrExecutionFailed }

func (e *ExitError) Unwrap() error { return e.Err }

// ExecOptions tunes how a command runs inside a service container.
type ExecOptions struct {
	Interactive bool
	Service     string
	Privileged  bool
}

// Client runs compose and container commands for one tool checkout.
type Client struct {
	Config config.Config
	Root   string
	Runner execx.Runner
	Log    *slog.Logger
	DryRun bool
	Stderr io.Writer
	HTTP   *http.Client
	// TTY reports whether stdin is a terminal; nil means check os.Stdin.
	TTY func() bool
}

// New returns a Client backed by the OS process runner.
func New(cfg config.Config, root string, log *slog.Logger) *Client {
	return &Client{
		Config: cfg,
		Root:   root,
		Runner: execx.OSRunner{},
		Log:    log,
		Stderr: os.Stderr,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Log
}

func (c *Client) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

func (c *Client) stdinIsTerminal() bool {
	if c.TTY != nil {
		return c.TTY()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Binary returns the argv prefix that invokes the compose implementation.
func (c *Client) Binary() []string {
	if c.Config.ComposeBinary == "docker" {
		return []string{"docker", "compose"}
	}
	return []string{"podman-compose"}
}

// ComposeFiles lists the compose files for the base stack and every active
// profile that ships one, in COMPOSE_PROFILE order.
func (c *Client) ComposeFiles() []string {
	files := []string{filepath.Join(c.Root, "base", "compose.yaml")}
	for _, name := range c.Config.Profiles() {
		file := filepath.Join(c.profileDir(name), "compose.yaml")
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			files = append(files, file)
		}
	}
	return files
}

func (c *Client) profileDir(name string) string {
	if plugin, profile, ok := strings.Cut(name, "/"); ok {
		return filepath.Join(c.Config.SrcDir, plugin, "profiles", profile)
	}
	return filepath.Join(c.Root, "profiles", name)
}

// ComposeArgs builds the full compose argv for the given subcommand.
func (c *Client) ComposeArgs(args []string) []string {
	argv := append([]string{}, c.Binary()...)
	argv = append(argv, "-p", c.Config.ComposeProjectName)
	for _, f := range c.ComposeFiles() {
		argv = append(argv, "-f", f)
	}
	return append(argv, args...)
}

func (c *Client) composeCmd(args []string, interactive bool) execx.Cmd {
	argv := c.ComposeArgs(args)
	cmd := execx.Cmd{
		Name: argv[0],
		Args: argv[1:],
		Env:  append(os.Environ(), c.Config.Environ()...),
		Dir:  c.Root,
	}
	if !interactive {
		cmd.Stdin = strings.NewReader("")
	}
	return cmd
}

// ComposeCommand runs an arbitrary compose subcommand.
func (c *Client) ComposeCommand(ctx context.Context, args []string, interactive bool) error {
	return c.run(ctx, c.composeCmd(args, interactive))
}

// Exec runs argv inside a service container via compose exec.
func (c *Client) Exec(ctx context.Context, argv []string, opts ExecOptions) error {
	return c.run(ctx, c.composeCmd(c.execArgs(argv, opts), opts.Interactive))
}

func (c *Client) execArgs(argv []string, opts ExecOptions) []string {
	args := []string{"exec"}
	if !opts.Interactive || !c.stdinIsTerminal() {
		args = append(args, "-T")
	}
	if opts.Privileged {
		args = append(args, "--privileged")
	}
	service := opts.Service
	if service == "" {
		service = DefaultService
	}
	args = append(args, service)
	return append(args, argv...)
}

// ExecContainerScript runs one of the base image's helper scripts.
func (c *Client) ExecContainerScript(ctx context.Context, script string, args []string, opts ExecOptions) error {
	argv := append([]string{"bash", path.Join(ContainerScriptsDir, script)}, args...)
	return c.Exec(ctx, argv, opts)
}

// Capture runs argv non-interactively in a service and returns its stdout.
func (c *Client) Capture(ctx context.Context, argv []string, service string) (string, error) {
	cmd := c.composeCmd(c.execArgs(argv, ExecOptions{Service: service}), false)
	c.logger().Debug("capture", "cmd", cmd.String())
	if c.DryRun {
		fmt.Fprintln(c.stderr(), "+ "+cmd.String())
		return "", nil
	}
	out, res := c.Runner.Capture(ctx, cmd)
	if err := failure(cmd, res); err != nil {
		return "", err
	}
	return out, nil
}

// DynaconfValue reads a Pulp setting from the running service.
func (c *Client) DynaconfValue(ctx context.Context, name string) (string, error) {
	out, err := c.Capture(ctx, []string{"dynaconf", "get", name}, DefaultService)
	if err != nil {
		return "", fmt.Errorf("read %s from dynaconf: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

// Local runs a host command from the tool root with the configuration
// exported into its environment alongside extraEnv.
func (c *Client) Local(ctx context.Context, argv []string, extraEnv ...string) error {
	env := append(os.Environ(), c.Config.Environ()...)
	return c.run(ctx, execx.Cmd{
		Name: argv[0],
		Args: argv[1:],
		Env:  append(env, extraEnv...),
		Dir:  c.Root,
	})
}

func (c *Client) run(ctx context.Context, cmd execx.Cmd) error {
	c.logger().Debug("run", "cmd", cmd.String(), "dir", cmd.Dir)
	if c.DryRun {
		fmt.Fprintln(c.stderr(), "+ "+cmd.String())
		return nil
	}
	return failure(cmd, c.Runner.Run(ctx, cmd))
}

// failure converts an unsuccessful result into an error. A process that never
// started gets a plain error rather than an ExitError.
func failure(cmd execx.Cmd, res execx.Result) error {
	if res.OK() {
		return nil
	}
	if errors.Is(res.Err, execx.ErrNotStarted) {
		return fmt.Errorf("%s: %w", cmd.Name, res.Err)
	}
	return &ExitError{Code: res.Code, Command: cmd.String(), Err: res.Err}
}

// Poll waits for the status API to answer 200, trying attempts times with
// wait between tries.
func (c *Client) Poll(ctx context.Context, attempts int, wait time.Duration) error {
	url := c.Config.StatusURL("")
	if c.DryRun {
		fmt.Fprintf(c.stderr(), "+ poll %s (%d attempts, %s apart)\n", url, attempts, wait)
		return nil
	}
	for i := 1; i <= attempts; i++ {
		ok, err := c.statusOK(ctx, url)
		if ok {
			c.logger().Info("pulp is ready", "url", url, "attempt", i)
			return nil
		}
		c.logger().Info("waiting for pulp", "attempt", i, "attempts", attempts, "err", err)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w after %d attempts: %s", ErrNotReady, attempts, url)
}

func (c *Client) statusOK(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
	return true, nil
}
